package sku

import (
	"math"
	"strings"
	"testing"
)

func TestGenerateJoinsNormalizedParts(t *testing.T) {
	got := Generate(Parts{
		BaseCode:   "  pr-ya / maya ",
		LengthMm:   1804.6,
		ColorCodes: []string{"bel", ""},
		Nonce:      "ab12",
	})
	if got != "PRYAMAYA-1805-BEL-AB12" {
		t.Fatalf("unexpected sku: %s", got)
	}
}

func TestGenerateSkipsAbsentParts(t *testing.T) {
	cases := []struct {
		name  string
		parts Parts
		want  string
	}{
		{"baseOnly", Parts{BaseCode: "PRYAMAYA", Nonce: "K7Q2"}, "PRYAMAYA-K7Q2"},
		{"withColor", Parts{BaseCode: "PRYAMAYA", ColorCodes: []string{"BEL"}, Nonce: "K7Q2"}, "PRYAMAYA-BEL-K7Q2"},
		{"zeroLength", Parts{BaseCode: "X", LengthMm: 0, Nonce: "AAAA"}, "X-AAAA"},
		{"negativeLength", Parts{BaseCode: "X", LengthMm: -40, Nonce: "AAAA"}, "X-AAAA"},
		{"nanLength", Parts{BaseCode: "X", LengthMm: math.NaN(), Nonce: "AAAA"}, "X-AAAA"},
		{"infLength", Parts{BaseCode: "X", LengthMm: math.Inf(1), Nonce: "AAAA"}, "X-AAAA"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Generate(tc.parts); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestGenerateStripsDashVariants(t *testing.T) {
	got := Generate(Parts{BaseCode: "MOD–ULE—X", Nonce: "Z9Z9"})
	if got != "MODULEX-Z9Z9" {
		t.Fatalf("unexpected sku: %s", got)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	parts := Parts{BaseCode: "UGLOVAYA", LengthMm: 2400, ColorCodes: []string{"BEL", "SER"}, Nonce: "Q2K7"}
	first := Generate(parts)
	second := Generate(parts)
	if first != second {
		t.Fatalf("expected identical output, got %s vs %s", first, second)
	}
}

func TestEnsurePrefix(t *testing.T) {
	if got := EnsurePrefix("bott-120", "MB"); got != "MBBOTT120" {
		t.Fatalf("expected prefix prepended, got %s", got)
	}
	if got := EnsurePrefix("MB-BOTT120", "MB"); got != "MBBOTT120" {
		t.Fatalf("expected existing prefix kept, got %s", got)
	}
	if got := EnsurePrefix("BOTT120", ""); got != "BOTT120" {
		t.Fatalf("expected empty prefix to be a no-op, got %s", got)
	}
}

func TestHasPrefix(t *testing.T) {
	if !HasPrefix("MB-BOTT120", "mb") {
		t.Fatal("expected normalized prefix match")
	}
	if HasPrefix("BOTT120", "MB") {
		t.Fatal("expected missing prefix to fail")
	}
	if !HasPrefix("ANY", "") {
		t.Fatal("expected empty prefix to always pass")
	}
}

func TestNonceFromSKU(t *testing.T) {
	token, ok := NonceFromSKU("PRYAMAYA-1800-BEL-k7q2")
	if !ok || token != "K7Q2" {
		t.Fatalf("expected reuse of K7Q2, got %q ok=%v", token, ok)
	}

	// Persisted SKUs always end with their nonce, so any 4-char alnum
	// tail counts, digits included.
	if token, ok := NonceFromSKU("PRYAMAYA-1800"); !ok || token != "1800" {
		t.Fatalf("expected numeric tail accepted, got %q ok=%v", token, ok)
	}

	if _, ok := NonceFromSKU("PRYAMAYA-TOOLONG"); ok {
		t.Fatal("expected rejection of oversized tail")
	}
	if _, ok := NonceFromSKU(""); ok {
		t.Fatal("expected rejection of empty sku")
	}
	if _, ok := NonceFromSKU("PLAIN"); ok {
		t.Fatal("expected rejection without separator")
	}
}

func TestNewNonceShape(t *testing.T) {
	for i := 0; i < 50; i++ {
		nonce := NewNonce()
		if len(nonce) != NonceLength {
			t.Fatalf("expected %d chars, got %q", NonceLength, nonce)
		}
		for _, r := range nonce {
			if !strings.ContainsRune(nonceAlphabet, r) {
				t.Fatalf("unexpected rune %q in nonce %q", r, nonce)
			}
		}
	}
}

func TestNonceCacheStableAcrossRecomputation(t *testing.T) {
	var cache NonceCache
	first := cache.Ensure("")
	for i := 0; i < 10; i++ {
		if got := cache.Ensure(""); got != first {
			t.Fatalf("nonce changed across recomputation: %s vs %s", got, first)
		}
	}
}

func TestNonceCacheReusesPersistedToken(t *testing.T) {
	var cache NonceCache
	if got := cache.Ensure("PRYAMAYA-BEL-K7Q2"); got != "K7Q2" {
		t.Fatalf("expected persisted token reuse, got %s", got)
	}
}

func TestNonceCacheReset(t *testing.T) {
	var cache NonceCache
	first := cache.Ensure("PRYAMAYA-BEL-K7Q2")
	cache.Reset()
	second := cache.Ensure("")
	if second == "" {
		t.Fatal("expected fresh nonce after reset")
	}
	if second == first {
		// Extremely unlikely, and a stale cache would make it certain.
		t.Fatalf("expected new token after reset, got %s twice", first)
	}
}
