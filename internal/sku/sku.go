package sku

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Parts carries the identity attributes a SKU derives from. LengthMm is kept
// as a float so callers can pass through unchecked form input; non-finite or
// non-positive values are treated as absent.
type Parts struct {
	BaseCode   string
	LengthMm   float64
	ColorCodes []string
	Nonce      string
}

// The SKU grammar is customer-visible and must stay stable: normalized parts
// joined with "-", empties skipped, colors primary-then-secondary, nonce last.
func Generate(parts Parts) string {
	segments := make([]string, 0, 3+len(parts.ColorCodes))

	if base := NormalizeCode(parts.BaseCode); base != "" {
		segments = append(segments, base)
	}
	if length := formatLength(parts.LengthMm); length != "" {
		segments = append(segments, length)
	}
	for _, code := range parts.ColorCodes {
		if normalized := NormalizeCode(code); normalized != "" {
			segments = append(segments, normalized)
		}
	}
	if nonce := strings.TrimSpace(parts.Nonce); nonce != "" {
		segments = append(segments, strings.ToUpper(nonce))
	}

	return strings.Join(segments, "-")
}

// NormalizeCode canonicalizes a textual SKU part: trimmed, internal whitespace
// collapsed away, hyphen variants and slashes stripped, uppercased.
func NormalizeCode(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range strings.TrimSpace(value) {
		switch r {
		case '-', '–', '—', '/', '\\':
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// EnsurePrefix prepends the owning category's SKU prefix when the base code
// does not already carry it. Persistence-time violations are the caller's
// validation concern; this is the derivation-time silent fix.
func EnsurePrefix(baseCode, prefix string) string {
	base := NormalizeCode(baseCode)
	pfx := NormalizeCode(prefix)
	if pfx == "" || strings.HasPrefix(base, pfx) {
		return base
	}
	return pfx + base
}

// HasPrefix reports whether the normalized base code starts with the
// normalized category prefix. An empty prefix always passes.
func HasPrefix(baseCode, prefix string) bool {
	pfx := NormalizeCode(prefix)
	if pfx == "" {
		return true
	}
	return strings.HasPrefix(NormalizeCode(baseCode), pfx)
}

func formatLength(lengthMm float64) string {
	if math.IsNaN(lengthMm) || math.IsInf(lengthMm, 0) || lengthMm <= 0 {
		return ""
	}
	return strconv.Itoa(int(math.Round(lengthMm)))
}
