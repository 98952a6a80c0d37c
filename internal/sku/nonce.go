package sku

import (
	"math/rand"
	"strings"
	"sync"
)

const (
	// NonceLength is the fixed width of the disambiguating SKU suffix.
	NonceLength = 4

	nonceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// NonceFromSKU extracts the trailing nonce of a previously persisted SKU.
// Regenerating a SKU on edit must reuse it so the code stays stable.
func NonceFromSKU(persisted string) (string, bool) {
	trimmed := strings.TrimSpace(persisted)
	idx := strings.LastIndex(trimmed, "-")
	if idx < 0 || len(trimmed)-idx-1 != NonceLength {
		return "", false
	}
	token := trimmed[idx+1:]
	for _, r := range token {
		if !isAlnum(r) {
			return "", false
		}
	}
	return strings.ToUpper(token), true
}

// NewNonce returns a fresh random token. Collision resistance only needs to
// cover SKUs that already agree on every other segment, so a short
// non-cryptographic token is enough.
func NewNonce() string {
	var b strings.Builder
	b.Grow(NonceLength)
	for i := 0; i < NonceLength; i++ {
		b.WriteByte(nonceAlphabet[rand.Intn(len(nonceAlphabet))])
	}
	return b.String()
}

// NonceCache pins one nonce per authoring session so repeated SKU
// recomputation (every keystroke changing a dimension) never churns the
// suffix. Duplication starts a new cache.
type NonceCache struct {
	mu    sync.Mutex
	value string
}

// Ensure returns the session nonce, resolving it on first use: reuse the
// persisted SKU's trailing token when present, otherwise mint one.
func (c *NonceCache) Ensure(persistedSKU string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.value != "" {
		return c.value
	}
	if token, ok := NonceFromSKU(persistedSKU); ok {
		c.value = token
		return c.value
	}
	c.value = NewNonce()
	return c.value
}

// Pin overrides the cached nonce with a value agreed elsewhere, e.g. the
// shared session nonce another replica minted first.
func (c *NonceCache) Pin(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
}

// Reset clears the cached nonce. Used when a session is retargeted or a
// duplicate flow must not inherit the source's suffix.
func (c *NonceCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = ""
}

func isAlnum(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	}
	return false
}
