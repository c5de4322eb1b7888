package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// URL normalizes a fetched article URL into its dedupe form: the query
// string is dropped at the first '?', surrounding whitespace is trimmed,
// trailing slashes are stripped, and plain http is rewritten to https.
// This is a pure textual transform, not a full URL reparse, so malformed
// input passes through mostly untouched. Applying it twice yields the
// same result as applying it once.
func URL(raw string) string {
	u := strings.TrimSpace(raw)
	if i := strings.IndexByte(u, '?'); i >= 0 {
		u = u[:i]
	}
	u = strings.TrimRight(u, "/")
	if strings.HasPrefix(u, "http://") {
		u = "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

// Identity returns the SHA-256 hex digest of the given parts concatenated
// in order. Records with the same (title, canonical URL) pair always hash
// to the same identity, which makes it usable as both record id and
// dedupe key.
func Identity(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
