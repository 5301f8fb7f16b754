// Package checksum fingerprints diagram files for change detection and
// optimistic concurrency.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ETag formats a checksum as a strong entity tag.
func ETag(sum string) string {
	return `"` + sum + `"`
}

// Matches reports whether an If-Match value accepts data. The value may be
// "*", a bare checksum, or a comma-separated list of entity tags. Weak tags
// are compared by their opaque part. An empty value matches nothing.
func Matches(ifMatch string, data []byte) bool {
	sum := Sum(data)
	for _, tag := range strings.Split(ifMatch, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" {
			return true
		}
		tag = strings.TrimPrefix(tag, "W/")
		if strings.Trim(tag, `"`) == sum && tag != "" {
			return true
		}
	}
	return false
}
