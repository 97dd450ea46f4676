// Package hashutil centralizes every digest the crawler computes: the
// durable urlhash for the frontier, the exact-content checksum for
// dedup, and the per-token hash feeding the simhash fingerprint.
package hashutil

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"lukechampine.com/blake3"
)

// URLHash returns the 16-byte BLAKE3-256 digest of the canonical URL,
// hex-encoded. Used as the frontier's primary key.
func URLHash(canonicalURL string) string {
	sum := blake3.Sum256([]byte(canonicalURL))
	return hex.EncodeToString(sum[:16])
}

// ContentChecksum returns the hex MD5 digest of page text, used for
// exact-duplicate detection.
func ContentChecksum(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// TokenHash64 returns a 64-bit hash of a token, seeded by SHA-256, used as
// the per-token input to simhash bit accumulation.
func TokenHash64(token string) uint64 {
	sum := sha256.Sum256([]byte(token))
	return binary.BigEndian.Uint64(sum[:8])
}
