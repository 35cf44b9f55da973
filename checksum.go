package stego

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// checksumLen is the number of hex characters kept from the SHA-256
// digest. Wire-format constant.
const checksumLen = 16

// checksumHex computes the truncated hex SHA-256 digest stored in
// container metadata. The digest is computed over plaintext payload
// bytes before compression or encryption.
func checksumHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:checksumLen]
}

// checksumMatches compares a recovered payload against the embedded
// checksum in constant time.
func checksumMatches(data []byte, expected string) bool {
	actual := checksumHex(data)
	return subtle.ConstantTimeCompare([]byte(actual), []byte(expected)) == 1
}
