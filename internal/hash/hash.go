// Package hash computes the content digests used for addressing blobs.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// HexLength is the length of a rendered digest.
const HexLength = sha256.Size * 2

// Sum consumes the reader incrementally and returns the SHA-256 digest of
// its content as lowercase hex. It never buffers the whole payload.
func Sum(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SumBytes is Sum for an in-memory payload.
func SumBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
