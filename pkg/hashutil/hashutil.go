// Package hashutil computes the content digests recorded in metadata and the
// short reference hashes used as report filenames.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"
)

type HashAlgo string

const (
	HashAlgoSHA256 HashAlgo = "sha256"
	HashAlgoBLAKE3 HashAlgo = "blake3"
)

// HashBytes returns the hex digest of data.
func HashBytes(data []byte, algo HashAlgo) (string, error) {
	var sum [32]byte
	switch algo {
	case HashAlgoSHA256:
		sum = sha256.Sum256(data)
	case HashAlgoBLAKE3:
		sum = blake3.Sum256(data)
	default:
		return "", fmt.Errorf("unsupported hash algorithm: %s", algo)
	}
	return hex.EncodeToString(sum[:]), nil
}

// ShortHash returns the first n hex characters of the digest of s. An n
// outside (0, 64] yields the whole digest.
func ShortHash(s string, algo HashAlgo, n int) (string, error) {
	full, err := HashBytes([]byte(s), algo)
	if err != nil {
		return "", err
	}
	if n <= 0 || n > len(full) {
		return full, nil
	}
	return full[:n], nil
}
