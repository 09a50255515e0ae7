package engine

import (
	"encoding/hex"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Digest computes the BLAKE3 digest of the file at path, returning the
// hex-encoded fingerprint. The digest is an equality fingerprint only;
// no integrity property is claimed.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &OpError{Op: "hash", Path: path, Kind: KindHash, Err: err}
	}
	defer f.Close()

	h := blake3.New()
	buf := make([]byte, 32*1024)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", &OpError{Op: "hash", Path: path, Kind: KindHash, Err: err}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SameContent reports whether the files at a and b hold identical bytes.
// If either file cannot be hashed it reports false with the hash error:
// an unverifiable pair is never treated as a duplicate.
func SameContent(a, b string) (bool, error) {
	da, err := Digest(a)
	if err != nil {
		return false, err
	}
	db, err := Digest(b)
	if err != nil {
		return false, err
	}
	return da == db, nil
}
