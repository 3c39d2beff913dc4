package utils

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
	"sync"
)

// md5Pool holds reusable MD5 digests for revalidating library files.
var md5Pool = sync.Pool{
	New: func() any {
		return md5.New()
	},
}

// NewChecksum returns a fresh MD5 digest for streaming writes. The catalog
// declares file checksums as lowercase hex MD5.
func NewChecksum() hash.Hash {
	return md5.New()
}

// SumHex returns the lowercase hex encoding of h's current sum.
func SumHex(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

// readerChecksum hashes everything r yields with a pooled digest.
func readerChecksum(r io.Reader) (string, int64, error) {
	h := md5Pool.Get().(hash.Hash)
	h.Reset()
	defer func() {
		h.Reset()
		md5Pool.Put(h)
	}()

	n, err := io.Copy(h, r)
	if err != nil {
		return "", n, err
	}

	return SumHex(h), n, nil
}

// FileChecksum returns the MD5 hex digest and size of the file at path.
func FileChecksum(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	sum, n, err := readerChecksum(f)
	if err != nil {
		return "", n, fmt.Errorf("error hashing %s: %w", path, err)
	}

	return sum, n, nil
}

// ChecksumEqual compares two hex digests ignoring case and surrounding
// whitespace. Empty digests never match.
func ChecksumEqual(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}
