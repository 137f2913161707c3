package contentshield

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
)

// Fingerprint computes the SHA-256 hex digest of everything readable from r.
// The digest is computed over the exact byte sequence: no normalization and no
// metadata stripping. Identical bytes always yield identical fingerprints, so
// the result is usable as a platform-wide dedup key.
func Fingerprint(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("fingerprint content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FingerprintBytes computes the SHA-256 hex digest of b. An empty slice yields
// the constant digest of the empty input and is deduplicated like any other.
func FingerprintBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// ObjectKeyFor derives the blob storage key for a fingerprint: the fingerprint
// plus the original file's extension (which may be empty). The file name itself
// never participates, keeping the key stable for identical bytes.
func ObjectKeyFor(fingerprint, fileName string) string {
	return fingerprint + filepath.Ext(fileName)
}
