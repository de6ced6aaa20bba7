package documents

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// hashBlockSize bounds memory use while hashing regardless of file size.
const hashBlockSize = 4096

// HashFile computes the hex-encoded SHA-256 digest of a file's bytes,
// reading in fixed-size blocks. The digest depends only on content, never
// on the file's name or path.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for hashing: %w", err)
	}
	defer file.Close()

	hash := sha256.New()
	buf := make([]byte, hashBlockSize)
	if _, err := io.CopyBuffer(hash, file, buf); err != nil {
		return "", fmt.Errorf("failed to read file for hashing: %w", err)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
