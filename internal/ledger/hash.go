package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"bindery/internal/services"
)

// HashFile computes the SHA-256 digest of a file's full byte content, the
// stable identity key independent of name or location. An unreadable or empty
// file yields ErrHashUnavailable: such files are unprocessable and must be
// left at their original location, never recorded.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", services.Wrap(services.ErrHashUnavailable, "ledger", "open for hashing", path, err)
	}
	defer file.Close()

	hasher := sha256.New()
	n, err := io.Copy(hasher, file)
	if err != nil {
		return "", services.Wrap(services.ErrHashUnavailable, "ledger", "read for hashing", path, err)
	}
	if n == 0 {
		return "", services.Wrap(services.ErrHashUnavailable, "ledger", "hash", path+" is empty", nil)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
