package document

import (
	"encoding/hex"
	"fmt"

	"github.com/xdg-go/stringprep"
	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a short stable identifier for document bytes. The
// viewer uses it to correlate log lines and OCR inputs across a load.
func Fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// PreparePassword normalizes a user-entered password with SASLprep, as
// required for AES-256 encrypted documents, so that visually identical input
// opens the document regardless of its Unicode composition.
func PreparePassword(pw string) (string, error) {
	if pw == "" {
		return "", nil
	}
	out, err := stringprep.SASLprep.Prepare(pw)
	if err != nil {
		return "", fmt.Errorf("prepare password: %w", err)
	}
	return out, nil
}
