package integrity

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ComputeHash concatenates fields in the given order and returns the
// lowercase hex SHA3-256 digest of the result.
func ComputeHash(fields ...string) string {
	sum := sha3.Sum256([]byte(strings.Join(fields, "")))
	return hex.EncodeToString(sum[:])
}
