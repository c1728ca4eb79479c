package util

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"unicode"
)

// ErrInvalidObjectName is returned when a name cannot be used as an object key segment.
var ErrInvalidObjectName = errors.New("invalid object name")

// OwnerSegment maps a user or guest ID to a stable hex segment for object keys.
func OwnerSegment(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}

// ObjectName flattens name into a single key segment. Separators become
// underscores; traversal and control characters are rejected.
func ObjectName(name string) (string, error) {
	s := strings.TrimSpace(name)
	if s == "" || strings.Contains(s, "..") {
		return "", ErrInvalidObjectName
	}
	if strings.IndexFunc(s, unicode.IsControl) >= 0 {
		return "", ErrInvalidObjectName
	}
	return strings.NewReplacer("/", "_", "\\", "_").Replace(s), nil
}
