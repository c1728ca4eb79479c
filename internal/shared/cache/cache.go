package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache stores JSON-encodable values under string keys.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Close() error
}

const resultKeyPrefix = "greencode:result:"

// ResultKey addresses an analysis result by language and code content.
func ResultKey(language, code string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(language)) + "\x00" + strings.TrimSpace(code)))
	return resultKeyPrefix + hex.EncodeToString(sum[:])
}
