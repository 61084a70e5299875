package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Cache stores generated text by prompt
type Cache interface {
	// Get returns common.ErrCacheMiss when nothing is stored for the prompt
	Get(ctx context.Context, model, prompt string) (string, error)
	Set(ctx context.Context, model, prompt, value string) error
	Stats() map[string]interface{}
	Close() error
}

// generateKey builds a cache key from the model and a whitespace-normalised prompt
func generateKey(model, prompt string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(prompt)), " ")
	hash := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("suggest:%s:%s", model, hex.EncodeToString(hash[:]))
}
