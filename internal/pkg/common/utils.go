package common

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID returns a random UUID string
func GenerateUUID() string {
	return uuid.New().String()
}

// importNamespace scopes deterministic ids for imported records
var importNamespace = uuid.MustParse("6f1c8f9e-4b7a-4c39-9a51-6e0f3b2d7c10")

// StableID derives a deterministic UUID from a natural key so re-imports merge into the same record
func StableID(key string) string {
	return uuid.NewSHA1(importNamespace, []byte(strings.ToLower(strings.TrimSpace(key)))).String()
}

// FoldKey is the single case-folding policy for names: trimmed, lower-cased
func FoldKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SameName reports whether two names match under FoldKey
func SameName(a, b string) bool {
	return FoldKey(a) == FoldKey(b)
}
