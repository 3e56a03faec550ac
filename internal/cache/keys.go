package cache

import (
	"fmt"
	"strings"
)

// KeyGenerator builds namespaced cache keys
type KeyGenerator struct {
	Prefix string
}

// NewKeyGenerator creates a new key generator with the given prefix
func NewKeyGenerator(prefix string) *KeyGenerator {
	if prefix == "" {
		prefix = "zr"
	}
	return &KeyGenerator{Prefix: prefix}
}

// SnapshotKey is the latest status snapshot for a device
func (kg *KeyGenerator) SnapshotKey(device string) string {
	return fmt.Sprintf("%s:snapshot:%s", kg.Prefix, normalize(device))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
