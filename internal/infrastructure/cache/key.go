package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/kirillkom/docmeta/internal/core/domain"
)

// Key derives the cache key of a model request from its prompt and the
// canonical form of its schema.
func Key(prompt string, schema *domain.SchemaDescriptor) string {
	h := sha256.New()
	h.Write([]byte(prompt))
	if schema != nil {
		if canonical, err := schema.Canonical(); err == nil {
			h.Write([]byte{0})
			h.Write(canonical)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
