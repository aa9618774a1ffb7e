package plaintext

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/docmeta/internal/core/domain"
)

// Extractor accepts UTF-8 text documents as they are.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) ExtractText(_ context.Context, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract plain text", errors.New("document is not valid utf-8"))
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract plain text", errors.New("could not extract any text"))
	}
	return text, nil
}
