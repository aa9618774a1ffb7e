package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/docmeta/internal/core/domain"
)

// Extractor reads the text layer of PDF documents.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractText concatenates the plain text of every page. Pages whose text
// cannot be decoded contribute nothing.
func (e *Extractor) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract pdf text", errors.New("empty document"))
	}

	// The parser panics on some corrupt inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = domain.WrapError(domain.ErrInvalidInput, "extract pdf text", fmt.Errorf("read pdf: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract pdf text", fmt.Errorf("read pdf: %w", err))
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(content)
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract pdf text", errors.New("could not extract any text from pdf"))
	}
	return sb.String(), nil
}
