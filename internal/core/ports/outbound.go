package ports

import (
	"context"

	"github.com/kirillkom/docmeta/internal/core/domain"
)

// GenerateRequest is the single call shape of the remote model.
type GenerateRequest struct {
	Prompt      string
	Schema      *domain.SchemaDescriptor
	Temperature float64
	MaxTokens   int
}

// ModelGenerator is a provider adapter (ollama, openai, ...).
type ModelGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// ModelClient adds caching and bounded retries on top of a ModelGenerator.
type ModelClient interface {
	Call(ctx context.Context, prompt string, schema *domain.SchemaDescriptor) (string, error)
}

// ResponseCache stores raw model responses under opaque keys.
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, payload string) error
	Prune(ctx context.Context) error
	Clear(ctx context.Context) error
}

// ResultStore keeps completed document results by id.
type ResultStore interface {
	Save(ctx context.Context, result domain.DocumentResult) error
	GetByID(ctx context.Context, id string) (domain.DocumentResult, error)
}

// TextExtractor turns raw document bytes into plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// ResultPublisher announces completed document results.
type ResultPublisher interface {
	PublishDocumentProcessed(ctx context.Context, result domain.DocumentResult) error
}
