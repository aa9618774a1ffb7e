package ports

import (
	"context"

	"github.com/kirillkom/docmeta/internal/core/domain"
)

// DocumentProcessor is the inbound contract for the extraction pipeline.
// Implementations never return an error: failures are encoded in the result.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, filename, text string) domain.DocumentResult
	ProcessPDF(ctx context.Context, filename string, data []byte) domain.DocumentResult
}

// DocumentReader is the inbound read model for processed documents.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.DocumentDetail, error)
}

// ActionLister derives follow-up items from a processed document.
type ActionLister interface {
	ListActions(ctx context.Context, id string, filter domain.ActionFilter) ([]domain.ActionableItem, error)
}
