package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/docmeta/internal/core/domain"
	"github.com/kirillkom/docmeta/internal/core/ports"
)

// DocumentQueries serves processed results with registry context attached.
type DocumentQueries struct {
	store    ports.ResultStore
	registry *domain.Registry
	logger   *slog.Logger
}

func NewDocumentQueries(store ports.ResultStore, registry *domain.Registry, logger *slog.Logger) *DocumentQueries {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentQueries{store: store, registry: registry, logger: logger}
}

// GetByID returns the stored result with each metadata field paired with its
// semantic description.
func (q *DocumentQueries) GetByID(ctx context.Context, id string) (*domain.DocumentDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "get document", fmt.Errorf("document id is required"))
	}
	result, err := q.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	fields := make(map[string]domain.FieldValue, len(result.Metadata))
	for name, value := range result.Metadata {
		fields[name] = domain.FieldValue{
			Value:       value,
			Description: q.registry.Describe(result.Classification.Type, name),
		}
	}
	return &domain.DocumentDetail{
		ID:             result.ID,
		Filename:       result.Filename,
		Classification: result.Classification,
		Metadata:       fields,
		Status:         result.Status,
		Error:          result.Error,
		ProcessedAt:    result.ProcessedAt,
	}, nil
}
