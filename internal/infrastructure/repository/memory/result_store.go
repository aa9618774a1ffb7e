package memory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/kirillkom/docmeta/internal/core/domain"
)

// ResultStore keeps processed results in process memory. A positive
// retention evicts results after that long; zero keeps them until exit.
// Metadata is copied on the way in and out so callers never share it.
type ResultStore struct {
	cache *cache.Cache
}

func NewResultStore(retention time.Duration) *ResultStore {
	expiration := cache.NoExpiration
	cleanup := time.Duration(0)
	if retention > 0 {
		expiration = retention
		cleanup = retention / 2
	}
	return &ResultStore{cache: cache.New(expiration, cleanup)}
}

func (s *ResultStore) Save(_ context.Context, result domain.DocumentResult) error {
	if strings.TrimSpace(result.ID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "save result", errors.New("result without id"))
	}
	result.Metadata = result.Metadata.Clone()
	s.cache.Set(result.ID, result, cache.DefaultExpiration)
	return nil
}

func (s *ResultStore) GetByID(_ context.Context, id string) (domain.DocumentResult, error) {
	if x, found := s.cache.Get(id); found {
		if result, ok := x.(domain.DocumentResult); ok {
			result.Metadata = result.Metadata.Clone()
			return result, nil
		}
	}
	return domain.DocumentResult{}, domain.WrapError(domain.ErrDocumentNotFound, "get result", errors.New(id))
}

func (s *ResultStore) Len() int {
	return s.cache.ItemCount()
}
