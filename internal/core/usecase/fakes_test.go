package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/kirillkom/docmeta/internal/core/domain"
)

type modelReply struct {
	text string
	err  error
}

type modelCall struct {
	prompt string
	schema *domain.SchemaDescriptor
}

// modelClientFake replies per schema name, in order.
type modelClientFake struct {
	replies map[string][]modelReply
	calls   []modelCall
}

func newModelClientFake() *modelClientFake {
	return &modelClientFake{replies: make(map[string][]modelReply)}
}

func (f *modelClientFake) on(schemaName, text string) *modelClientFake {
	f.replies[schemaName] = append(f.replies[schemaName], modelReply{text: text})
	return f
}

func (f *modelClientFake) fail(schemaName string, err error) *modelClientFake {
	f.replies[schemaName] = append(f.replies[schemaName], modelReply{err: err})
	return f
}

func (f *modelClientFake) Call(_ context.Context, prompt string, schema *domain.SchemaDescriptor) (string, error) {
	f.calls = append(f.calls, modelCall{prompt: prompt, schema: schema})
	name := ""
	if schema != nil {
		name = schema.Name
	}
	queue := f.replies[name]
	if len(queue) == 0 {
		return "", errors.New("unexpected model call for " + name)
	}
	reply := queue[0]
	f.replies[name] = queue[1:]
	return reply.text, reply.err
}

func (f *modelClientFake) callsFor(schemaName string) []modelCall {
	var out []modelCall
	for _, c := range f.calls {
		if c.schema != nil && c.schema.Name == schemaName {
			out = append(out, c)
		}
	}
	return out
}

type resultStoreFake struct {
	mu      sync.Mutex
	results map[string]domain.DocumentResult
	saveErr error
}

func newResultStoreFake() *resultStoreFake {
	return &resultStoreFake{results: make(map[string]domain.DocumentResult)}
}

func (f *resultStoreFake) Save(_ context.Context, result domain.DocumentResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.results[result.ID] = result
	return nil
}

func (f *resultStoreFake) GetByID(_ context.Context, id string) (domain.DocumentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result, ok := f.results[id]
	if !ok {
		return domain.DocumentResult{}, domain.WrapError(domain.ErrDocumentNotFound, "get result", errors.New(id))
	}
	return result, nil
}

type publisherFake struct {
	published []domain.DocumentResult
	err       error
}

func (f *publisherFake) PublishDocumentProcessed(_ context.Context, result domain.DocumentResult) error {
	f.published = append(f.published, result)
	return f.err
}

type textExtractorFake struct {
	text string
	err  error
}

func (f *textExtractorFake) ExtractText(context.Context, []byte) (string, error) {
	return f.text, f.err
}
