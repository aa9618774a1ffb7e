package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kirillkom/docmeta/internal/config"
	"github.com/kirillkom/docmeta/internal/core/domain"
)

// blockingProcessor holds every ProcessPDF call until release is closed.
type blockingProcessor struct {
	started chan string
	release chan struct{}
}

func newBlockingProcessor() *blockingProcessor {
	return &blockingProcessor{started: make(chan string, 4), release: make(chan struct{})}
}

func (p *blockingProcessor) ProcessDocument(_ context.Context, filename, _ string) domain.DocumentResult {
	return domain.DocumentResult{ID: "doc-text", Filename: filename, Status: domain.StatusSuccess}
}

func (p *blockingProcessor) ProcessPDF(ctx context.Context, filename string, _ []byte) domain.DocumentResult {
	p.started <- filename
	select {
	case <-p.release:
	case <-ctx.Done():
	}
	return domain.DocumentResult{ID: "doc-" + filename, Filename: filename, Status: domain.StatusSuccess}
}

func analyzeRequest(t *testing.T, filename string) *http.Request {
	t.Helper()
	body, contentType := multipartBody(t, filename, []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/analyze", body)
	req.Header.Set("Content-Type", contentType)
	return req
}

func TestAnalyzeRateLimitedReturns429(t *testing.T) {
	processor := &processorFake{}
	handler := NewRouter(config.Config{
		APIRateLimitRPS:   1,
		APIRateLimitBurst: 1,
	}, processor, readerFake{}, &actionsFake{}).Handler()

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, analyzeRequest(t, "a.pdf"))
	if first.Code != http.StatusOK {
		t.Fatalf("first upload expected 200, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, analyzeRequest(t, "b.pdf"))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second upload expected 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header for 429 response")
	}
	if processor.gotFilename != "a.pdf" {
		t.Fatalf("rate-limited upload reached the processor: %q", processor.gotFilename)
	}
}

func TestAnalyzeBackpressureReturns503WhileProcessorBusy(t *testing.T) {
	processor := newBlockingProcessor()
	handler := NewRouter(config.Config{
		APIMaxInFlight:      1,
		APIBackpressureWait: 20 * time.Millisecond,
	}, processor, readerFake{}, &actionsFake{}).Handler()

	slow := analyzeRequest(t, "slow.pdf")
	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, slow)
		done <- res
	}()

	select {
	case <-processor.started:
	case <-time.After(time.Second):
		t.Fatalf("first upload never reached the processor")
	}

	busy := httptest.NewRecorder()
	handler.ServeHTTP(busy, analyzeRequest(t, "queued.pdf"))
	if busy.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while processor is busy, got %d", busy.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(busy.Body).Decode(&resp); err != nil {
		t.Fatalf("decode overload response: %v", err)
	}
	if resp["error"] == "" {
		t.Fatalf("expected overload error message in response")
	}
	select {
	case name := <-processor.started:
		t.Fatalf("rejected upload %q reached the processor", name)
	default:
	}

	close(processor.release)

	select {
	case res := <-done:
		if res.Code != http.StatusOK {
			t.Fatalf("first upload expected 200, got %d", res.Code)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for first upload")
	}
}
