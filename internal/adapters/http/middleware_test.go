package httpadapter

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/docmeta/internal/config"
)

func decodeAccessLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		if entry["msg"] == "http_request" {
			return entry
		}
	}
	t.Fatalf("no http_request line in %s", buf.String())
	return nil
}

func TestAccessLogRecordsDocumentOutcome(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := NewRouter(config.Config{}, &processorFake{}, readerFake{}, &actionsFake{}).
		WithLogger(logger).
		Handler()

	req := analyzeRequest(t, "invoice.pdf")
	req.Header.Set(requestIDHeader, "req-42")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if res.Header().Get(requestIDHeader) != "req-42" {
		t.Fatalf("expected caller request id echoed, got %q", res.Header().Get(requestIDHeader))
	}

	entry := decodeAccessLine(t, &buf)
	if entry["request_id"] != "req-42" || entry["path"] != "/v1/documents/analyze" {
		t.Fatalf("unexpected access log %v", entry)
	}
	if entry["document_id"] != "doc-1" || entry["processing_status"] != "success" {
		t.Fatalf("expected document outcome in access log, got %v", entry)
	}
	if entry["status"] != float64(http.StatusOK) {
		t.Fatalf("unexpected status %v", entry["status"])
	}
}

func TestAccessLogOmitsDocumentForOtherRoutes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := NewRouter(config.Config{}, &processorFake{}, readerFake{}, &actionsFake{}).
		WithLogger(logger).
		Handler()

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	entry := decodeAccessLine(t, &buf)
	if _, ok := entry["document_id"]; ok {
		t.Fatalf("healthz must not carry a document id: %v", entry)
	}
	if id, _ := entry["request_id"].(string); id == "" || id != res.Header().Get(requestIDHeader) {
		t.Fatalf("expected generated request id in log and header, got %v / %q", entry["request_id"], res.Header().Get(requestIDHeader))
	}
}

func TestRecordDocumentOutsideMiddlewareIsNoop(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	recordDocument(req.Context(), "doc-1", "success")
	if requestIDFromContext(req.Context()) != "" {
		t.Fatalf("expected empty request id without middleware")
	}
}
