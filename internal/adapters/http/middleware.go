package httpadapter

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/docmeta/internal/core/domain"
)

const requestIDHeader = "X-Request-Id"

// requestTrace is what the access log knows about one request. Handlers that
// touch a document record its id and processing status on it.
type requestTrace struct {
	requestID  string
	documentID string
	status     domain.DocumentStatus
}

type traceContextKey struct{}

func traceFromContext(ctx context.Context) *requestTrace {
	if ctx == nil {
		return nil
	}
	trace, _ := ctx.Value(traceContextKey{}).(*requestTrace)
	return trace
}

func requestIDFromContext(ctx context.Context) string {
	if trace := traceFromContext(ctx); trace != nil {
		return trace.requestID
	}
	return ""
}

// recordDocument attaches the document outcome to the request's access log
// line. It is a no-op outside requestLogMiddleware.
func recordDocument(ctx context.Context, id string, status domain.DocumentStatus) {
	if trace := traceFromContext(ctx); trace != nil {
		trace.documentID = id
		trace.status = status
	}
}

// requestLogMiddleware assigns a request id, echoes it in X-Request-Id and
// writes one http_request line once the handler returns.
func requestLogMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		trace := &requestTrace{requestID: strings.TrimSpace(r.Header.Get(requestIDHeader))}
		if trace.requestID == "" {
			trace.requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, trace.requestID)

		recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(recorder, r.WithContext(context.WithValue(r.Context(), traceContextKey{}, trace)))

		attrs := []any{
			"request_id", trace.requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.statusCode,
			"duration_ms", float64(time.Since(start).Microseconds()) / 1000.0,
			"bytes", recorder.bytesWritten,
			"remote_addr", clientHost(r.RemoteAddr),
		}
		if trace.documentID != "" {
			attrs = append(attrs, "document_id", trace.documentID, "processing_status", trace.status)
		}

		level := slog.LevelInfo
		switch {
		case recorder.statusCode >= 500:
			level = slog.LevelError
		case recorder.statusCode >= 400, trace.status == domain.StatusFailed:
			level = slog.LevelWarn
		}
		logger.Log(r.Context(), level, "http_request", attrs...)
	})
}

func clientHost(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (w *responseRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += n
	return n, err
}

func (w *responseRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
