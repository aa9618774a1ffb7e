package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/kirillkom/docmeta/internal/config"
	"github.com/kirillkom/docmeta/internal/core/domain"
	"github.com/kirillkom/docmeta/internal/core/ports"
	"github.com/kirillkom/docmeta/internal/observability/metrics"
)

const serviceName = "docmeta-api"

type Router struct {
	cfg       config.Config
	processor ports.DocumentProcessor
	reader    ports.DocumentReader
	actions   ports.ActionLister
	metrics   *metrics.HTTPServerMetrics
	logger    *slog.Logger
}

func NewRouter(
	cfg config.Config,
	processor ports.DocumentProcessor,
	reader ports.DocumentReader,
	actions ports.ActionLister,
) *Router {
	return &Router{
		cfg:       cfg,
		processor: processor,
		reader:    reader,
		actions:   actions,
		logger:    slog.Default(),
	}
}

// WithMetrics exposes /metrics and records request series.
func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics) *Router {
	rt.metrics = m
	return rt
}

func (rt *Router) WithLogger(logger *slog.Logger) *Router {
	if logger != nil {
		rt.logger = logger
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/documents/analyze", rt.analyzeDocument)
	mux.HandleFunc("GET /v1/documents/{id}", rt.getDocumentByID)
	mux.HandleFunc("GET /v1/documents/{id}/actions", rt.listActions)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, rt.cfg.APIBackpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestLogMiddleware(rt.logger, handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) analyzeDocument(w http.ResponseWriter, r *http.Request) {
	maxBytes := rt.cfg.APIMaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = 25 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "uploaded file is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	filename := filepath.Base(fileHeader.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		writeError(w, http.StatusBadRequest, "only PDF files are supported")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordUpload(serviceName, len(data))
	}

	ctx := r.Context()
	if rt.cfg.APIRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rt.cfg.APIRequestTimeout)
		defer cancel()
	}

	result := rt.processor.ProcessPDF(ctx, filename, data)
	recordDocument(r.Context(), result.ID, result.Status)
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "document id is required")
		return
	}

	doc, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	recordDocument(r.Context(), doc.ID, doc.Status)
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) listActions(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	query := r.URL.Query()
	filter := domain.ActionFilter{
		Status:   strings.TrimSpace(query.Get("status")),
		Deadline: strings.TrimSpace(query.Get("deadline")),
		Priority: strings.TrimSpace(query.Get("priority")),
	}

	items, err := rt.actions.ListActions(r.Context(), id, filter)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	if items == nil {
		items = []domain.ActionableItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
