package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/docmeta/internal/core/domain"
	"github.com/kirillkom/docmeta/internal/core/ports"
	"github.com/kirillkom/docmeta/internal/infrastructure/export/xlsx"
)

const SummaryFile = "summary.xlsx"

// ArtifactStore is the subset of localfs.Storage the runner writes through.
type ArtifactStore interface {
	Save(ctx context.Context, key string, data io.Reader) error
	SaveJSON(ctx context.Context, key string, v any) error
}

// Runner processes local files and writes one JSON result per document.
type Runner struct {
	processor ports.DocumentProcessor
	plainText ports.TextExtractor
	output    ArtifactStore
	logger    *slog.Logger
}

func NewRunner(processor ports.DocumentProcessor, plainText ports.TextExtractor, output ArtifactStore, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		processor: processor,
		plainText: plainText,
		output:    output,
		logger:    logger,
	}
}

// Supported reports whether path has an extension the runner can process.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".txt", ".md":
		return true
	default:
		return false
	}
}

// ProcessFile never fails on document problems; those are recorded in the
// result. Only writing the result can fail.
func (r *Runner) ProcessFile(ctx context.Context, path string) (domain.DocumentResult, error) {
	result := r.process(ctx, path)
	if err := r.output.SaveJSON(ctx, result.ID+".json", result); err != nil {
		return result, fmt.Errorf("write result %s: %w", result.ID, err)
	}
	return result, nil
}

func (r *Runner) process(ctx context.Context, path string) domain.DocumentResult {
	filename := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Warn("document_read_failed", "path", path, "error", err)
		return r.processor.ProcessDocument(ctx, filename, "")
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return r.processor.ProcessPDF(ctx, filename, data)
	}
	text, err := r.plainText.ExtractText(ctx, data)
	if err != nil {
		r.logger.Warn("text_extraction_failed", "path", path, "error", err)
		text = ""
	}
	return r.processor.ProcessDocument(ctx, filename, text)
}

// ProcessDir runs every supported file in dir with at most concurrency
// documents in flight and writes the summary workbook. Results keep the
// sorted file order.
func (r *Runner) ProcessDir(ctx context.Context, dir string, concurrency int) ([]domain.DocumentResult, error) {
	paths, err := ListDocuments(dir)
	if err != nil {
		return nil, err
	}
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]domain.DocumentResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, path := range paths {
		g.Go(func() error {
			result, err := r.ProcessFile(gctx, path)
			results[i] = result
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	workbook, err := xlsx.SummaryWorkbook(results)
	if err != nil {
		return results, err
	}
	if err := r.output.Save(ctx, SummaryFile, bytes.NewReader(workbook)); err != nil {
		return results, fmt.Errorf("write summary: %w", err)
	}
	r.logger.Info("batch_completed", "dir", dir, "documents", len(results))
	return results, nil
}

// ListDocuments returns the supported files directly under dir, sorted.
func ListDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !Supported(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Counts tallies results by processing status.
func Counts(results []domain.DocumentResult) (succeeded, failed int) {
	for _, r := range results {
		if r.Status == domain.StatusSuccess {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
