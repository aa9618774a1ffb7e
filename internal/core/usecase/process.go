package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/docmeta/internal/core/domain"
	"github.com/kirillkom/docmeta/internal/core/ports"
)

var errNoText = errors.New("could not extract any text")

// PipelineObserver receives per-document measurements.
type PipelineObserver interface {
	StartDocument()
	FinishDocument(status string, duration time.Duration)
	RecordStrategy(strategy string)
}

type noopPipelineObserver struct{}

func (noopPipelineObserver) StartDocument() {}

func (noopPipelineObserver) FinishDocument(string, time.Duration) {}

func (noopPipelineObserver) RecordStrategy(string) {}

type PipelineOptions struct {
	Store     ports.ResultStore
	Publisher ports.ResultPublisher
	Observer  PipelineObserver
	Logger    *slog.Logger
	Now       func() time.Time
	NewID     func() string
}

// Pipeline classifies a document, extracts its metadata and records the result.
type Pipeline struct {
	textExtractor ports.TextExtractor
	classifier    *Classifier
	extractor     *Extractor
	registry      *domain.Registry
	opts          PipelineOptions
}

func NewPipeline(
	textExtractor ports.TextExtractor,
	classifier *Classifier,
	extractor *Extractor,
	registry *domain.Registry,
	opts PipelineOptions,
) *Pipeline {
	if opts.Observer == nil {
		opts.Observer = noopPipelineObserver{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.NewString() }
	}
	return &Pipeline{
		textExtractor: textExtractor,
		classifier:    classifier,
		extractor:     extractor,
		registry:      registry,
		opts:          opts,
	}
}

// ProcessPDF extracts the text of a PDF and processes it. Extraction failures
// produce a failed result.
func (p *Pipeline) ProcessPDF(ctx context.Context, filename string, data []byte) domain.DocumentResult {
	var (
		text string
		err  = errors.New("no text extractor configured")
	)
	if p.textExtractor != nil {
		text, err = p.textExtractor.ExtractText(ctx, data)
	}
	if err != nil {
		start := p.opts.Now()
		p.opts.Observer.StartDocument()
		return p.finish(ctx, p.opts.NewID(), filename, nil, nil, fmt.Errorf("extract text from %s: %w", filename, err), start)
	}
	return p.ProcessDocument(ctx, filename, text)
}

// ProcessDocument never returns an error; failures are recorded in the result.
func (p *Pipeline) ProcessDocument(ctx context.Context, filename, text string) domain.DocumentResult {
	start := p.opts.Now()
	id := p.opts.NewID()
	p.opts.Observer.StartDocument()

	if strings.TrimSpace(text) == "" {
		return p.finish(ctx, id, filename, nil, nil, domain.WrapError(domain.ErrInvalidInput, "process document", errNoText), start)
	}

	classification, err := p.classifier.Classify(ctx, text)
	if err != nil {
		return p.finish(ctx, id, filename, nil, nil, err, start)
	}

	strategy := SelectStrategy(p.registry, classification.Type)
	metadata, degraded, err := p.extractor.Run(ctx, strategy, classification.Type, text)
	label := string(strategy.Kind)
	if degraded {
		label += "_degraded"
	}
	p.opts.Observer.RecordStrategy(label)
	if err != nil {
		return p.finish(ctx, id, filename, &classification, nil, err, start)
	}

	return p.finish(ctx, id, filename, &classification, metadata, nil, start)
}

func (p *Pipeline) finish(
	ctx context.Context,
	id, filename string,
	classification *domain.Classification,
	metadata domain.Metadata,
	processErr error,
	start time.Time,
) domain.DocumentResult {
	result := domain.DocumentResult{
		ID:             id,
		Filename:       filename,
		Classification: domain.Classification{Type: domain.UnknownType},
		Metadata:       domain.Metadata{},
		Status:         domain.StatusSuccess,
		ProcessedAt:    p.opts.Now().UTC(),
	}
	if classification != nil {
		result.Classification = *classification
	}
	if metadata != nil {
		result.Metadata = metadata
	}
	if processErr != nil {
		result.Status = domain.StatusFailed
		result.Error = processErr.Error()
		p.opts.Logger.Error("document_processing_failed", "document_id", id, "filename", filename, "error", processErr)
	} else {
		p.opts.Logger.Info("document_processed",
			"document_id", id,
			"filename", filename,
			"type", result.Classification.Type,
			"confidence", result.Classification.Confidence,
			"fields", len(result.Metadata),
		)
	}
	p.opts.Observer.FinishDocument(string(result.Status), p.opts.Now().Sub(start))

	if p.opts.Store != nil {
		if err := p.opts.Store.Save(ctx, result); err != nil {
			p.opts.Logger.Error("document_result_store_failed", "document_id", id, "error", err)
		}
	}
	if p.opts.Publisher != nil {
		if err := p.opts.Publisher.PublishDocumentProcessed(ctx, result); err != nil {
			p.opts.Logger.Warn("document_result_publish_failed", "document_id", id, "error", err)
		}
	}
	return result
}
