package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/docmeta/internal/core/domain"
	"github.com/kirillkom/docmeta/internal/core/normalize"
	"github.com/kirillkom/docmeta/internal/core/ports"
)

// maxSuggestedFields caps how many discovered fields join the baseline.
const maxSuggestedFields = 4

type StrategyKind string

const (
	StrategyFixed   StrategyKind = "fixed"
	StrategyDynamic StrategyKind = "dynamic"
	StrategySkip    StrategyKind = "skip"
)

// Strategy is chosen once per document from its classification.
type Strategy struct {
	Kind   StrategyKind
	Fields []string
}

// SelectStrategy maps a classified type to an extraction strategy: the
// fallback type is discovered dynamically, a type with fields uses them, and a
// type without fields skips extraction.
func SelectStrategy(registry *domain.Registry, typeName string) Strategy {
	if typeName == registry.Fallback() {
		return Strategy{Kind: StrategyDynamic}
	}
	t, ok := registry.Lookup(typeName)
	if !ok || len(t.Fields) == 0 {
		return Strategy{Kind: StrategySkip}
	}
	return Strategy{Kind: StrategyFixed, Fields: append([]string(nil), t.Fields...)}
}

type ExtractorBudgets struct {
	Discovery int
	Extract   int
}

// Extractor runs fixed and dynamic metadata extraction.
type Extractor struct {
	client   ports.ModelClient
	registry *domain.Registry
	budgets  ExtractorBudgets
	logger   *slog.Logger
}

func NewExtractor(client ports.ModelClient, registry *domain.Registry, budgets ExtractorBudgets, logger *slog.Logger) *Extractor {
	if budgets.Discovery <= 0 {
		budgets.Discovery = DefaultDiscoveryBudget
	}
	if budgets.Extract <= 0 {
		budgets.Extract = DefaultExtractBudget
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{client: client, registry: registry, budgets: budgets, logger: logger}
}

// Run applies strategy to text. degraded reports that dynamic discovery failed
// and only the baseline fields were extracted.
func (e *Extractor) Run(ctx context.Context, strategy Strategy, docType, text string) (metadata domain.Metadata, degraded bool, err error) {
	switch strategy.Kind {
	case StrategyFixed:
		metadata, err = e.ExtractFixed(ctx, text, docType, strategy.Fields)
		return metadata, false, err
	case StrategyDynamic:
		return e.ExtractDynamic(ctx, text)
	default:
		e.logger.Info("metadata_extraction_skipped", "type", docType)
		return domain.Metadata{}, false, nil
	}
}

// ExtractFixed extracts exactly fields. Every requested field is present in
// the result; fields the model left out are nil.
func (e *Extractor) ExtractFixed(ctx context.Context, text, docType string, fields []string) (domain.Metadata, error) {
	prompt := buildExtractionPrompt(docType, fields, text, e.budgets.Extract)
	return e.extract(ctx, prompt, docType, fields)
}

// ExtractDynamic discovers fields worth extracting, merges them with the
// baseline and extracts the merged set with the discovered summary as context.
// Any failure along that path degrades to a baseline-only extraction.
func (e *Extractor) ExtractDynamic(ctx context.Context, text string) (domain.Metadata, bool, error) {
	metadata, err := e.discoverAndExtract(ctx, text)
	if err == nil {
		return metadata, false, nil
	}
	if ctx.Err() != nil {
		return nil, false, ctx.Err()
	}

	e.logger.Warn("dynamic_extraction_degraded", "error", err)
	fallback := e.registry.Fallback()
	metadata, err = e.ExtractFixed(ctx, text, fallback, domain.BaselineFields)
	if err != nil {
		return nil, true, err
	}
	return metadata, true, nil
}

func (e *Extractor) discoverAndExtract(ctx context.Context, text string) (domain.Metadata, error) {
	schema := discoverySchema()
	raw, err := e.client.Call(ctx, buildDiscoveryPrompt(text, e.budgets.Discovery), schema)
	if err != nil {
		return nil, fmt.Errorf("discover fields: %w", err)
	}
	parsed, err := normalize.Decode(raw, schema)
	if err != nil {
		return nil, fmt.Errorf("discover fields: %w", err)
	}

	summary, _ := parsed[domain.SummaryField].(string)
	suggested, _ := parsed["suggested_fields"].([]any)
	fields := MergeFields(domain.BaselineFields, suggested, maxSuggestedFields)
	e.logger.Info("dynamic_fields_selected", "fields", fields)

	prompt := buildContextualExtractionPrompt(fields, summary, text, e.budgets.Extract)
	metadata, err := e.extract(ctx, prompt, e.registry.Fallback(), fields)
	if err != nil {
		return nil, err
	}
	metadata[domain.SummaryField] = summary
	return metadata, nil
}

func (e *Extractor) extract(ctx context.Context, prompt, docType string, fields []string) (domain.Metadata, error) {
	var isList func(string) bool
	if t, ok := e.registry.Lookup(docType); ok {
		isList = t.IsListField
	}
	schema := extractionSchema(fields, isList)

	raw, err := e.client.Call(ctx, prompt, schema)
	if err != nil {
		return nil, fmt.Errorf("extract metadata: %w", err)
	}
	parsed, err := normalize.Decode(raw, schema)
	if err != nil {
		return nil, fmt.Errorf("extract metadata: %w", err)
	}

	// Keys the model added on its own are dropped.
	metadata := make(domain.Metadata, len(fields))
	dropped := len(parsed)
	for _, f := range fields {
		v, ok := parsed[f]
		if ok {
			dropped--
		}
		metadata[f] = v
	}
	if dropped > 0 {
		e.logger.Debug("metadata_unrequested_keys_dropped", "type", docType, "count", dropped)
	}
	e.logger.Info("metadata_extracted", "type", docType, "fields", len(fields))
	return metadata, nil
}

// MergeFields returns baseline followed by up to limit new suggested names.
// Names are trimmed; blanks, non-strings and duplicates are dropped.
func MergeFields(baseline []string, suggested []any, limit int) []string {
	out := make([]string, 0, len(baseline)+limit)
	seen := make(map[string]struct{}, len(baseline)+limit)
	for _, f := range baseline {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}

	added := 0
	for _, s := range suggested {
		if added >= limit {
			break
		}
		name, ok := s.(string)
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
		added++
	}
	return out
}
