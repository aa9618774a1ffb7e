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

const (
	DefaultClassifyBudget  = 2000
	DefaultDiscoveryBudget = 3000
	DefaultExtractBudget   = 4000

	fallbackMinConfidence = 0.3
	fallbackMaxConfidence = 0.6
)

// Classifier picks a registered document type for a text.
type Classifier struct {
	client   ports.ModelClient
	registry *domain.Registry
	budget   int
	logger   *slog.Logger
}

func NewClassifier(client ports.ModelClient, registry *domain.Registry, budget int, logger *slog.Logger) *Classifier {
	if budget <= 0 {
		budget = DefaultClassifyBudget
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{client: client, registry: registry, budget: budget, logger: logger}
}

// Classify asks the model for a type and confidence. Out-of-range confidence
// is clamped; an unregistered type is replaced by the fallback type.
func (c *Classifier) Classify(ctx context.Context, text string) (domain.Classification, error) {
	schema := classificationSchema()
	prompt := buildClassificationPrompt(c.registry.Candidates(), c.registry.Fallback(), text, c.budget)

	raw, err := c.client.Call(ctx, prompt, schema)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("classify document: %w", err)
	}
	parsed, err := normalize.Decode(raw, schema)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("classify document: %w", err)
	}

	typeName, _ := parsed["type"].(string)
	typeName = strings.TrimSpace(typeName)
	confidence, _ := parsed["confidence"].(float64)

	if confidence < 0 || confidence > 1 {
		c.logger.Warn("classification_confidence_clamped", "confidence", confidence)
		confidence = clamp(confidence, 0, 1)
	}

	if !c.registry.Contains(typeName) {
		c.logger.Info("classification_type_unrecognized", "type", typeName, "fallback", c.registry.Fallback())
		typeName = c.registry.Fallback()
		confidence = clamp(confidence, fallbackMinConfidence, fallbackMaxConfidence)
	}

	c.logger.Info("document_classified", "type", typeName, "confidence", confidence)
	return domain.Classification{Type: typeName, Confidence: confidence}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
