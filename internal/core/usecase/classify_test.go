package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/kirillkom/docmeta/internal/core/domain"
)

func TestClassifyReturnsRegisteredType(t *testing.T) {
	client := newModelClientFake().on("document_classification", "```json\n{\"type\":\"invoice\",\"confidence\":0.92}\n```")
	c := NewClassifier(client, domain.DefaultRegistry(), 0, nil)

	got, err := c.Classify(context.Background(), "INVOICE #123")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got.Type != "invoice" || got.Confidence != 0.92 {
		t.Fatalf("unexpected classification %+v", got)
	}

	prompt := client.calls[0].prompt
	if !strings.Contains(prompt, "invoice, contract, report") || !strings.Contains(prompt, "'other'") {
		t.Fatalf("prompt should list candidates and fallback: %s", prompt)
	}
}

func TestClassifyClampsConfidence(t *testing.T) {
	client := newModelClientFake().
		on("document_classification", `{"type":"report","confidence":1.7}`).
		on("document_classification", `{"type":"report","confidence":-0.2}`)
	c := NewClassifier(client, domain.DefaultRegistry(), 0, nil)

	high, err := c.Classify(context.Background(), "a")
	if err != nil || high.Confidence != 1 {
		t.Fatalf("expected clamp to 1, got %+v err=%v", high, err)
	}
	low, err := c.Classify(context.Background(), "b")
	if err != nil || low.Confidence != 0 {
		t.Fatalf("expected clamp to 0, got %+v err=%v", low, err)
	}
}

func TestClassifyUnknownTypeFallsBackWithModerateConfidence(t *testing.T) {
	cases := map[float64]float64{0.95: 0.6, 0.1: 0.3, 0.45: 0.45}
	for reported, want := range cases {
		client := newModelClientFake().on("document_classification", `{"type":"spaceship_manual","confidence":`+strconv.FormatFloat(reported, 'f', -1, 64)+`}`)
		c := NewClassifier(client, domain.DefaultRegistry(), 0, nil)

		got, err := c.Classify(context.Background(), "text")
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		if got.Type != domain.FallbackType {
			t.Fatalf("expected fallback type, got %q", got.Type)
		}
		if got.Confidence != want {
			t.Fatalf("reported %.2f: expected confidence %.2f, got %.2f", reported, want, got.Confidence)
		}
	}
}

func TestClassifyTruncatesDocumentText(t *testing.T) {
	client := newModelClientFake().on("document_classification", `{"type":"other","confidence":0.5}`)
	c := NewClassifier(client, domain.DefaultRegistry(), 10, nil)

	if _, err := c.Classify(context.Background(), "0123456789ABCDEFGHIJ"); err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	prompt := client.calls[0].prompt
	if !strings.Contains(prompt, "0123456789...") || strings.Contains(prompt, "ABCDEFGHIJ") {
		t.Fatalf("expected text truncated to budget: %s", prompt)
	}
}

func TestClassifyPropagatesFailures(t *testing.T) {
	client := newModelClientFake().
		on("document_classification", `{"type":"invoice"}`).
		fail("document_classification", domain.WrapError(domain.ErrModelUnavailable, "llm.call", errors.New("down")))
	c := NewClassifier(client, domain.DefaultRegistry(), 0, nil)

	if _, err := c.Classify(context.Background(), "x"); !domain.IsKind(err, domain.ErrMalformedResponse) {
		t.Fatalf("expected malformed response, got %v", err)
	}
	if _, err := c.Classify(context.Background(), "x"); !domain.IsKind(err, domain.ErrModelUnavailable) {
		t.Fatalf("expected model unavailable, got %v", err)
	}
}
