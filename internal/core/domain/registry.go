package domain

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// FallbackType is the catch-all classification of the built-in registry.
	FallbackType = "other"

	LineItemsField = "line_items"
	SummaryField   = "document_summary"

	defaultFieldDescription = "No specific semantic description available for this field."
)

// BaselineFields are always extracted from documents of the fallback type.
var BaselineFields = []string{"document_title", "author", "date_created", "subject"}

type DocumentType struct {
	Name         string            `yaml:"name" validate:"required"`
	Keywords     []string          `yaml:"classification_keywords"`
	Fields       []string          `yaml:"metadata_fields" validate:"dive,required"`
	Descriptions map[string]string `yaml:"semantic_description"`

	// ListFields are extracted as arrays of scalars instead of single values.
	ListFields []string `yaml:"list_fields"`
	Fallback   bool     `yaml:"fallback"`
}

func (t DocumentType) IsListField(field string) bool {
	for _, f := range t.ListFields {
		if f == field {
			return true
		}
	}
	return false
}

// Registry is the read-only set of document types known to the classifier.
type Registry struct {
	types    []DocumentType
	index    map[string]int
	fallback string
}

func NewRegistry(types []DocumentType) (*Registry, error) {
	if len(types) == 0 {
		return nil, WrapError(ErrInvalidInput, "build registry", errors.New("no document types"))
	}

	r := &Registry{
		types: make([]DocumentType, 0, len(types)),
		index: make(map[string]int, len(types)),
	}
	for _, t := range types {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return nil, WrapError(ErrInvalidInput, "build registry", errors.New("document type without name"))
		}
		if _, dup := r.index[name]; dup {
			return nil, WrapError(ErrInvalidInput, "build registry", fmt.Errorf("duplicate document type %q", name))
		}
		if t.Fallback {
			if r.fallback != "" {
				return nil, WrapError(ErrInvalidInput, "build registry", fmt.Errorf("second fallback type %q", name))
			}
			r.fallback = name
		}
		t.Name = name
		r.index[name] = len(r.types)
		r.types = append(r.types, t)
	}
	if r.fallback == "" {
		return nil, WrapError(ErrInvalidInput, "build registry", errors.New("no fallback type"))
	}
	return r, nil
}

func (r *Registry) Fallback() string { return r.fallback }

func (r *Registry) Lookup(name string) (DocumentType, bool) {
	i, ok := r.index[name]
	if !ok {
		return DocumentType{}, false
	}
	return r.types[i], true
}

func (r *Registry) Contains(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Candidates returns the non-fallback type names in registration order.
func (r *Registry) Candidates() []string {
	out := make([]string, 0, len(r.types))
	for _, t := range r.types {
		if !t.Fallback {
			out = append(out, t.Name)
		}
	}
	return out
}

func (r *Registry) Describe(typeName, field string) string {
	t, ok := r.Lookup(typeName)
	if ok {
		if d, ok := t.Descriptions[field]; ok && d != "" {
			return d
		}
	}
	return defaultFieldDescription
}

func DefaultDocumentTypes() []DocumentType {
	return []DocumentType{
		{
			Name:     "invoice",
			Keywords: []string{"invoice", "bill", "receipt"},
			Fields:   []string{"vendor", "amount", "due_date", LineItemsField},
			Descriptions: map[string]string{
				"vendor":       "The name of the company or individual issuing the invoice.",
				"amount":       "The total amount due on the invoice, including currency.",
				"due_date":     "The date by which the invoice payment is expected.",
				LineItemsField: "A list of individual products or services with their quantities and prices.",
			},
		},
		{
			Name:     "contract",
			Keywords: []string{"contract", "agreement", "legal document"},
			Fields:   []string{"parties", "effective_date", "termination_date", "key_terms"},
			Descriptions: map[string]string{
				"parties":          "The names of all entities involved and bound by the contract.",
				"effective_date":   "The date when the terms of the contract officially begin.",
				"termination_date": "The date when the contract is set to expire, if applicable.",
				"key_terms":        "A summary of crucial clauses, conditions, or definitions within the contract.",
			},
			ListFields: []string{"parties", "key_terms"},
		},
		{
			Name:     "report",
			Keywords: []string{"report", "quarterly report", "financial statement"},
			Fields:   []string{"reporting_period", "key_metrics", "executive_summary"},
			Descriptions: map[string]string{
				"reporting_period":  "The period (e.g., quarter, year) that the report covers.",
				"key_metrics":       "Important quantitative measures and performance indicators.",
				"executive_summary": "A brief overview of the report's main findings and conclusions.",
			},
			ListFields: []string{"key_metrics"},
		},
		{
			Name:     FallbackType,
			Keywords: []string{"document", "letter", "memo", "presentation", "manual", "form"},
			Fields:   []string{"document_title", "author", "date_created", "subject", "key_points", "document_purpose"},
			Descriptions: map[string]string{
				"document_title":   "The title or main heading of the document.",
				"author":           "The person or organization who created or authored the document.",
				"date_created":     "The date when the document was created or issued.",
				"subject":          "The main subject or topic that the document addresses.",
				"key_points":       "The most important points, findings, or conclusions mentioned in the document.",
				"document_purpose": "The primary purpose or intended use of the document.",
				SummaryField:       "A brief summary of what the document is about.",
			},
			ListFields: []string{"key_points"},
			Fallback:   true,
		},
	}
}

func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultDocumentTypes())
	if err != nil {
		panic(err)
	}
	return r
}
