package domain

import "time"

type DocumentStatus string

const (
	StatusSuccess DocumentStatus = "success"
	StatusFailed  DocumentStatus = "failed"
)

// UnknownType is reported when a document failed before it could be classified.
const UnknownType = "unknown"

type Classification struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// Metadata maps a field name to its extracted value. A nil value means the
// field was requested but not found in the document.
type Metadata map[string]any

// Clone returns a deep copy of m. Nested maps and slices are copied so the
// clone shares no mutable state with m.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = cloneValue(x)
		}
		return out
	case Metadata:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = cloneValue(x)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, x := range t {
			out[i], _ = cloneValue(x).(map[string]any)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// DocumentResult is built once per processed document and never mutated.
type DocumentResult struct {
	ID             string         `json:"document_id"`
	Filename       string         `json:"filename"`
	Classification Classification `json:"classification"`
	Metadata       Metadata       `json:"metadata"`
	Status         DocumentStatus `json:"processing_status"`
	Error          string         `json:"error_message,omitempty"`
	ProcessedAt    time.Time      `json:"processed_at"`
}

// FieldValue pairs an extracted value with the registry's semantic description.
type FieldValue struct {
	Value       any    `json:"value"`
	Description string `json:"description"`
}

// DocumentDetail is the read model returned to API consumers.
type DocumentDetail struct {
	ID             string                `json:"document_id"`
	Filename       string                `json:"filename"`
	Classification Classification        `json:"classification"`
	Metadata       map[string]FieldValue `json:"metadata"`
	Status         DocumentStatus        `json:"processing_status"`
	Error          string                `json:"error_message,omitempty"`
	ProcessedAt    time.Time             `json:"processed_at"`
}

type ActionStatus string

const (
	ActionPending   ActionStatus = "pending"
	ActionCompleted ActionStatus = "completed"
)

type ActionPriority string

const (
	PriorityLow    ActionPriority = "low"
	PriorityMedium ActionPriority = "medium"
	PriorityHigh   ActionPriority = "high"
)

type ActionableItem struct {
	Description string         `json:"description"`
	Status      ActionStatus   `json:"status"`
	Deadline    string         `json:"deadline,omitempty"`
	Priority    ActionPriority `json:"priority"`
	SourceField string         `json:"source_field"`
}

// ActionFilter narrows actionable items. Empty fields match everything.
type ActionFilter struct {
	Status   string
	Deadline string
	Priority string
}
