package domain

import (
	"encoding/json"
	"sort"
)

type FieldKind string

const (
	KindString  FieldKind = "string"
	KindNumber  FieldKind = "number"
	KindBoolean FieldKind = "boolean"
	// KindScalar accepts any non-compound JSON value.
	KindScalar FieldKind = "scalar"
	KindArray  FieldKind = "array"
	KindObject FieldKind = "object"
)

type SchemaField struct {
	Name       string
	Kind       FieldKind
	Required   bool
	Nullable   bool
	Items      *SchemaField
	Properties []SchemaField
}

// SchemaDescriptor describes the JSON object a model call is expected to return.
// It steers the provider's structured output and validates the parsed reply.
type SchemaDescriptor struct {
	Name       string
	Properties []SchemaField
}

// JSONSchema renders the descriptor as a JSON Schema document.
func (s *SchemaDescriptor) JSONSchema() map[string]any {
	if s == nil {
		return nil
	}
	return objectSchema(s.Properties, false)
}

// Canonical returns a serialization that does not depend on the order in
// which properties were declared.
func (s *SchemaDescriptor) Canonical() ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(map[string]any{
		"name":   s.Name,
		"schema": s.JSONSchema(),
	})
}

// FieldNames lists top-level property names in declaration order.
func (s *SchemaDescriptor) FieldNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Properties))
	for _, p := range s.Properties {
		names = append(names, p.Name)
	}
	return names
}

func objectSchema(props []SchemaField, nullable bool) map[string]any {
	properties := make(map[string]any, len(props))
	required := make([]string, 0, len(props))
	for _, p := range props {
		properties[p.Name] = fieldSchema(p)
		if p.Required {
			required = append(required, p.Name)
		}
	}
	sort.Strings(required)

	out := map[string]any{
		"type":       typeValue("object", nullable),
		"properties": properties,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func fieldSchema(f SchemaField) map[string]any {
	switch f.Kind {
	case KindString, KindNumber, KindBoolean:
		return map[string]any{"type": typeValue(string(f.Kind), f.Nullable)}
	case KindArray:
		out := map[string]any{"type": typeValue("array", f.Nullable)}
		if f.Items != nil {
			out["items"] = fieldSchema(*f.Items)
		}
		return out
	case KindObject:
		return objectSchema(f.Properties, f.Nullable)
	default:
		types := []string{"boolean", "number", "string"}
		if f.Nullable {
			types = append(types, "null")
		}
		return map[string]any{"type": types}
	}
}

func typeValue(name string, nullable bool) any {
	if nullable {
		return []string{name, "null"}
	}
	return name
}
