// Package normalize turns raw model text into validated structured values.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/kirillkom/docmeta/internal/core/domain"
)

const excerptLimit = 200

// Clean strips surrounding whitespace and a markdown code fence.
func Clean(raw string) string {
	out := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(out, "```json"):
		out = out[len("```json"):]
	case strings.HasPrefix(out, "```"):
		out = out[len("```"):]
	}
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}

// ParseStructured decodes text as a JSON object and validates it against
// schema. Every failure is reported as domain.ErrMalformedResponse.
func ParseStructured(text string, schema *domain.SchemaDescriptor) (map[string]any, error) {
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, malformed(text, fmt.Errorf("decode json: %w", err))
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, malformed(text, errors.New("top-level value is not an object"))
	}
	if schema == nil {
		return obj, nil
	}

	compiled, err := compile(schema)
	if err != nil {
		return nil, malformed(text, err)
	}
	if err := compiled.Validate(value); err != nil {
		return nil, malformed(text, fmt.Errorf("json does not match schema: %w", err))
	}
	return obj, nil
}

// Decode is Clean followed by ParseStructured.
func Decode(raw string, schema *domain.SchemaDescriptor) (map[string]any, error) {
	return ParseStructured(Clean(raw), schema)
}

func malformed(text string, cause error) error {
	excerpt := text
	if len(excerpt) > excerptLimit {
		excerpt = excerpt[:excerptLimit] + "..."
	}
	return domain.WrapError(domain.ErrMalformedResponse, "normalize.parse", fmt.Errorf("%w; raw response: %q", cause, excerpt))
}

var compiled sync.Map

func compile(schema *domain.SchemaDescriptor) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(schema.JSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	if cached, ok := compiled.Load(string(raw)); ok {
		return cached.(*jsonschema.Schema), nil
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	sch, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	compiled.Store(string(raw), sch)
	return sch, nil
}
