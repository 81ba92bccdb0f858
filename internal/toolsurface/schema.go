// Package toolsurface implements the MCP tool surface: declarative
// JSON-ish schemas for every tool, and a dispatcher that validates a
// call's arguments against its tool's
// schema: unknown keys rejected, required keys enforced, before
// invoking the bound handler. The stdio JSON-RPC framing itself is
// explicitly out of scope; this package stops at validate-then-call.
package toolsurface

import (
	"fmt"
	"sort"

	"github.com/shirokuma-dev/shirokuma/internal/types"
)

// FieldType names the JSON Schema primitive a parameter accepts.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
)

// Field describes one parameter of a tool's input schema.
type Field struct {
	Type        FieldType
	Description string
	Required    bool
}

// Schema is a closed set of named fields: any argument key not listed
// here is rejected.
type Schema map[string]Field

// Validate checks args against the schema: every required field must
// be present, and no key outside the schema may appear.
func (s Schema) Validate(args map[string]any) error {
	for key := range args {
		if _, ok := s[key]; !ok {
			return types.Validationf("unknown parameter %q", key)
		}
	}
	var missing []string
	for name, f := range s {
		if !f.Required {
			continue
		}
		if _, ok := args[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return types.Validationf("missing required parameter(s): %v", missing)
	}
	return nil
}

// JSONSchema renders s into the {type:"object", properties, required}
// shape MCP's tools/list response expects.
func (s Schema) JSONSchema() map[string]any {
	properties := map[string]any{}
	var required []string
	for name, f := range s {
		properties[name] = map[string]any{
			"type":        string(f.Type),
			"description": f.Description,
		}
		if f.Required {
			required = append(required, name)
		}
	}
	sort.Strings(required)
	out := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

// StringArg reads a required or optional string argument, applying
// def when the key is absent.
func StringArg(args map[string]any, key, def string) string {
	v, ok := args[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

func BoolArg(args map[string]any, key string, def bool) bool {
	v, ok := args[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

func IntArg(args map[string]any, key string, def int) int {
	v, ok := args[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return def
	}
}

func StringSliceArg(args map[string]any, key string) []string {
	v, ok := args[key]
	if !ok {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func requireString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", types.Validationf("missing required parameter %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q must be a string", key)
	}
	return s, nil
}
