package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compileArgumentSchema builds and compiles a JSON Schema describing the
// shape of an operation's argument bag: primitive type per parameter and
// the required-name list. Format constraints are not expressed here — the
// class validators remain the single source of truth for those; the
// schema only rejects structurally wrong bags (wrong primitive types)
// before the per-class checks run.
func compileArgumentSchema(op *Operation) (*jsonschema.Schema, error) {
	properties := make(map[string]any, len(op.Params))
	required := make([]any, 0, len(op.Params))

	for _, p := range op.Params {
		properties[p.Name] = map[string]any{"type": schemaTypes(p.Class)}
		if p.Required {
			required = append(required, p.Name)
		}
	}

	doc := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		doc["required"] = required
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	resource := "commsgate://operations/" + op.Name + ".schema.json"
	if err := c.AddResource(resource, parsed); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	sch, err := c.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return sch, nil
}

// schemaTypes maps a parameter class to its accepted JSON primitive
// types. Numeric-looking classes accept both strings and numbers because
// model tool calls are inconsistent about quoting.
func schemaTypes(c ParamClass) any {
	switch c {
	case ClassAmount, ClassBundle, ClassInt:
		return []any{"string", "number", "integer"}
	case ClassBool:
		return []any{"boolean", "string"}
	default:
		return "string"
	}
}

// validateShape runs the compiled schema against the raw bag. It returns
// a descriptive reason on mismatch, empty string otherwise.
func (op *Operation) validateShape(raw Args) string {
	if op.schema == nil {
		return ""
	}
	// Round-trip through JSON so the instance uses the canonical types
	// the validator expects (json.Number-free, map[string]any).
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Sprintf("arguments are not JSON-serializable: %v", err)
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return fmt.Sprintf("arguments are not valid JSON: %v", err)
	}
	if err := op.schema.Validate(instance); err != nil {
		return fmt.Sprintf("argument shape mismatch: %v", err)
	}
	return ""
}
