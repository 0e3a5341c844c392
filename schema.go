package toolbridge

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ParamKind is the closed set of parameter types supported by spec-derived
// tools. Each kind carries its own validation; no runtime type reflection is
// involved in deriving or checking spec parameter schemas.
type ParamKind int

const (
	KindString ParamKind = iota
	KindInteger
	KindNumber
	KindBoolean
)

// ParseParamKind maps a spec type string to a ParamKind.
func ParseParamKind(s string) (ParamKind, error) {
	switch s {
	case "string":
		return KindString, nil
	case "integer":
		return KindInteger, nil
	case "number":
		return KindNumber, nil
	case "boolean":
		return KindBoolean, nil
	default:
		return 0, fmt.Errorf("unsupported parameter type %q", s)
	}
}

func (k ParamKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	default:
		return fmt.Sprintf("ParamKind(%d)", int(k))
	}
}

// check validates a JSON-decoded value (decoded with json.Number preserved)
// against the kind. The returned message is written for the LLM, not for a
// stack trace.
func (k ParamKind) check(v any) error {
	switch k {
	case KindString:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("expected string, got %s", jsonTypeName(v))
		}
	case KindBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("expected boolean, got %s", jsonTypeName(v))
		}
	case KindNumber:
		if _, ok := v.(json.Number); !ok {
			return fmt.Errorf("expected number, got %s", jsonTypeName(v))
		}
	case KindInteger:
		n, ok := v.(json.Number)
		if !ok {
			return fmt.Errorf("expected integer, got %s", jsonTypeName(v))
		}
		if _, err := n.Int64(); err != nil {
			return fmt.Errorf("expected integer, got number %s", n.String())
		}
	}
	return nil
}

// jsonTypeName names a decoded JSON value's type for error messages.
func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// paramField is one entry of the derived parameter model.
type paramField struct {
	name        string
	description string
	kind        ParamKind
	required    bool
}

// fieldsFromSpecs translates an already-validated ParamSpec sequence into the
// internal parameter model. Order is preserved.
func fieldsFromSpecs(params []ParamSpec) []paramField {
	fields := make([]paramField, 0, len(params))
	for _, p := range params {
		kind, err := ParseParamKind(p.Type)
		if err != nil {
			// Unknown types are rejected by ToolSpec.normalize before we get here.
			panic(fmt.Sprintf("toolbridge: unvalidated param spec: %v", err))
		}
		fields = append(fields, paramField{
			name:        p.Name,
			description: p.Description,
			kind:        kind,
			required:    p.Required,
		})
	}
	return fields
}

// parameterSchema renders the field list as a JSON Schema map. The shape is
// derived purely from the declared parameters; no implicit fields are added.
func parameterSchema(fields []paramField) map[string]any {
	properties := make(map[string]any, len(fields))
	var required []any
	for _, f := range fields {
		prop := map[string]any{"type": f.kind.String()}
		if f.description != "" {
			prop["description"] = f.description
		}
		properties[f.name] = prop
		if f.required {
			required = append(required, f.name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// decodeArguments parses an argument payload into a map, preserving numeric
// precision via json.Number. A nil or empty payload decodes to an empty map.
func decodeArguments(tool string, argsJSON json.RawMessage) (map[string]any, error) {
	if len(bytes.TrimSpace(argsJSON)) == 0 {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(argsJSON))
	dec.UseNumber()
	var args map[string]any
	if err := dec.Decode(&args); err != nil {
		return nil, wrapJSONParseError(tool, err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// validateArguments checks the supplied arguments against the parameter
// model: every required field must be present, and every declared field that
// is present must match its kind. Arguments not declared in the spec are
// ignored. The first failure wins and names the offending argument.
func validateArguments(tool string, fields []paramField, args map[string]any) error {
	for _, f := range fields {
		v, ok := args[f.name]
		if !ok || v == nil {
			if f.required {
				return &ValidationError{Tool: tool, Argument: f.name, Reason: "missing required argument"}
			}
			continue
		}
		if err := f.kind.check(v); err != nil {
			return &ValidationError{Tool: tool, Argument: f.name, Reason: err.Error()}
		}
	}
	return nil
}
