package toolbridge

import (
	"bytes"
	"encoding/json"
	"maps"
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"
)

// Extractor provides JSON Schema generation and two-layer validation (schema
// + Validatable) for the argument type T of a native tool, without binding to
// the Tool interface. Use it in custom orchestrators that need schema export
// and validated parsing but not the standard Call pipeline.
type Extractor[T any] struct {
	tool      string
	schemaMap map[string]any
	resolved  *jsonschema.Resolved
}

// NewExtractor creates an Extractor for type T. tool names the owning tool in
// validation errors.
func NewExtractor[T any](tool string) (*Extractor[T], error) {
	schemaMap, resolved, err := generateSchema[T]()
	if err != nil {
		return nil, err
	}
	return &Extractor[T]{
		tool:      tool,
		schemaMap: schemaMap,
		resolved:  resolved,
	}, nil
}

// Schema returns a shallow copy of the JSON Schema (top-level keys only).
// Nested maps are shared; callers must not mutate them.
func (e *Extractor[T]) Schema() map[string]any {
	return maps.Clone(e.schemaMap)
}

// ParseAndValidate deserializes argsJSON into T, runs schema validation and
// then Validatable.Validate() if T implements it. Returns a ValidationError
// for invalid JSON or validation failures so the caller can pass the message
// to the LLM for self-correction.
func (e *Extractor[T]) ParseAndValidate(argsJSON []byte) (T, error) {
	var zero T
	if len(bytes.TrimSpace(argsJSON)) == 0 {
		argsJSON = []byte(`{}`)
	}
	var v any
	if err := json.Unmarshal(argsJSON, &v); err != nil {
		return zero, wrapJSONParseError(e.tool, err)
	}
	if err := validateAgainstSchema(e.tool, e.resolved, v); err != nil {
		return zero, err
	}
	var args T
	if err := json.Unmarshal(argsJSON, &args); err != nil {
		return zero, wrapJSONParseError(e.tool, err)
	}
	if err := runCustomValidation(args); err != nil {
		if IsClientError(err) {
			return zero, err
		}
		return zero, &ValidationError{Tool: e.tool, Reason: err.Error()}
	}
	return args, nil
}

// runCustomValidation runs Validatable.Validate() on args; if args does not
// implement Validatable, it tries &args for value types (pointer receiver).
// Never calls Validate twice for the same receiver.
func runCustomValidation[T any](args T) error {
	if err := validateCustom(any(args)); err != nil {
		return err
	}
	if _, ok := any(args).(Validatable); ok {
		return nil
	}
	typ := reflect.TypeOf(args)
	if typ == nil || typ.Kind() == reflect.Pointer {
		return nil
	}
	return validateCustom(any(&args))
}
