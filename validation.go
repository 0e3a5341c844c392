package toolbridge

// Validatable is implemented by argument structs that need custom business
// validation. Called after schema validation and unmarshaling.
type Validatable interface {
	Validate() error
}

// schemaValidator validates a JSON-like value (e.g. map[string]any from
// json.Unmarshal). *jsonschema.Resolved implements it.
type schemaValidator interface {
	Validate(v any) error
}

// validateAgainstSchema runs schema validation on an already-parsed value.
// Failures become ValidationError so the message can be passed to the LLM for
// self-correction.
func validateAgainstSchema(tool string, validate schemaValidator, v any) error {
	if err := validate.Validate(v); err != nil {
		return &ValidationError{Tool: tool, Reason: err.Error()}
	}
	return nil
}

// validateCustom runs Validatable if args implements it.
func validateCustom(args any) error {
	if v, ok := args.(Validatable); ok {
		return v.Validate()
	}
	return nil
}
