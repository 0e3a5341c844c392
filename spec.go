package toolbridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Supported response modes for a ToolSpec.
const (
	ResponseModeJSON = "json"
	ResponseModeText = "text"
)

// allowedMethods is the whitelist of HTTP methods for spec-derived tools.
var allowedMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true,
}

// ParamSpec declares one parameter of a spec-derived tool. Type is one of
// "string", "integer", "number", "boolean".
type ParamSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

// ToolSpec is the declarative description of an HTTP-backed tool. Unknown
// fields in the source document are ignored for forward compatibility.
type ToolSpec struct {
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	EndpointTemplate string            `json:"endpoint_template"`
	Method           string            `json:"method"`
	HeaderTemplates  map[string]string `json:"header_templates,omitempty"`
	BodyTemplate     map[string]any    `json:"body_template,omitempty"`
	Parameters       []ParamSpec       `json:"parameters,omitempty"`
	ResponseMode     string            `json:"response_mode,omitempty"` // json (default) or text
}

// ParseSpecs reads a source containing either a single specification object
// or an array of them, and returns the validated, normalized specs in source
// order. It is a pure parse+validate step: no file or network I/O happens
// here. Any malformed spec aborts the whole load with a *ConfigError naming
// the offending tool and field.
func ParseSpecs(data []byte) ([]ToolSpec, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &ConfigError{Reason: "empty specification source"}
	}

	var specs []ToolSpec
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &specs); err != nil {
			return nil, &ConfigError{Reason: "malformed specification array: " + err.Error()}
		}
	} else {
		var one ToolSpec
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, &ConfigError{Reason: "malformed specification object: " + err.Error()}
		}
		specs = []ToolSpec{one}
	}

	seen := make(map[string]bool, len(specs))
	for i := range specs {
		if err := specs[i].normalize(); err != nil {
			return nil, err
		}
		if seen[specs[i].Name] {
			return nil, &ConfigError{Tool: specs[i].Name, Field: "name", Reason: "duplicate tool name"}
		}
		seen[specs[i].Name] = true
	}
	return specs, nil
}

// LoadSpecs reads the whole source and parses it with ParseSpecs.
func LoadSpecs(r io.Reader) ([]ToolSpec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ConfigError{Reason: "read specification source: " + err.Error()}
	}
	return ParseSpecs(data)
}

// LoadSpecFile reads and parses the spec file at path.
func LoadSpecFile(path string) ([]ToolSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec file: %w", err)
	}
	return ParseSpecs(data)
}

// normalize validates the spec in place, upper-casing the method and applying
// the default response mode.
func (s *ToolSpec) normalize() error {
	if s.Name == "" {
		return &ConfigError{Field: "name", Reason: "missing required field"}
	}
	if s.Description == "" {
		return &ConfigError{Tool: s.Name, Field: "description", Reason: "missing required field"}
	}
	if s.EndpointTemplate == "" {
		return &ConfigError{Tool: s.Name, Field: "endpoint_template", Reason: "missing required field"}
	}
	if s.Method == "" {
		return &ConfigError{Tool: s.Name, Field: "method", Reason: "missing required field"}
	}
	s.Method = strings.ToUpper(s.Method)
	if !allowedMethods[s.Method] {
		return &ConfigError{Tool: s.Name, Field: "method", Reason: fmt.Sprintf("unsupported method %q", s.Method)}
	}

	switch s.ResponseMode {
	case "":
		s.ResponseMode = ResponseModeJSON
	case ResponseModeJSON, ResponseModeText:
	default:
		return &ConfigError{Tool: s.Name, Field: "response_mode", Reason: fmt.Sprintf("unsupported response mode %q", s.ResponseMode)}
	}

	names := make(map[string]bool, len(s.Parameters))
	for _, p := range s.Parameters {
		if p.Name == "" {
			return &ConfigError{Tool: s.Name, Field: "parameters", Reason: "parameter with empty name"}
		}
		if names[p.Name] {
			return &ConfigError{Tool: s.Name, Field: "parameters", Reason: fmt.Sprintf("duplicate parameter %q", p.Name)}
		}
		names[p.Name] = true
		if _, err := ParseParamKind(p.Type); err != nil {
			return &ConfigError{Tool: s.Name, Field: "parameters", Reason: fmt.Sprintf("parameter %q: %v", p.Name, err)}
		}
	}
	return nil
}

// bodyAllowed reports whether the spec's method carries a request body.
func (s *ToolSpec) bodyAllowed() bool {
	switch s.Method {
	case "POST", "PUT", "PATCH":
		return true
	}
	return false
}
