package toolbridge

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// placeholderPattern matches {name} markers inside templates.
var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// coerceArgument renders a decoded JSON value in its natural string form:
// booleans as lowercase true/false, numbers exactly as they appeared in the
// argument payload (no imposed formatting), strings verbatim.
func coerceArgument(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	case json.Number:
		return t.String(), true
	case float64:
		// Arguments decoded elsewhere (e.g. by an MCP transport) may arrive
		// as float64 rather than json.Number.
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

// stringArguments coerces every scalar argument to its template string form.
// Composite values (arrays, objects) are not usable in templates and are
// skipped; the validator has already rejected them for declared parameters.
func stringArguments(args map[string]any) map[string]string {
	out := make(map[string]string, len(args))
	for name, v := range args {
		if s, ok := coerceArgument(v); ok {
			out[name] = s
		}
	}
	return out
}

// resolveTemplate substitutes every {name} placeholder in tmpl with the
// corresponding argument. A placeholder with no matching argument fails the
// resolution with a *TemplateError: a malformed request to an upstream API is
// worse than a clear local failure. escape, when non-nil, is applied to each
// substituted value (URL path escaping).
func resolveTemplate(tool, location, tmpl string, args map[string]string, escape func(string) string) (string, error) {
	var missing *TemplateError
	resolved := placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := match[1 : len(match)-1]
		v, ok := args[name]
		if !ok {
			if missing == nil {
				missing = &TemplateError{Tool: tool, Placeholder: name, Location: location}
			}
			return match
		}
		if escape != nil {
			return escape(v)
		}
		return v
	})
	if missing != nil {
		return "", missing
	}
	return resolved, nil
}

// resolveURL resolves the endpoint template, escaping substituted values per
// position: path escaping before the first "?", query escaping after it.
// Argument content cannot splice extra path segments or query parameters.
func resolveURL(tool, tmpl string, args map[string]string) (string, error) {
	path, query, hasQuery := strings.Cut(tmpl, "?")
	resolved, err := resolveTemplate(tool, "url", path, args, url.PathEscape)
	if err != nil {
		return "", err
	}
	if !hasQuery {
		return resolved, nil
	}
	resolvedQuery, err := resolveTemplate(tool, "url", query, args, url.QueryEscape)
	if err != nil {
		return "", err
	}
	return resolved + "?" + resolvedQuery, nil
}

// resolveHeaders resolves every header value template. Header names are
// literal; only values carry placeholders.
func resolveHeaders(tool string, templates map[string]string, args map[string]string) (map[string]string, error) {
	if len(templates) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(templates))
	for name, tmpl := range templates {
		v, err := resolveTemplate(tool, fmt.Sprintf("header %q", name), tmpl, args, nil)
		if err != nil {
			return nil, err
		}
		headers[name] = v
	}
	return headers, nil
}

// resolveBody walks the body template recursively, preserving structure:
// subobjects and arrays keep their shape, and only leaf string values are
// templated. Non-string leaves pass through unchanged.
func resolveBody(tool string, tmpl map[string]any, args map[string]string) (map[string]any, error) {
	out, err := resolveBodyValue(tool, tmpl, args)
	if err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}

func resolveBodyValue(tool string, v any, args map[string]string) (any, error) {
	switch t := v.(type) {
	case string:
		return resolveTemplate(tool, "body", t, args, nil)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			resolved, err := resolveBodyValue(tool, child, args)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			resolved, err := resolveBodyValue(tool, child, args)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return v, nil
	}
}
