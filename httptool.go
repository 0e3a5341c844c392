package toolbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

const (
	// DefaultHTTPTimeout bounds a single upstream request when no registry
	// timeout applies.
	DefaultHTTPTimeout = 15 * time.Second

	// DefaultMaxResponseSize caps how much of an upstream body is read.
	DefaultMaxResponseSize int64 = 100_000
)

// defaultHTTPClient is shared by spec-derived tools unless WithHTTPClient
// overrides it.
var defaultHTTPClient = &http.Client{Timeout: DefaultHTTPTimeout}

// httpTool is the callable form of a ToolSpec: argument validation →
// template resolution → a single HTTP attempt → response normalization.
// It is immutable once constructed and carries no cross-call state.
type httpTool struct {
	spec    ToolSpec
	fields  []paramField
	schema  map[string]any
	client  *http.Client
	maxBody int64
	logger  *slog.Logger
}

// NewHTTPTool builds a Tool from a validated ToolSpec. Specs from ParseSpecs
// are already normalized; hand-built specs are validated here.
func NewHTTPTool(spec ToolSpec, opts ...ToolOption) (Tool, error) {
	if err := spec.normalize(); err != nil {
		return nil, err
	}
	var o toolOptions
	for _, opt := range opts {
		opt(&o)
	}
	client := o.httpClient
	if client == nil {
		client = defaultHTTPClient
	}
	maxBody := o.maxResponseSize
	if maxBody <= 0 {
		maxBody = DefaultMaxResponseSize
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}
	fields := fieldsFromSpecs(spec.Parameters)
	return &httpTool{
		spec:    spec,
		fields:  fields,
		schema:  parameterSchema(fields),
		client:  client,
		maxBody: maxBody,
		logger:  logger,
	}, nil
}

func (t *httpTool) Name() string        { return t.spec.Name }
func (t *httpTool) Description() string { return t.spec.Description }

// Parameters returns a shallow copy of the JSON Schema (top-level keys only).
// Nested maps are shared; callers must not mutate them.
func (t *httpTool) Parameters() map[string]any { return maps.Clone(t.schema) }

// Call performs the full invocation pipeline. A single attempt, no retries;
// retry policy belongs to the caller.
func (t *httpTool) Call(ctx context.Context, argsJSON json.RawMessage) ([]byte, error) {
	args, err := decodeArguments(t.spec.Name, argsJSON)
	if err != nil {
		return nil, err
	}
	if err := validateArguments(t.spec.Name, t.fields, args); err != nil {
		return nil, err
	}
	strArgs := stringArguments(args)

	endpoint, err := resolveURL(t.spec.Name, t.spec.EndpointTemplate, strArgs)
	if err != nil {
		return nil, err
	}
	headers, err := resolveHeaders(t.spec.Name, t.spec.HeaderTemplates, strArgs)
	if err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if t.spec.bodyAllowed() && t.spec.BodyTemplate != nil {
		resolved, err := resolveBody(t.spec.Name, t.spec.BodyTemplate, strArgs)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(resolved)
		if err != nil {
			return nil, &SystemError{Err: err}
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, t.spec.Method, endpoint, reqBody)
	if err != nil {
		return nil, &HTTPError{Tool: t.spec.Name, URL: endpoint, Err: err}
	}
	for name, v := range headers {
		req.Header.Set(name, v)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrTimeout
		}
		return nil, &HTTPError{Tool: t.spec.Name, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBody))
	if err != nil {
		return nil, &HTTPError{Tool: t.spec.Name, URL: endpoint, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{
			Tool:       t.spec.Name,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	return t.normalizeResponse(endpoint, body), nil
}

// normalizeResponse applies the spec's response mode. In json mode a body
// that does not decode falls back to raw text instead of failing the call;
// the downgrade is logged, not surfaced.
func (t *httpTool) normalizeResponse(endpoint string, body []byte) []byte {
	if t.spec.ResponseMode != ResponseModeJSON {
		return body
	}
	if gjson.ValidBytes(body) {
		return body
	}
	t.logger.Debug("response is not valid JSON, returning raw text",
		"tool", t.spec.Name, "url", endpoint)
	return body
}

var _ Tool = (*httpTool)(nil)
