package toolbridge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterSchema_MirrorsDeclaredParams(t *testing.T) {
	t.Parallel()
	specs, err := ParseSpecs([]byte(`{
		"name": "order", "description": "Place an order",
		"endpoint_template": "https://x/orders", "method": "POST",
		"parameters": [
			{"name": "sku", "type": "string", "required": true, "description": "Product SKU"},
			{"name": "count", "type": "integer", "required": true},
			{"name": "price", "type": "number"},
			{"name": "express", "type": "boolean"}
		]
	}`))
	require.NoError(t, err)

	schema := parameterSchema(fieldsFromSpecs(specs[0].Parameters))
	assert.Equal(t, "object", schema["type"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	require.Len(t, props, 4, "no implicit fields beyond the declared parameters")
	assert.Equal(t, map[string]any{"type": "string", "description": "Product SKU"}, props["sku"])
	assert.Equal(t, map[string]any{"type": "integer"}, props["count"])
	assert.Equal(t, map[string]any{"type": "number"}, props["price"])
	assert.Equal(t, map[string]any{"type": "boolean"}, props["express"])

	assert.ElementsMatch(t, []any{"sku", "count"}, schema["required"])
}

func TestParameterSchema_NoRequired(t *testing.T) {
	t.Parallel()
	schema := parameterSchema([]paramField{{name: "q", kind: KindString}})
	_, hasRequired := schema["required"]
	assert.False(t, hasRequired)
}

func TestParseParamKind(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"string", "integer", "number", "boolean"} {
		kind, err := ParseParamKind(s)
		require.NoError(t, err)
		assert.Equal(t, s, kind.String())
	}
	_, err := ParseParamKind("decimal")
	require.Error(t, err)
}

func TestValidateArguments(t *testing.T) {
	t.Parallel()
	fields := fieldsFromSpecs([]ParamSpec{
		{Name: "sku", Type: "string", Required: true},
		{Name: "count", Type: "integer", Required: true},
		{Name: "price", Type: "number"},
		{Name: "express", Type: "boolean"},
	})

	decode := func(src string) map[string]any {
		args, err := decodeArguments("order", json.RawMessage(src))
		require.NoError(t, err)
		return args
	}

	t.Run("valid", func(t *testing.T) {
		args := decode(`{"sku": "W-1", "count": 3, "price": 9.99, "express": true}`)
		require.NoError(t, validateArguments("order", fields, args))
	})

	t.Run("extra undeclared args ignored", func(t *testing.T) {
		args := decode(`{"sku": "W-1", "count": 3, "unknown": [1, 2]}`)
		require.NoError(t, validateArguments("order", fields, args))
	})

	t.Run("missing required names the argument", func(t *testing.T) {
		args := decode(`{"sku": "W-1"}`)
		err := validateArguments("order", fields, args)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "order", ve.Tool)
		assert.Equal(t, "count", ve.Argument)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("null counts as missing", func(t *testing.T) {
		args := decode(`{"sku": null, "count": 1}`)
		err := validateArguments("order", fields, args)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "sku", ve.Argument)
	})

	t.Run("integer rejects fraction", func(t *testing.T) {
		args := decode(`{"sku": "W-1", "count": 1.5}`)
		err := validateArguments("order", fields, args)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "count", ve.Argument)
		assert.Contains(t, ve.Reason, "integer")
	})

	t.Run("number accepts integer literal", func(t *testing.T) {
		args := decode(`{"sku": "W-1", "count": 2, "price": 10}`)
		require.NoError(t, validateArguments("order", fields, args))
	})

	t.Run("type mismatch names the argument", func(t *testing.T) {
		args := decode(`{"sku": 42, "count": 1}`)
		err := validateArguments("order", fields, args)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "sku", ve.Argument)
		assert.Contains(t, ve.Reason, "expected string, got number")
	})

	t.Run("boolean rejects string", func(t *testing.T) {
		args := decode(`{"sku": "W-1", "count": 1, "express": "yes"}`)
		err := validateArguments("order", fields, args)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "express", ve.Argument)
	})
}

func TestDecodeArguments(t *testing.T) {
	t.Parallel()

	t.Run("empty payload decodes to empty map", func(t *testing.T) {
		for _, src := range []string{"", "   ", "null"} {
			args, err := decodeArguments("t", json.RawMessage(src))
			require.NoError(t, err, "src %q", src)
			assert.Empty(t, args)
		}
	})

	t.Run("numbers keep their source form", func(t *testing.T) {
		args, err := decodeArguments("t", raw(`{"price": 9.99, "big": 12345678901234567890}`))
		require.NoError(t, err)
		assert.Equal(t, json.Number("9.99"), args["price"])
		assert.Equal(t, json.Number("12345678901234567890"), args["big"])
	})

	t.Run("malformed json is a validation error", func(t *testing.T) {
		_, err := decodeArguments("t", raw(`{"x": `))
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "t", ve.Tool)
	})
}
