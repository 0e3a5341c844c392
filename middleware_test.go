package toolbridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLogging(t *testing.T) {
	t.Parallel()
	inner := &callTool{name: "logged", fn: func(_ context.Context, args json.RawMessage) ([]byte, error) {
		return []byte(`{}`), nil
	}}
	wrapped := WithLogging(slog.Default())(inner)
	assert.Equal(t, "logged", wrapped.Name())
	assert.Equal(t, inner.Description(), wrapped.Description())
	assert.Equal(t, inner.Parameters(), wrapped.Parameters())

	out, err := wrapped.Call(context.Background(), raw(`{}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(out))
}

func TestWithRecovery(t *testing.T) {
	t.Parallel()
	inner := &callTool{name: "p", fn: func(_ context.Context, _ json.RawMessage) ([]byte, error) {
		panic("boom")
	}}
	wrapped := WithRecovery()(inner)
	_, err := wrapped.Call(context.Background(), raw(`{}`))
	require.Error(t, err)
	assert.True(t, IsSystemError(err))
}

func TestWithTimeoutMiddleware(t *testing.T) {
	t.Parallel()
	inner := &callTool{name: "slow", fn: func(ctx context.Context, _ json.RawMessage) ([]byte, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return []byte(`{}`), nil
		}
	}}
	wrapped := WithTimeoutMiddleware(20 * time.Millisecond)(inner)
	_, err := wrapped.Call(context.Background(), raw(`{}`))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMiddleware_PreservesToolMetadata(t *testing.T) {
	t.Parallel()
	tool, err := NewTool("timed", "t", func(_ context.Context, _ struct{}) (string, error) {
		return "", nil
	}, WithTimeout(2*time.Second))
	require.NoError(t, err)

	wrapped := WithRecovery()(WithLogging(nil)(tool))
	tm, ok := wrapped.(ToolMetadata)
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, tm.Timeout())
}

func TestBuild_AppliesMiddlewaresToAllTools(t *testing.T) {
	t.Parallel()
	var order []string
	mark := func(label string) Middleware {
		return func(next Tool) Tool {
			return &callTool{name: next.Name(), fn: func(ctx context.Context, args json.RawMessage) ([]byte, error) {
				order = append(order, label)
				return next.Call(ctx, args)
			}}
		}
	}
	reg, err := Build(context.Background(), nil, nil,
		WithLocalTools(echoTool("echo")),
		WithMiddlewares(mark("outer"), mark("inner")),
	)
	require.NoError(t, err)

	res := reg.Dispatch(context.Background(), ToolCall{ID: "1", Name: "echo", Args: raw(`{}`)})
	require.False(t, res.IsError)
	assert.Equal(t, []string{"outer", "inner"}, order)
}
