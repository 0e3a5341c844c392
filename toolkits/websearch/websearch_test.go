package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	tavilyModels "github.com/diverged/tavily-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skosovsky/toolbridge"
)

func fakeTavily(t *testing.T, onRequest func(req tavilyModels.SearchRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req tavilyModels.SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if onRequest != nil {
			onRequest(req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"answer": "Paris",
			"results": []map[string]any{
				{"title": "Capital of France", "url": "https://example.com/paris", "content": "Paris is the capital.", "score": 0.97},
			},
		})
	}))
}

func newTestSearcher(t *testing.T, srv *httptest.Server) *Searcher {
	t.Helper()
	s, err := NewSearcher("testkey", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return s
}

func TestNewSearcher_RequiresKey(t *testing.T) {
	t.Parallel()
	_, err := NewSearcher("")
	require.Error(t, err)
}

func TestWebSearch(t *testing.T) {
	t.Parallel()
	var got tavilyModels.SearchRequest
	srv := fakeTavily(t, func(req tavilyModels.SearchRequest) { got = req })
	defer srv.Close()

	tool, err := newTestSearcher(t, srv).NewWebSearch()
	require.NoError(t, err)
	assert.Equal(t, "web_search", tool.Name())

	out, err := tool.Call(context.Background(), json.RawMessage(`{"query": "capital of France", "max_results": 3}`))
	require.NoError(t, err)
	assert.Equal(t, "capital of France", got.Query)
	assert.Equal(t, 3, got.MaxResults)
	assert.Empty(t, got.IncludeDomains)

	var res SearchResponse
	require.NoError(t, json.Unmarshal(out, &res))
	assert.Equal(t, "Paris", res.Answer)
	require.Len(t, res.Results, 1)
	assert.Equal(t, Hit{
		Title:   "Capital of France",
		URL:     "https://example.com/paris",
		Snippet: "Paris is the capital.",
	}, res.Results[0], "raw results are trimmed to title, url, snippet")
}

func TestWebSearch_DefaultMaxResults(t *testing.T) {
	t.Parallel()
	var got tavilyModels.SearchRequest
	srv := fakeTavily(t, func(req tavilyModels.SearchRequest) { got = req })
	defer srv.Close()

	tool, err := newTestSearcher(t, srv).NewWebSearch()
	require.NoError(t, err)
	_, err = tool.Call(context.Background(), json.RawMessage(`{"query": "q"}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxResults, got.MaxResults)
}

func TestWebSearch_EmptyQuery(t *testing.T) {
	t.Parallel()
	srv := fakeTavily(t, nil)
	defer srv.Close()

	tool, err := newTestSearcher(t, srv).NewWebSearch()
	require.NoError(t, err)
	_, err = tool.Call(context.Background(), json.RawMessage(`{"query": ""}`))
	require.Error(t, err)
	assert.True(t, toolbridge.IsClientError(err))
}

func TestSiteSearch(t *testing.T) {
	t.Parallel()
	var got tavilyModels.SearchRequest
	srv := fakeTavily(t, func(req tavilyModels.SearchRequest) { got = req })
	defer srv.Close()

	tool, err := newTestSearcher(t, srv).NewSiteSearch()
	require.NoError(t, err)
	assert.Equal(t, "site_search", tool.Name())

	_, err = tool.Call(context.Background(), json.RawMessage(`{"query": "docs", "site": "example.com"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com"}, got.IncludeDomains)
}

func TestTools_SchemaExport(t *testing.T) {
	t.Parallel()
	srv := fakeTavily(t, nil)
	defer srv.Close()

	tools, err := newTestSearcher(t, srv).Tools()
	require.NoError(t, err)
	require.Len(t, tools, 2)
	for _, tool := range tools {
		props, ok := tool.Parameters()["properties"].(map[string]any)
		require.True(t, ok, "tool %s", tool.Name())
		assert.Contains(t, props, "query")
	}
}
