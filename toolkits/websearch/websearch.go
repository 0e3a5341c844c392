// Package websearch provides web search tools backed by the Tavily API.
package websearch

import (
	"context"
	"fmt"
	"net/http"

	tavilygo "github.com/diverged/tavily-go"
	tavilyClient "github.com/diverged/tavily-go/client"
	tavilyModels "github.com/diverged/tavily-go/models"

	"github.com/skosovsky/toolbridge"
)

// DefaultMaxResults is used when the caller does not ask for a specific
// result count.
const DefaultMaxResults = 5

// Searcher wraps a configured Tavily client and builds the search tools.
type Searcher struct {
	client *tavilyClient.TavilyClient
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithBaseURL overrides the Tavily API base URL, mainly for tests against an
// httptest server.
func WithBaseURL(baseURL string) SearcherOption {
	return func(s *Searcher) { s.client.BaseURL = baseURL }
}

// WithHTTPClient overrides the HTTP client used for Tavily requests.
func WithHTTPClient(hc *http.Client) SearcherOption {
	return func(s *Searcher) { s.client.HTTPClient = hc }
}

// NewSearcher creates a Searcher with the given API key.
func NewSearcher(apiKey string, opts ...SearcherOption) (*Searcher, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("websearch: api key must not be empty")
	}
	s := &Searcher{client: tavilygo.NewClient(apiKey)}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// WebSearchArgs are the arguments for the web_search tool.
type WebSearchArgs struct {
	Query      string `json:"query" description:"The search query"`
	MaxResults int    `json:"max_results,omitempty" description:"Maximum number of results to return (default 5)"`
}

// SiteSearchArgs are the arguments for the site_search tool.
type SiteSearchArgs struct {
	Query string `json:"query" description:"The search query"`
	Site  string `json:"site" description:"Domain to restrict the search to, e.g. example.com"`
}

// Hit is one trimmed search result. Tavily's raw response carries scores and
// full page content; the agent only needs enough to decide what to fetch.
type Hit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchResponse is the tool output.
type SearchResponse struct {
	Results []Hit  `json:"results"`
	Answer  string `json:"answer,omitempty"`
}

// NewWebSearch returns the web_search tool.
func (s *Searcher) NewWebSearch(opts ...toolbridge.ToolOption) (toolbridge.Tool, error) {
	return toolbridge.NewTool("web_search",
		"Search the web and return the most relevant results.",
		func(ctx context.Context, args WebSearchArgs) (SearchResponse, error) {
			return s.search(ctx, "web_search", args.Query, args.MaxResults, nil)
		}, opts...)
}

// NewSiteSearch returns the site_search tool, which restricts results to a
// single domain.
func (s *Searcher) NewSiteSearch(opts ...toolbridge.ToolOption) (toolbridge.Tool, error) {
	return toolbridge.NewTool("site_search",
		"Search within a single website and return the most relevant results.",
		func(ctx context.Context, args SiteSearchArgs) (SearchResponse, error) {
			if args.Site == "" {
				return SearchResponse{}, &toolbridge.ValidationError{
					Tool: "site_search", Argument: "site", Reason: "must not be empty",
				}
			}
			return s.search(ctx, "site_search", args.Query, DefaultMaxResults, []string{args.Site})
		}, opts...)
}

// Tools returns both search tools.
func (s *Searcher) Tools(opts ...toolbridge.ToolOption) ([]toolbridge.Tool, error) {
	web, err := s.NewWebSearch(opts...)
	if err != nil {
		return nil, err
	}
	site, err := s.NewSiteSearch(opts...)
	if err != nil {
		return nil, err
	}
	return []toolbridge.Tool{web, site}, nil
}

func (s *Searcher) search(ctx context.Context, tool, query string, maxResults int, domains []string) (SearchResponse, error) {
	if query == "" {
		return SearchResponse{}, &toolbridge.ValidationError{
			Tool: tool, Argument: "query", Reason: "must not be empty",
		}
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	req := tavilyModels.SearchRequest{
		Query:          query,
		SearchDepth:    "basic",
		MaxResults:     maxResults,
		IncludeAnswer:  true,
		IncludeDomains: domains,
	}
	resp, err := tavilygo.Search(s.client, req)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("tavily search: %w", err)
	}
	out := SearchResponse{Answer: resp.Answer, Results: make([]Hit, 0, len(resp.Results))}
	for _, r := range resp.Results {
		out.Results = append(out.Results, Hit{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}
	return out, nil
}
