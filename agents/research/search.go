package research

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/hupe1980/agentdesk/core"
	"github.com/hupe1980/agentdesk/tool"
)

// DefaultSearchEndpoint is DuckDuckGo's HTML-only search page.
const DefaultSearchEndpoint = "https://html.duckduckgo.com/html/"

// DefaultMaxResults bounds the number of results handed to the model.
const DefaultMaxResults = 5

// SearchResult is one web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Searcher runs web searches.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// DuckDuckGoOptions configure a DuckDuckGo searcher.
type DuckDuckGoOptions struct {
	Endpoint   string
	HTTPClient *http.Client
	MaxResults int
	UserAgent  string
}

// DuckDuckGo scrapes the DuckDuckGo HTML endpoint.
type DuckDuckGo struct {
	opts DuckDuckGoOptions
}

// NewDuckDuckGo creates a searcher.
func NewDuckDuckGo(optFns ...func(o *DuckDuckGoOptions)) *DuckDuckGo {
	opts := DuckDuckGoOptions{
		Endpoint:   DefaultSearchEndpoint,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		MaxResults: DefaultMaxResults,
		UserAgent:  "Mozilla/5.0 (compatible; agentdesk)",
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &DuckDuckGo{opts: opts}
}

// Search queries the endpoint and parses the result list.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]SearchResult, error) {
	u, err := url.Parse(d.opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid search endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", d.opts.UserAgent)

	resp, err := d.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request failed: status %d", resp.StatusCode)
	}

	return parseResults(resp.Body, d.opts.MaxResults)
}

// parseResults extracts title, link and snippet of each result__a anchor
// and the result__snippet that follows it.
func parseResults(r io.Reader, limit int) ([]SearchResult, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}

	var results []SearchResult

	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "a" {
			switch {
			case hasClass(n, "result__a"):
				if limit > 0 && len(results) == limit {
					return false
				}
				results = append(results, SearchResult{
					Title: textContent(n),
					URL:   resolveLink(attr(n, "href")),
				})
				return true
			case hasClass(n, "result__snippet"):
				if len(results) > 0 && results[len(results)-1].Snippet == "" {
					results[len(results)-1].Snippet = textContent(n)
				}
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(doc)

	return results, nil
}

// resolveLink unwraps DuckDuckGo redirect links (/l/?uddg=<target>).
func resolveLink(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}

	return href
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder

	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)

	return strings.Join(strings.Fields(sb.String()), " ")
}

type searchArgs struct {
	Query string `json:"query" description:"The search query"`
}

// NewWebSearchTool exposes s as the web_search tool.
func NewWebSearchTool(s Searcher) tool.Tool {
	return tool.NewTypedTool(
		"web_search",
		"Search the web for up-to-date information. Returns a list of results with title, url and snippet.",
		func(tc *core.ToolContext, args searchArgs) tool.Result {
			query := strings.TrimSpace(args.Query)
			if query == "" {
				return tool.Failure("query must not be empty")
			}

			results, err := s.Search(tc.Context(), query)
			if err != nil {
				return tool.FromError(err)
			}
			if len(results) == 0 {
				return tool.Success("No results found.", []SearchResult{})
			}

			return tool.Success(fmt.Sprintf("Found %d results.", len(results)), results)
		},
	)
}
