package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexfazio/hn-firecrawl-mcp/firecrawl"
	"github.com/alexfazio/hn-firecrawl-mcp/hn"
)

const summaryChars = 200

// itemPayload is the get_hnews_item response: the resolved tree plus the
// derived URLs and timestamps the original service attached.
type itemPayload struct {
	*hn.Node
	DiscussionURL string `json:"discussion_url"`
	ArticleURL    string `json:"article_url,omitempty"`
	Posted        string `json:"posted,omitempty"`
	Age           string `json:"age,omitempty"`
	Comments      int    `json:"comments,omitempty"`
}

func (s *Server) getItem(ctx context.Context, args map[string]any) (any, error) {
	id, ok := intArg(args, "item_id")
	if !ok {
		id, ok = intArg(args, "id")
	}
	if !ok {
		return nil, fmt.Errorf("item_id is required: %w", hn.ErrInvalidInput)
	}

	node, err := s.hn.Assemble(ctx, id, s.opts.MaxDepth)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p := itemPayload{
		Node:          node,
		DiscussionURL: node.Item.DiscussionURL(),
		ArticleURL:    node.Item.URL,
		Comments:      node.Item.CommentCount(),
	}
	if node.Item.Time > 0 {
		p.Posted = time.Unix(node.Item.Time, 0).UTC().Format("2006-01-02 15:04:05")
		p.Age = hn.RelativeAge(node.Item.Time, now)
	}
	return p, nil
}

// popularEntry is one row of get_hnews_popular_discussions.
type popularEntry struct {
	Rank          int    `json:"rank"`
	ID            int    `json:"id"`
	Title         string `json:"title,omitempty"`
	Type          string `json:"type,omitempty"`
	Score         int    `json:"score,omitempty"`
	By            string `json:"by,omitempty"`
	Age           string `json:"age,omitempty"`
	Comments      int    `json:"comments,omitempty"`
	DiscussionURL string `json:"discussion_url,omitempty"`
	ArticleURL    string `json:"article_url,omitempty"`
	Summary       string `json:"summary,omitempty"`
	Failure       string `json:"failure,omitempty"`
}

func (s *Server) popularDiscussions(ctx context.Context) (any, error) {
	ranked, err := s.hn.TopItems(ctx, s.opts.TopN)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entries := make([]popularEntry, len(ranked))
	for i, r := range ranked {
		e := popularEntry{Rank: r.Rank, ID: r.ID, Failure: r.Failure}
		if r.Item != nil {
			e.Title = r.Item.Title
			e.Type = r.Item.Type
			e.Score = r.Item.Score
			e.By = r.Item.By
			e.Comments = r.Item.CommentCount()
			e.DiscussionURL = r.Item.DiscussionURL()
			e.ArticleURL = r.Item.URL
			if r.Item.Time > 0 {
				e.Age = hn.RelativeAge(r.Item.Time, now)
			}
			if r.Item.Text != "" {
				e.Summary = truncateRunesafe(r.Item.Text, summaryChars)
			}
		}
		entries[i] = e
	}
	return entries, nil
}

func (s *Server) searchDiscussions(ctx context.Context, args map[string]any) (any, error) {
	query, _ := strArg(args, "query")
	limit, ok := intArg(args, "limit")
	if !ok {
		limit = s.opts.SearchLimit
	}

	results, err := s.searcher.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Server) scrapeURL(ctx context.Context, args map[string]any) (any, error) {
	rawURL, ok := strArg(args, "url")
	if !ok {
		return nil, fmt.Errorf("url is required: %w", firecrawl.ErrInvalidURL)
	}

	page, err := s.scraper.Scrape(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if len(page.Content) > s.opts.MaxContentChars {
		page.Content = truncateRunesafe(page.Content, s.opts.MaxContentChars) + "\n\n[content truncated]"
	}
	return page, nil
}

// errorKind maps the engine's error taxonomy onto the machine-readable kind
// reported in tool error payloads.
func errorKind(err error) string {
	var se *firecrawl.ScrapeError
	if errors.As(err, &se) {
		return string(se.Kind)
	}
	var nf *hn.NotFoundError
	if errors.As(err, &nf) {
		return "not_found"
	}
	var ue *hn.UpstreamError
	if errors.As(err, &ue) {
		return "upstream"
	}
	if errors.Is(err, hn.ErrInvalidInput) || errors.Is(err, firecrawl.ErrInvalidURL) {
		return "invalid_input"
	}
	return "internal"
}

func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n, true
		}
	}
	return 0, false
}

func strArg(args map[string]any, key string) (string, bool) {
	if v, ok := args[key].(string); ok {
		return v, true
	}
	return "", false
}

func truncateRunesafe(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
