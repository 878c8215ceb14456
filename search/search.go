// Package search finds Hacker News discussions for a free-text query by
// scraping a site-restricted Google results page and reconciling the
// extracted links with authoritative item data.
package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/alexfazio/hn-firecrawl-mcp/firecrawl"
	"github.com/alexfazio/hn-firecrawl-mcp/hn"
)

const (
	defaultLimit      = 10
	enrichConcurrency = 10

	// Titles shorter than this are considered truncated garbage from the
	// results page and worth replacing with the item's own title.
	minUsefulTitle = 5

	fallbackTitle = "Hacker News Discussion"
)

// Scraper is the page-extraction dependency; satisfied by both the
// firecrawl client and the local readability scraper.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*firecrawl.Page, error)
}

// ItemGetter resolves one HN item by id; satisfied by *hn.Client.
type ItemGetter interface {
	GetItem(ctx context.Context, id int) (*hn.Item, error)
}

// Result is one search hit, in the scraped page's own order. ItemID is zero
// when a link could not be mapped to a valid id.
type Result struct {
	ItemID  int    `json:"item_id,omitempty"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Orchestrator composes one scrape call with shallow item fetches.
// Zero-valued optional fields take defaults.
type Orchestrator struct {
	scraper Scraper
	items   ItemGetter

	// Extractor may be replaced to swap the matching strategy.
	Extractor IDExtractor
	// DefaultLimit applies when Search is called with limit <= 0.
	DefaultLimit int
}

func NewOrchestrator(scraper Scraper, items ItemGetter) *Orchestrator {
	return &Orchestrator{scraper: scraper, items: items}
}

// URL builds the deterministic site-restricted search URL for a query.
func URL(query string) string {
	return "https://www.google.com/search?q=" + url.QueryEscape("site:news.ycombinator.com "+query)
}

// Search scrapes the results page for query and returns up to limit
// deduplicated results in scrape order. A scrape failure fails the whole
// search with that error; a successful scrape with no extractable
// candidates returns an empty, non-nil slice.
func (o *Orchestrator) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query cannot be empty: %w", hn.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = o.DefaultLimit
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	page, err := o.scraper.Scrape(ctx, URL(query))
	if err != nil {
		return nil, err
	}

	extractor := o.Extractor
	if extractor == nil {
		extractor = LinkExtractor{}
	}

	results := make([]Result, 0, limit)
	seen := make(map[int]bool)
	for _, c := range extractor.Extract(page.Content) {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		results = append(results, Result{ItemID: c.ID, Title: c.Title, URL: c.URL, Snippet: c.Snippet})
		if len(results) == limit {
			break
		}
	}

	o.enrichTitles(ctx, results)
	return results, nil
}

// enrichTitles attaches authoritative titles to results whose scraped title
// is empty or truncated. A fetch failure leaves the scraped title in place.
func (o *Orchestrator) enrichTitles(ctx context.Context, results []Result) {
	if o.items != nil {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(enrichConcurrency)
		for i := range results {
			if results[i].ItemID <= 0 || len(results[i].Title) >= minUsefulTitle {
				continue
			}
			i := i
			g.Go(func() error {
				item, err := o.items.GetItem(gctx, results[i].ItemID)
				if err == nil && item.Title != "" {
					results[i].Title = item.Title
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	for i := range results {
		if results[i].Title == "" {
			results[i].Title = fallbackTitle
		}
	}
}
