package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexfazio/hn-firecrawl-mcp/firecrawl"
	"github.com/alexfazio/hn-firecrawl-mcp/hn"
)

type stubScraper struct {
	page   *firecrawl.Page
	err    error
	gotURL string
}

func (s *stubScraper) Scrape(_ context.Context, url string) (*firecrawl.Page, error) {
	s.gotURL = url
	if s.err != nil {
		return nil, s.err
	}
	return s.page, nil
}

type stubItems struct {
	items map[int]*hn.Item
}

func (s *stubItems) GetItem(_ context.Context, id int) (*hn.Item, error) {
	if item, ok := s.items[id]; ok {
		return item, nil
	}
	return nil, &hn.NotFoundError{ID: id}
}

func pageWith(content string) *firecrawl.Page {
	return &firecrawl.Page{
		SourceURL: "https://www.google.com/search?q=whatever",
		Content:   content,
		FetchedAt: time.Now().UTC(),
	}
}

// resultsPage holds 8 candidate links, two of them duplicates, in a shape
// close to what Firecrawl returns for a Google results page.
const resultsPage = `
Some preamble text.

[Rust borrow checker explained](https://news.ycombinator.com/item?id=100)
A long discussion about ownership semantics.

[Another take on borrowing](https://news.ycombinator.com/item?id=200)
People argue about lifetimes.

[Rust borrow checker explained](https://news.ycombinator.com/item?id=100)
Duplicate entry from a second results block.

[Borrow checker vs. GC](https://news.ycombinator.com/item?id=300)

https://news.ycombinator.com/item?id=400
A bare link with a description line below it.

[Ask HN: learning Rust](https://news.ycombinator.com/item?id=500)

[](https://news.ycombinator.com/item?id=600)
Entry with an empty title.

[Old thread](https://news.ycombinator.com/item?id=200&p=2)
`

func TestLinkExtractorOrderAndTitles(t *testing.T) {
	cands := LinkExtractor{}.Extract(resultsPage)
	require.Len(t, cands, 8)

	assert.Equal(t, []int{100, 200, 100, 300, 400, 500, 600, 200},
		[]int{cands[0].ID, cands[1].ID, cands[2].ID, cands[3].ID, cands[4].ID, cands[5].ID, cands[6].ID, cands[7].ID})

	assert.Equal(t, "Rust borrow checker explained", cands[0].Title)
	assert.Equal(t, "https://news.ycombinator.com/item?id=100", cands[0].URL)
	assert.Equal(t, "A long discussion about ownership semantics.", cands[0].Snippet)

	// Bare link: no markdown title.
	assert.Empty(t, cands[4].Title)
	assert.Equal(t, "A bare link with a description line below it.", cands[4].Snippet)
}

func TestLinkExtractorNoMatches(t *testing.T) {
	assert.Empty(t, LinkExtractor{}.Extract("nothing relevant here\nhttps://example.com/item?id=12"))
}

func TestSearchDedupsAndTruncates(t *testing.T) {
	scraper := &stubScraper{page: pageWith(resultsPage)}
	o := NewOrchestrator(scraper, &stubItems{})

	results, err := o.Search(context.Background(), "rust borrow checker", 5)
	require.NoError(t, err)
	require.Len(t, results, 5)

	ids := make([]int, len(results))
	for i, r := range results {
		ids[i] = r.ItemID
	}
	assert.Equal(t, []int{100, 200, 300, 400, 500}, ids, "deduplicated, first-seen order")
}

func TestSearchBuildsSiteRestrictedURL(t *testing.T) {
	scraper := &stubScraper{page: pageWith("")}
	o := NewOrchestrator(scraper, nil)

	_, err := o.Search(context.Background(), "rust borrow checker", 5)
	require.NoError(t, err)
	assert.Equal(t, "https://www.google.com/search?q=site%3Anews.ycombinator.com+rust+borrow+checker", scraper.gotURL)
}

func TestSearchEmptyPageIsEmptyNotError(t *testing.T) {
	scraper := &stubScraper{page: pageWith("a page with zero discussion links")}
	o := NewOrchestrator(scraper, &stubItems{})

	results, err := o.Search(context.Background(), "obscure topic", 5)
	require.NoError(t, err)
	require.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearchScrapeFailurePropagatesUnchanged(t *testing.T) {
	want := &firecrawl.ScrapeError{Kind: firecrawl.KindRateLimited, URL: "x"}
	scraper := &stubScraper{err: want}
	o := NewOrchestrator(scraper, &stubItems{})

	_, err := o.Search(context.Background(), "anything", 5)
	var se *firecrawl.ScrapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, firecrawl.KindRateLimited, se.Kind)
}

func TestSearchEmptyQuery(t *testing.T) {
	o := NewOrchestrator(&stubScraper{}, nil)
	_, err := o.Search(context.Background(), "   ", 5)
	assert.ErrorIs(t, err, hn.ErrInvalidInput)
}

func TestSearchTitleEnrichment(t *testing.T) {
	scraper := &stubScraper{page: pageWith(`
[](https://news.ycombinator.com/item?id=600)
[](https://news.ycombinator.com/item?id=700)
[A perfectly good scraped title](https://news.ycombinator.com/item?id=800)
`)}
	items := &stubItems{items: map[int]*hn.Item{
		600: {ID: 600, Title: "Authoritative title"},
		800: {ID: 800, Title: "Should not replace the scraped one"},
		// 700 missing: its fetch fails and the fallback applies.
	}}
	o := NewOrchestrator(scraper, items)

	results, err := o.Search(context.Background(), "q", 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "Authoritative title", results[0].Title)
	assert.Equal(t, "Hacker News Discussion", results[1].Title)
	assert.Equal(t, "A perfectly good scraped title", results[2].Title)
}

func TestSearchDefaultLimit(t *testing.T) {
	scraper := &stubScraper{page: pageWith(resultsPage)}
	o := NewOrchestrator(scraper, &stubItems{})
	o.DefaultLimit = 2

	results, err := o.Search(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
