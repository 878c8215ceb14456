package readability

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexfazio/hn-firecrawl-mcp/firecrawl"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>A Readable Article</title></head>
<body>
<article>
<h1>A Readable Article</h1>
<p>%s</p>
<p>%s</p>
</article>
</body>
</html>`

func TestScrapeExtractsContent(t *testing.T) {
	para := strings.Repeat("This paragraph exists to give the extractor enough prose to keep. ", 10)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, articleHTML, para, para)
	}))
	t.Cleanup(ts.Close)

	page, err := NewScraper().Scrape(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, ts.URL, page.SourceURL)
	assert.Equal(t, "A Readable Article", page.Title)
	assert.Contains(t, page.Content, "enough prose to keep")
	assert.False(t, page.FetchedAt.IsZero())
}

func TestScrapeTargetFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(ts.Close)

	_, err := NewScraper().Scrape(context.Background(), ts.URL)
	var se *firecrawl.ScrapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, firecrawl.KindTargetUnreachable, se.Kind)
	assert.Equal(t, http.StatusNotFound, se.Status)
}

func TestScrapeInvalidURL(t *testing.T) {
	_, err := NewScraper().Scrape(context.Background(), "notaurl")
	assert.ErrorIs(t, err, firecrawl.ErrInvalidURL)
}
