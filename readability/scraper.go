// Package readability provides a local reader-mode scraper for operators
// running without a Firecrawl credential. It fetches the page directly and
// extracts the main content with go-readability, reporting failures in the
// same ScrapeError vocabulary as the firecrawl client.
package readability

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	goreadability "github.com/go-shiori/go-readability"

	"github.com/alexfazio/hn-firecrawl-mcp/firecrawl"
)

const (
	fetchTimeout = 30 * time.Second
	maxBodySize  = 1 << 20 // 1 MiB
	userAgent    = "hn-firecrawl-mcp/1.0"
)

// Scraper fetches and extracts pages with a dedicated client carrying
// transport-level controls.
type Scraper struct {
	http *http.Client
}

func NewScraper() *Scraper {
	return &Scraper{
		http: &http.Client{
			Timeout: fetchTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 15 * time.Second,
				MaxIdleConns:          20,
				MaxIdleConnsPerHost:   5,
				IdleConnTimeout:       90 * time.Second,
			},
		},
	}
}

// Scrape fetches rawURL and extracts reader-mode text content.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*firecrawl.Page, error) {
	rawURL = strings.TrimSpace(rawURL)
	parsedURL, err := url.Parse(rawURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("%w: %q", firecrawl.ErrInvalidURL, rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, &firecrawl.ScrapeError{Kind: firecrawl.KindTargetUnreachable, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &firecrawl.ScrapeError{Kind: firecrawl.KindTargetUnreachable, URL: rawURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, &firecrawl.ScrapeError{Kind: firecrawl.KindTargetUnreachable, URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(body) > maxBodySize {
		return nil, &firecrawl.ScrapeError{
			Kind: firecrawl.KindMalformedResponse, URL: rawURL,
			Detail: fmt.Sprintf("response exceeds %d bytes", maxBodySize),
		}
	}

	article, err := goreadability.FromReader(bytes.NewReader(body), parsedURL)
	if err != nil {
		return nil, &firecrawl.ScrapeError{Kind: firecrawl.KindMalformedResponse, URL: rawURL, Err: fmt.Errorf("readability extract: %w", err)}
	}
	if article.TextContent == "" {
		return nil, &firecrawl.ScrapeError{Kind: firecrawl.KindMalformedResponse, URL: rawURL, Detail: "no content extracted"}
	}

	return &firecrawl.Page{
		SourceURL: rawURL,
		Title:     article.Title,
		Content:   article.TextContent,
		FetchedAt: time.Now().UTC(),
	}, nil
}
