// Package firecrawl is a thin client for the Firecrawl v1 scrape endpoint.
// It shapes one request per URL and normalizes the response into a Page;
// retries and backoff are the caller's concern.
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.firecrawl.dev"
	defaultTimeout = 60 * time.Second

	maxErrorBody = 300
)

// ErrInvalidURL marks a scrape URL rejected before any network call.
var ErrInvalidURL = errors.New("invalid url")

// Page is the normalized result of one scrape call. Transient; never
// persisted.
type Page struct {
	SourceURL string    `json:"source_url"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Kind classifies scrape failures.
type Kind string

const (
	KindAuth              Kind = "auth"
	KindRateLimited       Kind = "rate_limited"
	KindTargetUnreachable Kind = "target_unreachable"
	KindMalformedResponse Kind = "malformed_response"
)

// ScrapeError is a typed scrape failure. Status is zero when the provider
// never answered; Detail carries the provider's own error text, truncated.
type ScrapeError struct {
	Kind   Kind
	URL    string
	Status int
	Detail string
	Err    error
}

func (e *ScrapeError) Error() string {
	msg := fmt.Sprintf("scrape %s: %s", e.URL, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// Config controls a Client. Zero fields take defaults; APIKey has no default
// and a client without one fails every Scrape with KindAuth.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client talks to the Firecrawl scrape API with a static bearer credential.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Markdown string `json:"markdown"`
		Metadata struct {
			Title string `json:"title"`
		} `json:"metadata"`
	} `json:"data"`
}

// Scrape requests markdown extraction of one URL. Exactly one outbound
// request per call; failures come back as *ScrapeError classified by Kind.
func (c *Client) Scrape(ctx context.Context, rawURL string) (*Page, error) {
	rawURL = strings.TrimSpace(rawURL)
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	if c.apiKey == "" {
		return nil, &ScrapeError{Kind: KindAuth, URL: rawURL, Detail: "no API key configured"}
	}

	payload, err := json.Marshal(scrapeRequest{URL: rawURL, Formats: []string{"markdown"}})
	if err != nil {
		return nil, fmt.Errorf("encode scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/scrape", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create scrape request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ScrapeError{Kind: KindTargetUnreachable, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ScrapeError{Kind: KindMalformedResponse, URL: rawURL, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &ScrapeError{Kind: KindAuth, URL: rawURL, Status: resp.StatusCode, Detail: truncate(string(body), maxErrorBody)}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &ScrapeError{Kind: KindRateLimited, URL: rawURL, Status: resp.StatusCode, Detail: truncate(string(body), maxErrorBody)}
	case resp.StatusCode != http.StatusOK:
		return nil, &ScrapeError{Kind: KindTargetUnreachable, URL: rawURL, Status: resp.StatusCode, Detail: truncate(string(body), maxErrorBody)}
	}

	var sr scrapeResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, &ScrapeError{Kind: KindMalformedResponse, URL: rawURL, Err: err}
	}
	if !sr.Success {
		return nil, &ScrapeError{Kind: KindTargetUnreachable, URL: rawURL, Detail: truncate(sr.Error, maxErrorBody)}
	}
	if sr.Data.Markdown == "" {
		return nil, &ScrapeError{Kind: KindMalformedResponse, URL: rawURL, Detail: "no markdown content in response"}
	}

	return &Page{
		SourceURL: rawURL,
		Title:     sr.Data.Metadata.Title,
		Content:   sr.Data.Markdown,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
