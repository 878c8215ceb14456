package hn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL     = "https://hacker-news.firebaseio.com/v0"
	defaultConcurrency = 10
	defaultTimeout     = 15 * time.Second

	maxItemBody = 1 << 20 // 1 MiB
)

// Config controls a Client. Zero fields take defaults.
type Config struct {
	// BaseURL of the HN API, without trailing slash.
	BaseURL string
	// Concurrency caps simultaneous in-flight requests across all fan-outs
	// sharing this client.
	Concurrency int
	// Timeout applies per outbound request.
	Timeout time.Duration
}

// Client is a Hacker News API client. All requests, including those issued
// by concurrent fan-outs, pass through a shared semaphore so the number of
// simultaneous in-flight requests never exceeds the configured concurrency.
type Client struct {
	baseURL string
	http    *http.Client
	sem     chan struct{}
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		sem:     make(chan struct{}, cfg.Concurrency),
	}
}

func (c *Client) acquire(ctx context.Context) error {
	select {
	case c.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) release() { <-c.sem }

// GetItem fetches a single HN item by ID. It returns *NotFoundError when the
// API reports no such item (a literal null payload) and *UpstreamError on
// transport or HTTP failure. Deleted and dead items are returned as Items
// with their flags set, not as errors.
func (c *Client) GetItem(ctx context.Context, id int) (*Item, error) {
	if id <= 0 {
		return nil, fmt.Errorf("item id must be positive, got %d: %w", id, ErrInvalidInput)
	}

	if err := c.acquire(ctx); err != nil {
		return nil, &UpstreamError{Err: err}
	}
	defer c.release()

	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/item/%d.json", c.baseURL, id), nil)
	if err != nil {
		return nil, fmt.Errorf("create request for item %d: %w", id, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("fetch item %d: %w", id, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxItemBody))
	if err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("read item %d: %w", id, err)}
	}

	// The API answers 200 with a bare null for ids that never existed.
	if len(bytes.TrimSpace(body)) == 0 || bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return nil, &NotFoundError{ID: id}
	}

	var item Item
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("decode item %d: %w", id, err)}
	}
	if item.ID == 0 {
		return nil, &NotFoundError{ID: id}
	}
	return &item, nil
}

// TopStories returns the ranked top story IDs (up to 500).
func (c *Client) TopStories(ctx context.Context) ([]int, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, &UpstreamError{Err: err}
	}
	defer c.release()

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/topstories.json", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("fetch top stories: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Status: resp.StatusCode}
	}

	var ids []int
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("decode top stories: %w", err)}
	}
	return ids, nil
}
