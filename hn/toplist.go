package hn

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Ranked is one entry of a top-stories listing: the 1-indexed rank plus a
// shallow Item (comments unresolved). Item is nil and Failure set when the
// individual resolution failed; the slot is kept so output length and rank
// positions are stable.
type Ranked struct {
	Rank    int    `json:"rank"`
	ID      int    `json:"id"`
	Item    *Item  `json:"item,omitempty"`
	Failure string `json:"failure,omitempty"`
}

// TopItems fetches the ranked top-story id list and resolves the first n ids
// concurrently, shallow. The call fails only if the id-list fetch fails; a
// failed individual item keeps its rank slot as a placeholder. The result
// has exactly min(n, available) entries in rank order.
func (c *Client) TopItems(ctx context.Context, n int) ([]Ranked, error) {
	if n <= 0 {
		return nil, fmt.Errorf("listing size must be positive, got %d: %w", n, ErrInvalidInput)
	}

	ids, err := c.TopStories(ctx)
	if err != nil {
		return nil, err
	}
	if n > len(ids) {
		n = len(ids)
	}

	out := make([]Ranked, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cap(c.sem))
	for i := 0; i < n; i++ {
		slot, id := i, ids[i]
		g.Go(func() error {
			entry := Ranked{Rank: slot + 1, ID: id}
			item, err := c.GetItem(ctx, id)
			if err != nil {
				entry.Failure = FailureKind(err)
			} else {
				entry.Item = item
			}
			out[slot] = entry
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}
