package hn

import (
	"fmt"
	"time"
)

// Item represents a Hacker News item (story, comment, job, poll, pollopt).
type Item struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	By          string `json:"by,omitempty"`
	Time        int64  `json:"time,omitempty"`
	Text        string `json:"text,omitempty"`
	URL         string `json:"url,omitempty"`
	Title       string `json:"title,omitempty"`
	Score       int    `json:"score,omitempty"`
	Descendants int    `json:"descendants,omitempty"`
	Kids        []int  `json:"kids,omitempty"`
	Parent      int    `json:"parent,omitempty"`
	Dead        bool   `json:"dead,omitempty"`
	Deleted     bool   `json:"deleted,omitempty"`
}

// DiscussionURL returns the news.ycombinator.com page for the item.
func (it *Item) DiscussionURL() string {
	return fmt.Sprintf("https://news.ycombinator.com/item?id=%d", it.ID)
}

// CommentCount prefers descendants (total, including nested) over the
// direct-reply count.
func (it *Item) CommentCount() int {
	if it.Descendants > 0 {
		return it.Descendants
	}
	return len(it.Kids)
}

// Failure kinds recorded on placeholder nodes and listing entries.
const (
	FailureNotFound = "not_found"
	FailureUpstream = "upstream"
	FailureCycle    = "cycle"
	FailureDeleted  = "deleted"
)

// Node is one position in a resolved comment tree. A node either carries a
// fully fetched Item, or a placeholder Item holding only the id plus a
// Failure marker. Children preserve the source kids order; a node whose kids
// were left unresolved because the depth bound was reached carries
// Truncated=true and no children.
type Node struct {
	Item      *Item   `json:"item"`
	Children  []*Node `json:"children,omitempty"`
	Truncated bool    `json:"truncated,omitempty"`
	Failure   string  `json:"failure,omitempty"`
}

// RelativeAge renders a unix timestamp as a coarse "N hours ago" string
// relative to now.
func RelativeAge(unix int64, now time.Time) string {
	diff := now.Unix() - unix
	switch {
	case diff < 60:
		return "just now"
	case diff < 3600:
		return plural(diff/60, "minute")
	case diff < 86400:
		return plural(diff/3600, "hour")
	default:
		return plural(diff/86400, "day")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
