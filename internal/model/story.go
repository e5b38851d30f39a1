// Package model holds the story and category types shared by the fetcher,
// the favorites store and the UI.
package model

import (
	"fmt"
	"net/url"
	"time"
)

// Story is a Hacker News item as reported by the API.
// Two stories with the same ID are the same logical item.
type Story struct {
	ID          uint64 `json:"id"`
	Type        string `json:"type,omitempty"`
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"` // empty for Ask/text posts
	Text        string `json:"text,omitempty"`
	By          string `json:"by"`
	Score       int    `json:"score"`
	Time        int64  `json:"time"` // Unix seconds
	Descendants *int   `json:"descendants,omitempty"`
	Dead        bool   `json:"dead,omitempty"`
	Deleted     bool   `json:"deleted,omitempty"`
}

// Comments returns the descendant count, or 0 when the API omitted it.
func (s Story) Comments() int {
	if s.Descendants == nil {
		return 0
	}
	return *s.Descendants
}

// Published returns the creation time.
func (s Story) Published() time.Time {
	return time.Unix(s.Time, 0)
}

// StoryDisplay is a Story plus values derived for rendering. Never persisted.
type StoryDisplay struct {
	Story
	Domain string // host of URL, empty when absent or unparseable
}

// NewStoryDisplay derives the display fields for s.
func NewStoryDisplay(s Story) StoryDisplay {
	return StoryDisplay{Story: s, Domain: domainOf(s.URL)}
}

func domainOf(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Age returns relative age text such as "3 hours ago".
// Computed on demand so it never goes stale.
func (d StoryDisplay) Age(now time.Time) string {
	age := now.Sub(d.Published())
	hours := int(age / time.Hour)
	minutes := int(age / time.Minute)
	switch {
	case hours > 24:
		return plural(hours/24, "day") + " ago"
	case hours > 0:
		return plural(hours, "hour") + " ago"
	case minutes > 0:
		return plural(minutes, "minute") + " ago"
	default:
		return "just now"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// DiscussURL returns the Hacker News comments page for the story.
func (d StoryDisplay) DiscussURL() string {
	return fmt.Sprintf("https://news.ycombinator.com/item?id=%d", d.ID)
}

// LinkURL returns the story link, falling back to the discussion page.
func (d StoryDisplay) LinkURL() string {
	if d.URL != "" {
		return d.URL
	}
	return d.DiscussURL()
}
