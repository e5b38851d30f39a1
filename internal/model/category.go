package model

import (
	"fmt"
	"strings"
)

// Category is one of the fixed Hacker News listing kinds.
type Category int

const (
	CategoryTop Category = iota
	CategoryNew
	CategoryBest
	CategoryAsk
	CategoryShow
	CategoryJobs
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryTop,
	CategoryNew,
	CategoryBest,
	CategoryAsk,
	CategoryShow,
	CategoryJobs,
}

// Endpoint returns the API listing name, e.g. "topstories".
func (c Category) Endpoint() string {
	switch c {
	case CategoryNew:
		return "newstories"
	case CategoryBest:
		return "beststories"
	case CategoryAsk:
		return "askstories"
	case CategoryShow:
		return "showstories"
	case CategoryJobs:
		return "jobstories"
	default:
		return "topstories"
	}
}

// String returns the display label.
func (c Category) String() string {
	switch c {
	case CategoryTop:
		return "Top"
	case CategoryNew:
		return "New"
	case CategoryBest:
		return "Best"
	case CategoryAsk:
		return "Ask"
	case CategoryShow:
		return "Show"
	case CategoryJobs:
		return "Jobs"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c >= CategoryTop && c <= CategoryJobs
}

// Next returns the following category, wrapping around.
func (c Category) Next() Category {
	return Categories[(c.index()+1)%len(Categories)]
}

// Prev returns the preceding category, wrapping around.
func (c Category) Prev() Category {
	return Categories[(c.index()+len(Categories)-1)%len(Categories)]
}

func (c Category) index() int {
	if !c.Valid() {
		return 0
	}
	return int(c)
}

// ParseCategory matches a display label or endpoint name, case-insensitively.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories {
		if s == strings.ToLower(c.String()) || s == c.Endpoint() {
			return c, nil
		}
	}
	return CategoryTop, fmt.Errorf("unknown category %q", s)
}
