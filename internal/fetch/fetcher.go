// Package fetch retrieves ranked story listings from the Hacker News API.
//
// A listing is fetched in two stages: the ordered list of item IDs for the
// category, then one request per item. The first stage failing fails the
// whole call; individual items that fail are skipped.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/abelbrown/hnreader/internal/logging"
	"github.com/abelbrown/hnreader/internal/model"
)

// DefaultBaseURL is the public Hacker News Firebase API.
const DefaultBaseURL = "https://hacker-news.firebaseio.com/v0"

const (
	// DefaultLimit is the number of stories kept from each listing.
	DefaultLimit = 30

	listTimeout        = 10 * time.Second
	itemTimeout        = 5 * time.Second
	clientTimeout      = 30 * time.Second
	maxConcurrentItems = 8
	userAgent          = "hnreader/0.1 (https://github.com/abelbrown/hnreader)"
)

// Options configures a Client. Zero values select the defaults noted per field.
type Options struct {
	BaseURL     string        // DefaultBaseURL
	Limit       int           // DefaultLimit
	ListTimeout time.Duration // 10s
	ItemTimeout time.Duration // 5s
	Concurrency int           // 8 parallel item requests

	// RequestsPerSecond paces item requests. <= 0 means unlimited.
	RequestsPerSecond float64
	Burst             int

	// CacheTTL keeps fetched items for reuse across listings. <= 0 disables
	// caching. Fetches made with WithFreshItems always go to the network.
	CacheTTL time.Duration

	HTTPClient *http.Client
}

// DefaultOptions returns the settings used by the application.
func DefaultOptions() Options {
	return Options{
		BaseURL:           DefaultBaseURL,
		Limit:             DefaultLimit,
		ListTimeout:       listTimeout,
		ItemTimeout:       itemTimeout,
		Concurrency:       maxConcurrentItems,
		RequestsPerSecond: 50,
		Burst:             10,
		CacheTTL:          time.Minute,
	}
}

// Client fetches category listings. Safe for concurrent use.
type Client struct {
	baseURL     string
	limit       int
	listTimeout time.Duration
	itemTimeout time.Duration
	concurrency int
	http        *http.Client
	limiter     *rate.Limiter
	items       *cache.Cache // nil when caching is disabled
}

type freshKey struct{}

// WithFreshItems marks ctx so FetchCategory skips cached items. Fresh
// results still refill the cache.
func WithFreshItems(ctx context.Context) context.Context {
	return context.WithValue(ctx, freshKey{}, true)
}

// FreshItems reports whether ctx was marked by WithFreshItems.
func FreshItems(ctx context.Context) bool {
	fresh, _ := ctx.Value(freshKey{}).(bool)
	return fresh
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:     opts.BaseURL,
		limit:       opts.Limit,
		listTimeout: opts.ListTimeout,
		itemTimeout: opts.ItemTimeout,
		concurrency: opts.Concurrency,
		http:        opts.HTTPClient,
		limiter:     rate.NewLimiter(rate.Inf, 1),
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.limit <= 0 {
		c.limit = DefaultLimit
	}
	if c.listTimeout <= 0 {
		c.listTimeout = listTimeout
	}
	if c.itemTimeout <= 0 {
		c.itemTimeout = itemTimeout
	}
	if c.concurrency <= 0 {
		c.concurrency = maxConcurrentItems
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: clientTimeout}
	}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	if opts.CacheTTL > 0 {
		c.items = cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	return c
}

// FetchCategory returns up to Limit stories for cat, in listing order.
//
// A *TransportError is returned only when the ID listing cannot be
// retrieved (or ctx is cancelled); in that case no item requests are made.
// Items that fail to load are dropped, so an empty result is a success.
func (c *Client) FetchCategory(ctx context.Context, cat model.Category) ([]model.Story, error) {
	ids, err := c.fetchIDs(ctx, cat)
	if err != nil {
		return nil, &TransportError{Category: cat, Err: err}
	}
	if len(ids) > c.limit {
		ids = ids[:c.limit]
	}

	// Each slot is written by exactly one goroutine.
	results := make([]*model.Story, len(ids))

	// Plain Group, not WithContext: one failing item must not cancel the rest.
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			story, err := c.fetchItem(ctx, id)
			if err != nil {
				logging.Debug("Skipping item", "category", cat, "id", id, "error", err)
				return nil
			}
			results[i] = story
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		return nil, &TransportError{Category: cat, Err: ctx.Err()}
	}

	stories := make([]model.Story, 0, len(ids))
	for _, s := range results {
		if s != nil {
			stories = append(stories, *s)
		}
	}

	logging.Debug("Fetched category",
		"category", cat,
		"requested", len(ids),
		"loaded", len(stories))
	return stories, nil
}

// fetchIDs retrieves the ranked ID list for cat.
func (c *Client) fetchIDs(ctx context.Context, cat model.Category) ([]uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.listTimeout)
	defer cancel()

	var ids []uint64
	if err := c.getJSON(ctx, fmt.Sprintf("%s/%s.json", c.baseURL, cat.Endpoint()), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// fetchItem retrieves and validates a single item.
func (c *Client) fetchItem(ctx context.Context, id uint64) (*model.Story, error) {
	key := strconv.FormatUint(id, 10)
	if c.items != nil && !FreshItems(ctx) {
		if v, ok := c.items.Get(key); ok {
			s := v.(model.Story)
			return &s, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.itemTimeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &ItemError{ID: id, Err: err}
	}

	// A JSON null body leaves story zero-valued and fails validation below.
	var story model.Story
	if err := c.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", c.baseURL, id), &story); err != nil {
		return nil, &ItemError{ID: id, Err: err}
	}
	if err := validateItem(id, story); err != nil {
		return nil, &ItemError{ID: id, Err: err}
	}

	if c.items != nil {
		c.items.SetDefault(key, story)
	}
	return &story, nil
}

func validateItem(id uint64, s model.Story) error {
	switch {
	case s.ID == 0:
		return fmt.Errorf("empty item")
	case s.ID != id:
		return fmt.Errorf("item id mismatch: got %d", s.ID)
	case s.Deleted || s.Dead:
		return fmt.Errorf("item removed")
	case s.Title == "":
		return fmt.Errorf("missing title")
	}
	return nil
}

// getJSON issues a GET and decodes a 200 response into v.
func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
