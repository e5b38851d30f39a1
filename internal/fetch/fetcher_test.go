package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abelbrown/hnreader/internal/model"
)

// fakeAPI serves a minimal Hacker News API.
type fakeAPI struct {
	ids        []uint64
	listStatus int           // 0 means 200
	listDelay  time.Duration // block the listing request this long
	broken     map[uint64]string
	scoreBump  atomic.Int32 // added to every item score

	listRequests atomic.Int32
	itemRequests atomic.Int32
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/item/") {
		f.itemRequests.Add(1)
		f.serveItem(w, r)
		return
	}

	f.listRequests.Add(1)
	if f.listDelay > 0 {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(f.listDelay):
		}
	}
	if f.listStatus != 0 {
		w.WriteHeader(f.listStatus)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(f.ids)
}

func (f *fakeAPI) serveItem(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/item/"), ".json")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch f.broken[id] {
	case "500":
		w.WriteHeader(http.StatusInternalServerError)
		return
	case "malformed":
		w.Write([]byte(`{"id": "not-a-number",`))
		return
	case "null":
		w.Write([]byte(`null`))
		return
	case "dead":
		fmt.Fprintf(w, `{"id":%d,"title":"gone","by":"x","score":1,"time":1,"dead":true}`, id)
		return
	case "slow":
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		return
	}

	fmt.Fprintf(w, `{"id":%d,"title":"Story %d","url":"https://example.com/%d","by":"user%d","score":%d,"time":%d,"descendants":%d}`,
		id, id, id, id, int(id%100)+int(f.scoreBump.Load()), 1700000000+id, id%7)
}

func newTestClient(t *testing.T, api *fakeAPI, opts Options) *Client {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)
	opts.BaseURL = server.URL
	return NewClient(opts)
}

func sequentialIDs(n int) []uint64 {
	ids := make([]uint64, n)
	for i := range ids {
		ids[i] = uint64(1000 + i)
	}
	return ids
}

func TestFetchCategoryTruncatesAndPreservesOrder(t *testing.T) {
	api := &fakeAPI{ids: sequentialIDs(80)}
	client := newTestClient(t, api, Options{})

	stories, err := client.FetchCategory(context.Background(), model.CategoryTop)
	if err != nil {
		t.Fatalf("FetchCategory failed: %v", err)
	}
	if len(stories) != DefaultLimit {
		t.Fatalf("expected %d stories, got %d", DefaultLimit, len(stories))
	}
	for i, s := range stories {
		if s.ID != api.ids[i] {
			t.Errorf("stories[%d].ID = %d, want %d", i, s.ID, api.ids[i])
		}
	}
	if got := api.itemRequests.Load(); got != DefaultLimit {
		t.Errorf("expected %d item requests, got %d", DefaultLimit, got)
	}
}

func TestFetchCategoryUsesEndpoint(t *testing.T) {
	var path atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/item/") {
			path.Store(r.URL.Path)
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL})
	for _, c := range model.Categories {
		if _, err := client.FetchCategory(context.Background(), c); err != nil {
			t.Fatalf("FetchCategory(%s) failed: %v", c, err)
		}
		want := "/" + c.Endpoint() + ".json"
		if path.Load() != want {
			t.Errorf("%s requested %v, want %s", c, path.Load(), want)
		}
	}
}

func TestFetchCategoryListFailure(t *testing.T) {
	api := &fakeAPI{ids: sequentialIDs(10), listStatus: http.StatusServiceUnavailable}
	client := newTestClient(t, api, Options{})

	stories, err := client.FetchCategory(context.Background(), model.CategoryNew)
	if err == nil {
		t.Fatal("expected error for failed listing")
	}
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %T", err)
	}
	if te.Category != model.CategoryNew {
		t.Errorf("error category = %s", te.Category)
	}
	if stories != nil {
		t.Errorf("expected nil stories, got %d", len(stories))
	}
	if got := api.itemRequests.Load(); got != 0 {
		t.Errorf("expected zero item requests, got %d", got)
	}
}

func TestFetchCategoryListTimeout(t *testing.T) {
	api := &fakeAPI{ids: sequentialIDs(5), listDelay: time.Second}
	client := newTestClient(t, api, Options{ListTimeout: 50 * time.Millisecond})

	start := time.Now()
	_, err := client.FetchCategory(context.Background(), model.CategoryTop)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 900*time.Millisecond {
		t.Errorf("timeout not enforced, took %v", elapsed)
	}
	if got := api.itemRequests.Load(); got != 0 {
		t.Errorf("expected zero item requests, got %d", got)
	}
}

func TestFetchCategoryListNotJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL})
	_, err := client.FetchCategory(context.Background(), model.CategoryTop)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
}

func TestFetchCategorySkipsFailedItems(t *testing.T) {
	ids := sequentialIDs(30)
	api := &fakeAPI{
		ids: ids,
		broken: map[uint64]string{
			ids[0]:  "500",
			ids[3]:  "malformed",
			ids[10]: "null",
			ids[17]: "dead",
			ids[29]: "slow",
		},
	}
	client := newTestClient(t, api, Options{ItemTimeout: 100 * time.Millisecond})

	stories, err := client.FetchCategory(context.Background(), model.CategoryTop)
	if err != nil {
		t.Fatalf("FetchCategory failed: %v", err)
	}
	if len(stories) != 25 {
		t.Fatalf("expected 25 stories, got %d", len(stories))
	}

	var want []uint64
	for _, id := range ids {
		if _, bad := api.broken[id]; !bad {
			want = append(want, id)
		}
	}
	for i, s := range stories {
		if s.ID != want[i] {
			t.Errorf("stories[%d].ID = %d, want %d", i, s.ID, want[i])
		}
	}
}

func TestFetchCategoryAllItemsFail(t *testing.T) {
	ids := sequentialIDs(4)
	broken := make(map[uint64]string)
	for _, id := range ids {
		broken[id] = "500"
	}
	api := &fakeAPI{ids: ids, broken: broken}
	client := newTestClient(t, api, Options{})

	stories, err := client.FetchCategory(context.Background(), model.CategoryAsk)
	if err != nil {
		t.Fatalf("expected success with empty list, got %v", err)
	}
	if len(stories) != 0 {
		t.Errorf("expected empty list, got %d", len(stories))
	}
}

func TestFetchCategoryDecodesFields(t *testing.T) {
	api := &fakeAPI{ids: []uint64{1042}}
	client := newTestClient(t, api, Options{})

	stories, err := client.FetchCategory(context.Background(), model.CategoryBest)
	if err != nil {
		t.Fatalf("FetchCategory failed: %v", err)
	}
	if len(stories) != 1 {
		t.Fatalf("expected 1 story, got %d", len(stories))
	}
	s := stories[0]
	if s.Title != "Story 1042" || s.By != "user1042" || s.URL != "https://example.com/1042" {
		t.Errorf("unexpected story: %+v", s)
	}
	if s.Time != 1700001042 || s.Score != 42 || s.Comments() != 1042%7 {
		t.Errorf("unexpected numbers: %+v", s)
	}
}

func TestFetchCategoryCachesItems(t *testing.T) {
	api := &fakeAPI{ids: sequentialIDs(5)}
	client := newTestClient(t, api, Options{CacheTTL: time.Minute})

	for i := 0; i < 2; i++ {
		if _, err := client.FetchCategory(context.Background(), model.CategoryTop); err != nil {
			t.Fatalf("fetch %d failed: %v", i, err)
		}
	}
	if got := api.listRequests.Load(); got != 2 {
		t.Errorf("expected listing fetched twice, got %d", got)
	}
	if got := api.itemRequests.Load(); got != 5 {
		t.Errorf("expected 5 item requests with cache, got %d", got)
	}
}

func TestFetchCategoryFreshItemsSkipCache(t *testing.T) {
	api := &fakeAPI{ids: sequentialIDs(3)}
	client := newTestClient(t, api, DefaultOptions())

	first, err := client.FetchCategory(context.Background(), model.CategoryTop)
	if err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	api.scoreBump.Store(50)

	cached, err := client.FetchCategory(context.Background(), model.CategoryTop)
	if err != nil {
		t.Fatalf("cached fetch failed: %v", err)
	}
	if cached[0].Score != first[0].Score {
		t.Errorf("category switch should reuse cached items: score %d, want %d", cached[0].Score, first[0].Score)
	}

	fresh, err := client.FetchCategory(WithFreshItems(context.Background()), model.CategoryTop)
	if err != nil {
		t.Fatalf("fresh fetch failed: %v", err)
	}
	if want := first[0].Score + 50; fresh[0].Score != want {
		t.Errorf("refresh score = %d, want %d", fresh[0].Score, want)
	}
	if got := api.itemRequests.Load(); got != 6 {
		t.Errorf("expected 6 item requests, got %d", got)
	}

	// The fresh result refills the cache.
	again, _ := client.FetchCategory(context.Background(), model.CategoryTop)
	if again[0].Score != fresh[0].Score {
		t.Errorf("cache not refilled: score %d, want %d", again[0].Score, fresh[0].Score)
	}
}

func TestFetchCategoryCancelled(t *testing.T) {
	api := &fakeAPI{ids: sequentialIDs(3)}
	client := newTestClient(t, api, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchCategory(ctx, model.CategoryTop)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
