package store

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/abelbrown/hnreader/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func intPtr(n int) *int { return &n }

func TestOpen(t *testing.T) {
	st := openTestStore(t)

	var name string
	err := st.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='favorites'").Scan(&name)
	if err != nil {
		t.Fatalf("favorites table not created: %v", err)
	}

	err = st.db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name='idx_favorites_time'").Scan(&name)
	if err != nil {
		t.Fatalf("time index not created: %v", err)
	}
}

func TestAddGetAllRemove(t *testing.T) {
	st := openTestStore(t)

	story := model.Story{ID: 1, Title: "Show HN: a thing", URL: "https://example.com", By: "alice", Score: 10, Time: 1000, Descendants: intPtr(4)}
	if err := st.Add(story); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got, err := st.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 favorite, got %d", len(got))
	}
	if got[0].ID != 1 || got[0].Title != story.Title || got[0].URL != story.URL || got[0].By != "alice" {
		t.Errorf("unexpected favorite: %+v", got[0])
	}
	if got[0].Descendants == nil || *got[0].Descendants != 4 {
		t.Errorf("descendants not round-tripped: %v", got[0].Descendants)
	}

	ok, err := st.Contains(1)
	if err != nil || !ok {
		t.Errorf("Contains(1) = %v, %v; want true", ok, err)
	}

	if err := st.Remove(1); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	got, err = st.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no favorites after remove, got %d", len(got))
	}
	ok, err = st.Contains(1)
	if err != nil || ok {
		t.Errorf("Contains(1) = %v, %v; want false", ok, err)
	}
}

func TestAddOptionalFieldsAbsent(t *testing.T) {
	st := openTestStore(t)

	if err := st.Add(model.Story{ID: 7, Title: "Ask HN: why?", By: "bob", Time: 5}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	got, err := st.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if got[0].URL != "" {
		t.Errorf("expected empty URL, got %q", got[0].URL)
	}
	if got[0].Descendants != nil {
		t.Errorf("expected nil descendants, got %d", *got[0].Descendants)
	}

	var url any
	if err := st.db.QueryRow("SELECT url FROM favorites WHERE id = 7").Scan(&url); err != nil {
		t.Fatal(err)
	}
	if url != nil {
		t.Errorf("expected NULL url column, got %v", url)
	}
}

func TestAskPostTextRoundTrip(t *testing.T) {
	st := openTestStore(t)

	ask := model.Story{ID: 9, Type: "story", Title: "Ask HN: best editor?", Text: "I keep switching <i>every</i> week.", By: "carol", Time: 8}
	if err := st.Add(ask); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	got, err := st.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if got[0].Text != ask.Text || got[0].Type != "story" {
		t.Errorf("type/text not round-tripped: type=%q text=%q", got[0].Type, got[0].Text)
	}
}

func TestOpenMigratesOldSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	_, err = db.Exec(`CREATE TABLE favorites (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		url TEXT,
		by TEXT NOT NULL,
		score INTEGER NOT NULL,
		time INTEGER NOT NULL,
		descendants INTEGER,
		saved_at INTEGER NOT NULL
	);
	INSERT INTO favorites (id, title, by, score, time, saved_at) VALUES (3, 'old', 'x', 1, 1, 1);`)
	if err != nil {
		t.Fatalf("create old schema: %v", err)
	}
	db.Close()

	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open on old schema failed: %v", err)
	}
	defer st.Close()

	got, err := st.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(got) != 1 || got[0].Title != "old" || got[0].Text != "" {
		t.Errorf("old row not readable after migration: %+v", got)
	}
	if err := st.Add(model.Story{ID: 4, Title: "new", Text: "body", By: "y", Time: 2}); err != nil {
		t.Fatalf("Add after migration failed: %v", err)
	}
}

func TestAddReplacesSameID(t *testing.T) {
	st := openTestStore(t)

	if err := st.Add(model.Story{ID: 3, Title: "old", By: "c", Score: 1, Time: 10}); err != nil {
		t.Fatal(err)
	}
	if err := st.Add(model.Story{ID: 3, Title: "new", By: "c", Score: 99, Time: 10}); err != nil {
		t.Fatal(err)
	}

	got, err := st.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 favorite after upsert, got %d", len(got))
	}
	if got[0].Title != "new" || got[0].Score != 99 {
		t.Errorf("expected replaced row, got %+v", got[0])
	}
	if n, _ := st.Count(); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestGetAllOrderedByStoryTime(t *testing.T) {
	st := openTestStore(t)

	// Insert in an order unrelated to story time; saved_at increases with insertion.
	times := []int64{300, 100, 500, 200, 400}
	clock := time.Unix(0, 0)
	st.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	for i, ts := range times {
		if err := st.Add(model.Story{ID: uint64(i + 1), Title: "t", By: "x", Time: ts}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := st.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	want := []int64{500, 400, 300, 200, 100}
	if len(got) != len(want) {
		t.Fatalf("expected %d favorites, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Time != want[i] {
			t.Errorf("got[%d].Time = %d, want %d", i, got[i].Time, want[i])
		}
	}
}

func TestSavedAtStamped(t *testing.T) {
	st := openTestStore(t)
	st.now = func() time.Time { return time.Unix(1234, 0) }

	if err := st.Add(model.Story{ID: 9, Title: "t", By: "x", Time: 1}); err != nil {
		t.Fatal(err)
	}
	var savedAt int64
	if err := st.db.QueryRow("SELECT saved_at FROM favorites WHERE id = 9").Scan(&savedAt); err != nil {
		t.Fatal(err)
	}
	if savedAt != 1234 {
		t.Errorf("saved_at = %d, want 1234", savedAt)
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	st := openTestStore(t)
	if err := st.Remove(424242); err != nil {
		t.Errorf("Remove of absent id returned %v", err)
	}
}

func TestLargeIDRoundTrip(t *testing.T) {
	st := openTestStore(t)
	id := uint64(1<<53 + 1)
	if err := st.Add(model.Story{ID: id, Title: "big", By: "x", Time: 1}); err != nil {
		t.Fatal(err)
	}
	ok, err := st.Contains(id)
	if err != nil || !ok {
		t.Errorf("Contains(%d) = %v, %v", id, ok, err)
	}
}

func TestClosedStore(t *testing.T) {
	st, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	st.Close()

	if err := st.Add(model.Story{ID: 1, Title: "t", By: "x"}); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Add after close = %v", err)
	}
	if _, err := st.GetAll(); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("GetAll after close = %v", err)
	}
	if err := st.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.db")

	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := st.Add(model.Story{ID: 5, Title: "durable", By: "x", Time: 1}); err != nil {
		t.Fatal(err)
	}
	st.Close()

	st, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer st.Close()
	got, err := st.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(got) != 1 || got[0].Title != "durable" {
		t.Errorf("favorite not persisted: %+v", got)
	}
}
