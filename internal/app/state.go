// Package app holds the reconciled, presentation-ready application state.
//
// State is owned by the UI goroutine. The only value that crosses goroutines
// is the coordinator's handoff slot, which State reads through Reconcile.
package app

import (
	"fmt"
	"sort"

	"github.com/abelbrown/hnreader/internal/coord"
	"github.com/abelbrown/hnreader/internal/logging"
	"github.com/abelbrown/hnreader/internal/model"
)

// View selects which story list is shown.
type View int

const (
	ViewFetched View = iota // Stories fetched for the current category
	ViewSaved               // Favorites from the store
)

func (v View) String() string {
	if v == ViewSaved {
		return "Saved"
	}
	return "Fetched"
}

// dispatcher is the part of *coord.Coordinator State drives.
type dispatcher interface {
	Dispatch(cat model.Category) uint64
	Refresh(cat model.Category) uint64
	Retry(cat model.Category) uint64
	Drain() (coord.Outcome, bool)
}

// favorites is the durable favorites store.
type favorites interface {
	Add(story model.Story) error
	Remove(id uint64) error
	GetAll() ([]model.Story, error)
}

// State is the application state. Not safe for concurrent use.
type State struct {
	coord dispatcher
	favs  favorites

	category model.Category
	view     View
	stories  []model.Story // last successful fetch, replaced wholesale
	saved    []model.Story // favorites, newest story first
	favIDs   map[uint64]struct{}
	loading  bool
	errMsg   string
}

// New creates an idle State showing Top in the fetched view.
// Call LoadFavorites before first use.
func New(c dispatcher, favs favorites) *State {
	return &State{
		coord:    c,
		favs:     favs,
		category: model.CategoryTop,
		view:     ViewFetched,
		favIDs:   make(map[uint64]struct{}),
	}
}

// LoadFavorites replaces the in-memory favorites with the store contents.
func (s *State) LoadFavorites() error {
	saved, err := s.favs.GetAll()
	if err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}

	s.saved = saved
	s.favIDs = make(map[uint64]struct{}, len(saved))
	for _, story := range saved {
		s.favIDs[story.ID] = struct{}{}
	}
	s.sortSaved()

	logging.Info("Favorites loaded", "count", len(saved))
	return nil
}

// dispatch starts a fetch of the current category.
func (s *State) dispatch() {
	s.loading = true
	s.errMsg = ""
	s.coord.Dispatch(s.category)
}

// SelectCategory switches category and starts a fetch. The previous
// stories stay visible until the new result reconciles.
func (s *State) SelectCategory(cat model.Category) {
	s.category = cat
	s.dispatch()
}

// Refresh re-fetches the current category, bypassing cached items. After an
// error it retries ahead of other queued work.
func (s *State) Refresh() {
	retry := s.errMsg != ""
	s.loading = true
	s.errMsg = ""
	if retry {
		s.coord.Retry(s.category)
	} else {
		s.coord.Refresh(s.category)
	}
}

// SetView switches between fetched and saved stories. Switching to the
// fetched view with nothing loaded starts a fetch.
func (s *State) SetView(v View) {
	s.view = v
	if v == ViewFetched && len(s.stories) == 0 && !s.loading {
		s.dispatch()
	}
}

// ToggleView flips between the fetched and saved views.
func (s *State) ToggleView() {
	if s.view == ViewSaved {
		s.SetView(ViewFetched)
	} else {
		s.SetView(ViewSaved)
	}
}

// ToggleFavorite adds or removes story from favorites and reports whether it
// is a favorite afterwards. The in-memory set only changes after the store
// write succeeds, so on error nothing changes.
func (s *State) ToggleFavorite(story model.Story) (bool, error) {
	if _, ok := s.favIDs[story.ID]; ok {
		if err := s.favs.Remove(story.ID); err != nil {
			logging.Warn("Failed to remove favorite", "id", story.ID, "error", err)
			return true, err
		}
		delete(s.favIDs, story.ID)
		for i, fav := range s.saved {
			if fav.ID == story.ID {
				s.saved = append(s.saved[:i], s.saved[i+1:]...)
				break
			}
		}
		return false, nil
	}

	if err := s.favs.Add(story); err != nil {
		logging.Warn("Failed to save favorite", "id", story.ID, "error", err)
		return false, err
	}
	s.favIDs[story.ID] = struct{}{}
	s.saved = append(s.saved, story)
	s.sortSaved()
	return true, nil
}

// sortSaved orders favorites by story time, newest first, ties by ID.
func (s *State) sortSaved() {
	sort.SliceStable(s.saved, func(i, j int) bool {
		if s.saved[i].Time != s.saved[j].Time {
			return s.saved[i].Time > s.saved[j].Time
		}
		return s.saved[i].ID > s.saved[j].ID
	})
}

// IsFavorite reports whether id is a favorite.
func (s *State) IsFavorite(id uint64) bool {
	_, ok := s.favIDs[id]
	return ok
}

// Reconcile applies the pending fetch outcome, if any. It never blocks and
// reports whether the state changed. Call it once per frame.
func (s *State) Reconcile() bool {
	out, ok := s.coord.Drain()
	if !ok {
		return false
	}

	s.loading = false
	if out.Err != nil {
		s.errMsg = out.Err.Error()
		logging.Warn("Fetch failed", "category", out.Category, "error", out.Err)
		return true
	}

	s.stories = out.Stories
	s.errMsg = ""
	logging.Debug("Fetch reconciled", "category", out.Category, "stories", len(out.Stories))
	return true
}

// Visible returns the stories of the current view.
func (s *State) Visible() []model.Story {
	if s.view == ViewSaved {
		return s.saved
	}
	return s.stories
}

// Category returns the selected category.
func (s *State) Category() model.Category { return s.category }

// View returns the current view.
func (s *State) View() View { return s.view }

// Stories returns the last fetched stories.
func (s *State) Stories() []model.Story { return s.stories }

// Saved returns the favorites, newest story first.
func (s *State) Saved() []model.Story { return s.saved }

// Loading reports whether a fetch is outstanding.
func (s *State) Loading() bool { return s.loading }

// ErrMessage returns the last fetch error, or "" if the last fetch succeeded.
func (s *State) ErrMessage() string { return s.errMsg }

// FavoriteCount returns the number of favorites.
func (s *State) FavoriteCount() int { return len(s.favIDs) }
