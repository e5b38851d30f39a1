// Package coord hands category fetches to the work pool and passes their
// results back to the UI goroutine through a single-slot handoff.
package coord

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/abelbrown/hnreader/internal/fetch"
	"github.com/abelbrown/hnreader/internal/logging"
	"github.com/abelbrown/hnreader/internal/model"
	"github.com/abelbrown/hnreader/internal/work"
)

// fetcher interface for dependency injection (testing).
type fetcher interface {
	FetchCategory(ctx context.Context, cat model.Category) ([]model.Story, error)
}

// submitter is the slice of *work.Pool the coordinator needs.
type submitter interface {
	SubmitFuncWithPriority(typ work.Type, desc string, priority int, fn work.Func) (string, error)
}

// Outcome is the result of one dispatched fetch. Exactly one of Stories
// (possibly empty) or Err is meaningful.
type Outcome struct {
	Generation uint64
	Category   model.Category
	Stories    []model.Story
	Err        error
}

// Coordinator dispatches fetches and holds at most one pending outcome.
//
// Every dispatch gets a generation number. Only the outcome of the latest
// generation is ever handed to Drain, so a slow fetch for a category the
// user already left cannot overwrite a newer result.
type Coordinator struct {
	fetcher fetcher
	pool    submitter

	latest  atomic.Uint64 // last dispatched generation
	settled atomic.Uint64 // last generation handed out by Drain

	mu   sync.Mutex // guards slot
	slot *Outcome
}

// New creates a Coordinator that runs fetches on pool.
func New(f fetcher, pool submitter) *Coordinator {
	return &Coordinator{fetcher: f, pool: pool}
}

// Dispatch starts a background fetch of cat and returns its generation.
// Cached items may be reused. Never blocks.
func (c *Coordinator) Dispatch(cat model.Category) uint64 {
	return c.dispatch(cat, work.PriorityNormal, false)
}

// Refresh re-fetches cat with every item requested from the network.
func (c *Coordinator) Refresh(cat model.Category) uint64 {
	return c.dispatch(cat, work.PriorityNormal, true)
}

// Retry is Refresh ahead of any queued work.
func (c *Coordinator) Retry(cat model.Category) uint64 {
	return c.dispatch(cat, work.PriorityHigh, true)
}

func (c *Coordinator) dispatch(cat model.Category, priority int, fresh bool) uint64 {
	gen := c.latest.Add(1)

	_, err := c.pool.SubmitFuncWithPriority(work.TypeFetch, "Fetching "+cat.String(), priority,
		func(ctx context.Context) (string, error) {
			if fresh {
				ctx = fetch.WithFreshItems(ctx)
			}
			stories, err := c.fetcher.FetchCategory(ctx, cat)
			c.publish(Outcome{
				Generation: gen,
				Category:   cat,
				Stories:    stories,
				Err:        err,
			})
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d stories", len(stories)), nil
		})
	if err != nil {
		// The fetch will never run; settle the generation with the error.
		logging.Warn("Fetch not dispatched", "category", cat, "error", err)
		c.publish(Outcome{Generation: gen, Category: cat, Err: err})
		return gen
	}

	logging.Debug("Fetch dispatched", "category", cat, "generation", gen, "fresh", fresh)
	return gen
}

// publish stores out in the slot unless it is already stale.
func (c *Coordinator) publish(out Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if latest := c.latest.Load(); out.Generation < latest {
		logging.Debug("Stale fetch result dropped",
			"category", out.Category,
			"generation", out.Generation,
			"latest", latest)
		return
	}
	if c.slot != nil && c.slot.Generation > out.Generation {
		return
	}
	c.slot = &out
}

// Drain takes the pending outcome, if any. It never blocks: when the
// publisher holds the slot the frame simply tries again next time.
// Outcomes that are not from the latest dispatch are discarded.
func (c *Coordinator) Drain() (Outcome, bool) {
	if !c.mu.TryLock() {
		return Outcome{}, false
	}
	out := c.slot
	c.slot = nil
	c.mu.Unlock()

	if out == nil {
		return Outcome{}, false
	}

	if latest := c.latest.Load(); out.Generation != latest {
		logging.Debug("Stale fetch result discarded",
			"category", out.Category,
			"generation", out.Generation,
			"latest", latest)
		return Outcome{}, false
	}

	c.settled.Store(out.Generation)
	return *out, true
}

// Pending reports whether the latest dispatch has not been drained yet.
func (c *Coordinator) Pending() bool {
	return c.settled.Load() != c.latest.Load()
}

