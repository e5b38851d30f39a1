// Package work runs background jobs on a pool whose lifetime is tied to the
// process. Every category fetch goes through it, which keeps network I/O off
// the UI goroutine and makes in-flight work observable.
//
// Logging: state changes are logged via internal/logging since the UI may
// not be visible while debugging.
package work

import (
	"context"
	"fmt"
	"time"

	"github.com/abelbrown/hnreader/internal/logging"
)

// LogEvent logs a work event for debugging.
func LogEvent(event Event) {
	item := event.Item
	switch event.Change {
	case ChangeCreated:
		logging.Debug("Work created",
			"id", item.ID,
			"type", item.Type,
			"desc", item.Description)
	case ChangeStarted:
		logging.Debug("Work started",
			"id", item.ID,
			"type", item.Type,
			"desc", item.Description)
	case ChangeCompleted:
		logging.Info("Work completed",
			"id", item.ID,
			"type", item.Type,
			"desc", item.Description,
			"result", item.Result,
			"duration", item.Duration())
	case ChangeFailed:
		logging.Error("Work failed",
			"id", item.ID,
			"type", item.Type,
			"desc", item.Description,
			"error", item.Error,
			"duration", item.Duration())
	}
}

// Type categorizes work items for filtering and display.
type Type string

const (
	TypeFetch Type = "fetch" // Category listing fetch
	TypeOther Type = "other" // Catch-all
)

// Icon returns a display icon for the work type.
func (t Type) Icon() string {
	switch t {
	case TypeFetch:
		return "↓"
	default:
		return "○"
	}
}

// Priority levels. Higher runs first.
const (
	PriorityLow      = -10
	PriorityNormal   = 0
	PriorityHigh     = 10
	PriorityCritical = 100
)

// Status represents the lifecycle state of a work item.
type Status string

const (
	StatusPending  Status = "pending"  // Queued, waiting for worker
	StatusActive   Status = "active"   // Currently being processed
	StatusComplete Status = "complete" // Finished successfully
	StatusFailed   Status = "failed"   // Finished with error
)

// Func is the body of a work item. ctx is cancelled when the pool stops.
type Func func(ctx context.Context) (string, error)

// Item represents a unit of async work.
type Item struct {
	ID          string
	Type        Type
	Status      Status
	Description string // Human-readable: "Fetching Top"
	Priority    int    // Higher = more urgent (default 0)

	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time

	Result string // "30 stories"
	Error  error

	fn        Func
	seq       int64 // submission order, breaks priority ties
	heapIndex int
}

// Duration returns how long the work took (or has been running).
func (i *Item) Duration() time.Duration {
	if i.FinishedAt.IsZero() {
		if i.StartedAt.IsZero() {
			return 0
		}
		return time.Since(i.StartedAt)
	}
	return i.FinishedAt.Sub(i.StartedAt)
}

// StatusIcon returns a display icon for the current status.
func (i *Item) StatusIcon() string {
	switch i.Status {
	case StatusPending:
		return "○"
	case StatusActive:
		return "●"
	case StatusComplete:
		return "✓"
	case StatusFailed:
		return "✗"
	default:
		return "?"
	}
}

// Change names an Item state transition.
type Change string

const (
	ChangeCreated   Change = "created"
	ChangeStarted   Change = "started"
	ChangeCompleted Change = "completed"
	ChangeFailed    Change = "failed"
)

// Event is sent to subscribers when work state changes.
// Item is a copy taken at the time of the change.
type Event struct {
	Item   Item
	Change Change
}

// Snapshot represents the current state of the work pool.
type Snapshot struct {
	Pending   []Item
	Active    []Item
	Completed []Item // Recent completed (success + failure), newest first
	Stats     Stats
}

// Stats tracks work pool metrics.
type Stats struct {
	TotalCreated   int64
	TotalCompleted int64
	TotalFailed    int64
	WorkersActive  int
	WorkersTotal   int
	PendingCount   int
}

// String returns a summary string for stats.
func (s Stats) String() string {
	return fmt.Sprintf("Active: %d  Pending: %d  Done: %d  Failed: %d",
		s.WorkersActive, s.PendingCount, s.TotalCompleted, s.TotalFailed)
}
