package work

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abelbrown/hnreader/internal/logging"
)

// ErrPoolStopped is the error recorded for work that could not run because
// the pool was not running.
var ErrPoolStopped = errors.New("work pool stopped")

// Pool manages a pool of workers that process work items.
// The worker count is really a concurrency limit: each dispatched item
// runs on its own goroutine.
type Pool struct {
	mu      sync.RWMutex
	workers int
	running bool

	pending   priorityQueue
	active    map[string]*Item
	completed *RingBuffer

	wake chan struct{}

	subscribers   []chan Event
	subscribersMu sync.RWMutex

	totalCreated   atomic.Int64
	totalCompleted atomic.Int64
	totalFailed    atomic.Int64
	nextID         atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPool creates a work pool with the specified number of workers.
// If workers <= 0, uses runtime.NumCPU().
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Pool{
		workers:   workers,
		active:    make(map[string]*Item),
		completed: NewRingBuffer(100),
		wake:      make(chan struct{}, 1),
	}
}

// Start launches the dispatcher. Calling Start twice is a no-op.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running || p.ctx != nil {
		p.mu.Unlock()
		return
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.processPending()

	logging.Info("Work pool started", "workers", p.workers)
}

// Stop cancels running work, fails anything still queued and waits for
// in-flight items to return. Safe to call more than once.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.cancel()
	var dropped []*Item
	for p.pending.Len() > 0 {
		dropped = append(dropped, heap.Pop(&p.pending).(*Item))
	}
	p.mu.Unlock()

	for _, item := range dropped {
		p.complete(item, "", ErrPoolStopped)
	}

	p.wg.Wait()
	logging.Info("Work pool stopped",
		"created", p.totalCreated.Load(),
		"completed", p.totalCompleted.Load(),
		"failed", p.totalFailed.Load())
}

// Submit queues an item and returns its ID. If the pool is not running the
// item is failed immediately and ErrPoolStopped is returned; its function
// never runs.
func (p *Pool) Submit(item *Item) (string, error) {
	seq := p.nextID.Add(1)
	item.ID = fmt.Sprintf("w%d", seq)
	item.seq = seq
	item.Status = StatusPending
	item.CreatedAt = time.Now()
	p.totalCreated.Add(1)

	p.mu.Lock()
	running := p.running
	if running {
		heap.Push(&p.pending, item)
	}
	created := *item
	p.mu.Unlock()

	p.notify(Event{Item: created, Change: ChangeCreated})

	if !running {
		p.complete(item, "", ErrPoolStopped)
		return item.ID, ErrPoolStopped
	}

	select {
	case p.wake <- struct{}{}:
	default:
		// A wake-up is already pending.
	}
	return item.ID, nil
}

// SubmitFuncWithPriority submits fn with the given priority.
func (p *Pool) SubmitFuncWithPriority(typ Type, desc string, priority int, fn Func) (string, error) {
	return p.Submit(&Item{
		Type:        typ,
		Description: desc,
		Priority:    priority,
		fn:          fn,
	})
}

// processPending moves items from the pending queue to goroutines.
func (p *Pool) processPending() {
	defer p.wg.Done()

	// The ticker catches capacity freed by completions that raced a wake-up.
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.dispatchPending()
		case <-p.wake:
			p.dispatchPending()
		}
	}
}

// dispatchPending starts pending items while there is worker capacity.
func (p *Pool) dispatchPending() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	for p.pending.Len() > 0 && len(p.active) < p.workers {
		item := heap.Pop(&p.pending).(*Item)
		item.Status = StatusActive
		item.StartedAt = time.Now()
		p.active[item.ID] = item

		p.notify(Event{Item: *item, Change: ChangeStarted})

		p.wg.Add(1)
		go p.execute(item)
	}
}

// execute runs a single work item.
func (p *Pool) execute(item *Item) {
	defer p.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Work panicked",
				"id", item.ID,
				"panic", r)
			p.complete(item, "", fmt.Errorf("panic: %v", r))
		}
	}()

	if item.fn == nil {
		p.complete(item, "", fmt.Errorf("no work function"))
		return
	}

	result, err := item.fn(p.ctx)
	p.complete(item, result, err)
}

// complete marks a work item as finished.
func (p *Pool) complete(item *Item, result string, err error) {
	p.mu.Lock()
	item.FinishedAt = time.Now()
	if item.StartedAt.IsZero() {
		item.StartedAt = item.FinishedAt
	}
	item.Result = result
	item.Error = err

	change := ChangeCompleted
	if err != nil {
		item.Status = StatusFailed
		change = ChangeFailed
		p.totalFailed.Add(1)
	} else {
		item.Status = StatusComplete
		p.totalCompleted.Add(1)
	}

	delete(p.active, item.ID)
	done := *item
	p.mu.Unlock()

	p.completed.Push(done)
	p.notify(Event{Item: done, Change: change})

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Snapshot returns the current state for UI display.
func (p *Pool) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	pending := make([]Item, 0, len(p.pending))
	for _, item := range p.pending {
		pending = append(pending, *item)
	}

	active := make([]Item, 0, len(p.active))
	for _, item := range p.active {
		active = append(active, *item)
	}

	return Snapshot{
		Pending:   pending,
		Active:    active,
		Completed: p.completed.All(),
		Stats:     p.statsLocked(),
	}
}

// Stats returns current statistics.
func (p *Pool) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.statsLocked()
}

func (p *Pool) statsLocked() Stats {
	return Stats{
		TotalCreated:   p.totalCreated.Load(),
		TotalCompleted: p.totalCompleted.Load(),
		TotalFailed:    p.totalFailed.Load(),
		WorkersActive:  len(p.active),
		WorkersTotal:   p.workers,
		PendingCount:   p.pending.Len(),
	}
}

// Subscribe returns a channel that receives work events.
// The channel should be drained to avoid dropping events.
func (p *Pool) Subscribe() <-chan Event {
	ch := make(chan Event, 100)
	p.subscribersMu.Lock()
	p.subscribers = append(p.subscribers, ch)
	p.subscribersMu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (p *Pool) Unsubscribe(ch <-chan Event) {
	p.subscribersMu.Lock()
	defer p.subscribersMu.Unlock()

	for i, sub := range p.subscribers {
		if sub == ch {
			p.subscribers = append(p.subscribers[:i], p.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// notify sends an event to all subscribers without blocking.
func (p *Pool) notify(event Event) {
	LogEvent(event)

	p.subscribersMu.RLock()
	defer p.subscribersMu.RUnlock()

	for _, ch := range p.subscribers {
		select {
		case ch <- event:
		default:
			logging.Debug("Work event dropped (subscriber full)",
				"id", event.Item.ID,
				"change", event.Change)
		}
	}
}
