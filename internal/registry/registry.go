// Package registry holds the bounded, arrival-ordered set of live toasts.
//
// Every mutation of the collection and of the per-toast countdowns happens
// under a single mutex, which is the only place toast lifetimes are decided.
// Removal, eviction and countdown cancellation complete in the same critical
// section; observers and subscribers hear about them after it is released.
package registry

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/toasty/internal/clock"
	"github.com/jmylchreest/toasty/internal/model"
	"github.com/jmylchreest/toasty/internal/timer"
)

// DefaultMax is the capacity used when none is configured.
const DefaultMax = 5

// EventType indicates the kind of registry change.
type EventType int

const (
	// EventPushed indicates a toast was added.
	EventPushed EventType = iota
	// EventRemoved indicates a toast left the registry.
	EventRemoved
	// EventPaused indicates a toast's countdown was frozen.
	EventPaused
	// EventResumed indicates a toast's countdown was restarted.
	EventResumed
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventPushed:
		return "pushed"
	case EventRemoved:
		return "removed"
	case EventPaused:
		return "paused"
	case EventResumed:
		return "resumed"
	default:
		return "unknown"
	}
}

// Event signals a registry change.
type Event struct {
	Type   EventType
	Item   model.Item
	Reason model.RemoveReason // only set for EventRemoved
}

// Observer is notified of toast lifecycle changes, outside the registry lock.
// Implementations may call back into the registry.
type Observer interface {
	Pushed(item model.Item)
	Removed(item model.Item, reason model.RemoveReason)
}

// Options configures a Registry.
type Options struct {
	Max    int
	Clock  clock.Clock
	Logger *slog.Logger
}

// Registry manages live toasts with thread-safe operations.
type Registry struct {
	mu     sync.Mutex
	clock  clock.Clock
	logger *slog.Logger
	timers *timer.Controller

	items []model.Item
	max   int

	observers   []Observer
	subscribers []chan Event
	closed      bool
}

// New creates a Registry.
func New(opts Options) *Registry {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Max <= 0 {
		opts.Max = DefaultMax
	}

	r := &Registry{
		clock:  opts.Clock,
		logger: opts.Logger,
		items:  make([]model.Item, 0, opts.Max),
		max:    opts.Max,
	}
	r.timers = timer.NewController(opts.Clock, r.onFire, opts.Logger)
	return r
}

// Push adds a toast and starts its countdown, returning its id.
// When the registry is over capacity the oldest arrivals are evicted first;
// the new toast's countdown is only registered if it survived eviction.
func (r *Registry) Push(opts model.Options) string {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.logger.Warn("push on closed registry dropped", "title", opts.Title)
		return ""
	}

	item := model.NewItem(opts, r.clock.Now())
	r.items = append(r.items, item)
	events := []Event{{Type: EventPushed, Item: item}}

	for len(r.items) > r.max {
		evicted := r.items[0]
		r.timers.Cancel(evicted.ID)
		r.items = r.items[1:]
		events = append(events, Event{Type: EventRemoved, Item: evicted, Reason: model.ReasonEvicted})
	}

	if r.indexLocked(item.ID) >= 0 && r.timers.Schedule(item.ID, item.Duration) {
		if ev, ok := r.removeLocked(item.ID, model.ReasonExpired); ok {
			events = append(events, ev)
		}
	}
	r.mu.Unlock()

	r.logger.Debug("toast pushed", "id", item.ID, "variant", item.Variant, "duration", item.Duration)
	r.dispatch(events)
	return item.ID
}

// Remove closes a toast through the API. Unknown ids are a no-op.
func (r *Registry) Remove(id string) {
	r.removeWithReason(id, model.ReasonClosed)
}

// Dismiss closes a toast on user request (gesture commit or close button).
func (r *Registry) Dismiss(id string) {
	r.removeWithReason(id, model.ReasonDismissed)
}

// Clear cancels every countdown and empties the registry.
func (r *Registry) Clear() {
	r.mu.Lock()
	events := r.clearLocked(model.ReasonCleared)
	r.mu.Unlock()

	r.dispatch(events)
}

// Pause freezes the countdown of id. Unknown ids are a no-op.
func (r *Registry) Pause(id string) {
	r.mu.Lock()
	if !r.timers.Running(id) {
		r.mu.Unlock()
		return
	}
	r.timers.Pause(id)
	var events []Event
	if idx := r.indexLocked(id); idx >= 0 {
		events = append(events, Event{Type: EventPaused, Item: r.items[idx]})
	}
	r.mu.Unlock()

	r.dispatch(events)
}

// Resume restarts the countdown of id with its remaining time. A countdown
// with nothing left expires the toast. Unknown ids are a no-op.
func (r *Registry) Resume(id string) {
	r.mu.Lock()
	if _, ok := r.timers.Remaining(id); !ok || r.timers.Running(id) {
		r.mu.Unlock()
		return
	}

	var events []Event
	if r.timers.Resume(id) {
		if ev, ok := r.removeLocked(id, model.ReasonExpired); ok {
			events = append(events, ev)
		}
	} else if idx := r.indexLocked(id); idx >= 0 {
		events = append(events, Event{Type: EventResumed, Item: r.items[idx]})
	}
	r.mu.Unlock()

	r.dispatch(events)
}

// Invoke runs the action callback of id, if it has one. The toast stays
// in place; the callback decides whether to remove it.
func (r *Registry) Invoke(id string) bool {
	r.mu.Lock()
	idx := r.indexLocked(id)
	if idx < 0 || r.items[idx].Action == nil || r.items[idx].Action.OnClick == nil {
		r.mu.Unlock()
		return false
	}
	onClick := r.items[idx].Action.OnClick
	r.mu.Unlock()

	r.logger.Debug("toast action invoked", "id", id)
	onClick(id)
	return true
}

// Duration returns the configured total lifetime of id, or the default
// duration if id is unknown.
func (r *Registry) Duration(id string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if total, ok := r.timers.Total(id); ok {
		return total
	}
	if idx := r.indexLocked(id); idx >= 0 {
		return r.items[idx].Duration
	}
	return model.DefaultDuration
}

// Remaining returns the time left before id expires.
func (r *Registry) Remaining(id string) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timers.Remaining(id)
}

// Paused reports whether id is live with a frozen countdown.
func (r *Registry) Paused(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.timers.Remaining(id)
	return ok && !r.timers.Running(id)
}

// Items returns a snapshot of the live toasts in arrival order.
func (r *Registry) Items() []model.Item {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Item, len(r.items))
	copy(out, r.items)
	return out
}

// Get returns the live toast with the given id.
func (r *Registry) Get(id string) (model.Item, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx := r.indexLocked(id); idx >= 0 {
		return r.items[idx], true
	}
	return model.Item{}, false
}

// Len returns the number of live toasts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Max returns the current capacity.
func (r *Registry) Max() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.max
}

// SetMax changes the capacity. Toasts already shown are left alone; the
// new limit is enforced from the next push.
func (r *Registry) SetMax(n int) {
	if n <= 0 {
		return
	}
	r.mu.Lock()
	old := r.max
	r.max = n
	r.mu.Unlock()

	if old != n {
		r.logger.Info("toast capacity changed", "old", old, "max", n)
	}
}

// AddObserver registers an observer for lifecycle changes.
func (r *Registry) AddObserver(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

// Subscribe returns a channel that receives change events.
// Events are dropped for subscribers that fall behind.
func (r *Registry) Subscribe() <-chan Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan Event, 32)
	if r.closed {
		close(ch)
		return ch
	}
	r.subscribers = append(r.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (r *Registry) Unsubscribe(ch <-chan Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, sub := range r.subscribers {
		if sub == ch {
			r.subscribers = append(r.subscribers[:i], r.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Close clears the registry, closes subscriber channels and rejects
// further pushes. Calling Close more than once is safe.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	events := r.clearLocked(model.ReasonCleared)
	r.mu.Unlock()

	r.dispatch(events)

	r.mu.Lock()
	for _, ch := range r.subscribers {
		close(ch)
	}
	r.subscribers = nil
	r.mu.Unlock()
}

// onFire is the deferred countdown callback. Stale callbacks are discarded
// by the controller's generation check.
func (r *Registry) onFire(id string, gen uint64) {
	r.mu.Lock()
	var events []Event
	if r.timers.Fire(id, gen) {
		if ev, ok := r.removeLocked(id, model.ReasonExpired); ok {
			events = append(events, ev)
		}
	}
	r.mu.Unlock()

	r.dispatch(events)
}

func (r *Registry) removeWithReason(id string, reason model.RemoveReason) {
	r.mu.Lock()
	var events []Event
	if ev, ok := r.removeLocked(id, reason); ok {
		events = append(events, ev)
	}
	r.mu.Unlock()

	r.dispatch(events)
}

// removeLocked cancels the countdown and drops the toast in one step.
func (r *Registry) removeLocked(id string, reason model.RemoveReason) (Event, bool) {
	r.timers.Cancel(id)
	idx := r.indexLocked(id)
	if idx < 0 {
		return Event{}, false
	}
	item := r.items[idx]
	r.items = append(r.items[:idx], r.items[idx+1:]...)
	return Event{Type: EventRemoved, Item: item, Reason: reason}, true
}

func (r *Registry) clearLocked(reason model.RemoveReason) []Event {
	r.timers.CancelAll()
	events := make([]Event, 0, len(r.items))
	for _, item := range r.items {
		events = append(events, Event{Type: EventRemoved, Item: item, Reason: reason})
	}
	r.items = r.items[:0]
	return events
}

func (r *Registry) indexLocked(id string) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

// dispatch delivers events to observers and subscribers. It must be called
// without the lock held.
func (r *Registry) dispatch(events []Event) {
	if len(events) == 0 {
		return
	}

	r.mu.Lock()
	observers := append([]Observer(nil), r.observers...)
	for _, ev := range events {
		for _, ch := range r.subscribers {
			select {
			case ch <- ev:
			default:
				// Subscriber full, skip
			}
		}
	}
	r.mu.Unlock()

	for _, ev := range events {
		if ev.Type == EventRemoved {
			r.logger.Debug("toast removed", "id", ev.Item.ID, "reason", ev.Reason)
		}
		for _, o := range observers {
			switch ev.Type {
			case EventPushed:
				o.Pushed(ev.Item)
			case EventRemoved:
				o.Removed(ev.Item, ev.Reason)
			}
		}
	}
}
