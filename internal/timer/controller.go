// Package timer turns a fire-and-forget duration into a pausable countdown.
//
// The Controller keeps an explicit remaining-time ledger per toast id, so a
// countdown survives any number of pause/resume cycles without losing the
// time already spent. It is not safe for concurrent use: the owner must
// serialize every call, including Fire from deferred callbacks.
package timer

import (
	"log/slog"
	"time"

	"github.com/jmylchreest/toasty/internal/clock"
)

// FireFunc is invoked from a deferred callback when a countdown elapses.
// The receiver must pass id and gen back to Controller.Fire under its lock.
type FireFunc func(id string, gen uint64)

// record is the bookkeeping for one countdown.
type record struct {
	total     time.Duration
	remaining time.Duration
	startedAt time.Time // only meaningful while running
	running   bool
	handle    clock.Timer
	gen       uint64
}

// Controller owns per-id countdown records.
type Controller struct {
	clock   clock.Clock
	onFire  FireFunc
	logger  *slog.Logger
	records map[string]*record
	seq     uint64
}

// NewController creates a Controller. onFire is called from deferred callbacks.
func NewController(clk clock.Clock, onFire FireFunc, logger *slog.Logger) *Controller {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		clock:   clk,
		onFire:  onFire,
		logger:  logger,
		records: make(map[string]*record),
	}
}

// Schedule starts a countdown of d for id, replacing any existing record.
// It returns true when d <= 0: the countdown is already over, no record is
// kept and the caller must remove the toast now.
func (c *Controller) Schedule(id string, d time.Duration) bool {
	if remaining, ok := c.Remaining(id); ok {
		c.logger.Warn("countdown replaced, earlier toast with this id will not expire",
			"id", id, "remaining", remaining)
		c.Cancel(id)
	}

	if d <= 0 {
		c.logger.Debug("zero duration, expiring immediately", "id", id)
		return true
	}

	rec := &record{
		total:     d,
		remaining: d,
	}
	c.records[id] = rec
	c.arm(id, rec)
	return false
}

// Pause freezes the countdown for id. Already paused or unknown ids are a no-op.
func (c *Controller) Pause(id string) {
	rec, ok := c.records[id]
	if !ok || !rec.running {
		return
	}

	elapsed := c.clock.Now().Sub(rec.startedAt)
	rec.remaining = max(0, rec.remaining-elapsed)
	rec.startedAt = time.Time{}
	rec.running = false
	c.disarm(rec)

	c.logger.Debug("countdown paused", "id", id, "remaining", rec.remaining)
}

// Resume restarts a paused countdown with whatever time was left.
// It returns true when nothing was left: the record is discarded and the
// caller must remove the toast now. Unknown or running ids are a no-op.
func (c *Controller) Resume(id string) bool {
	rec, ok := c.records[id]
	if !ok || rec.running {
		return false
	}

	if rec.remaining <= 0 {
		delete(c.records, id)
		return true
	}

	c.arm(id, rec)
	c.logger.Debug("countdown resumed", "id", id, "remaining", rec.remaining)
	return false
}

// Cancel discards the record for id, stopping any pending callback.
func (c *Controller) Cancel(id string) {
	rec, ok := c.records[id]
	if !ok {
		return
	}
	c.disarm(rec)
	delete(c.records, id)
}

// CancelAll discards every record.
func (c *Controller) CancelAll() {
	for id, rec := range c.records {
		c.disarm(rec)
		delete(c.records, id)
	}
}

// Fire validates a deferred callback. It returns true, and discards the
// record, only if id is still counting down on the arming identified by gen.
// Callbacks from a cancelled, paused or re-armed countdown return false.
func (c *Controller) Fire(id string, gen uint64) bool {
	rec, ok := c.records[id]
	if !ok || !rec.running || rec.gen != gen {
		return false
	}
	rec.remaining = 0
	rec.running = false
	delete(c.records, id)
	return true
}

// Remaining returns the time left for id as of now.
func (c *Controller) Remaining(id string) (time.Duration, bool) {
	rec, ok := c.records[id]
	if !ok {
		return 0, false
	}
	if !rec.running {
		return rec.remaining, true
	}
	return max(0, rec.remaining-c.clock.Now().Sub(rec.startedAt)), true
}

// Total returns the originally scheduled duration for id.
func (c *Controller) Total(id string) (time.Duration, bool) {
	rec, ok := c.records[id]
	if !ok {
		return 0, false
	}
	return rec.total, true
}

// Running reports whether id has a countdown that is not paused.
func (c *Controller) Running(id string) bool {
	rec, ok := c.records[id]
	return ok && rec.running
}

// Len returns the number of live records.
func (c *Controller) Len() int {
	return len(c.records)
}

// arm starts the clock on rec for its remaining time.
func (c *Controller) arm(id string, rec *record) {
	c.seq++
	gen := c.seq
	rec.gen = gen
	rec.startedAt = c.clock.Now()
	rec.running = true
	rec.handle = c.clock.AfterFunc(rec.remaining, func() {
		if c.onFire != nil {
			c.onFire(id, gen)
		}
	})
}

// disarm stops the pending callback and invalidates its generation.
func (c *Controller) disarm(rec *record) {
	if rec.handle != nil {
		rec.handle.Stop()
		rec.handle = nil
	}
	c.seq++
	rec.gen = c.seq
}
