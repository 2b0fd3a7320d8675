// Package gesture interprets pointer drags on a toast as swipe-to-dismiss.
//
// A Handler is created per visible toast. Pressing pauses the toast's
// countdown; releasing past the commit distance dismisses it, anything else
// (including a cancelled pointer) restores the countdown.
package gesture

import "math"

// Default tuning, in host units (pixels for pointer hosts).
const (
	DefaultCommitDistance = 80.0
	DefaultVerticalRatio  = 1.2
	DefaultVerticalSlop   = 8.0
)

// Config tunes the drag heuristics.
type Config struct {
	// CommitDistance is the horizontal offset past which a release dismisses.
	CommitDistance float64
	// A move is treated as vertical scroll when |dy| > |dx|*VerticalRatio
	// and |dy| > VerticalSlop.
	VerticalRatio float64
	VerticalSlop  float64
}

// DefaultConfig returns the default drag tuning.
func DefaultConfig() Config {
	return Config{
		CommitDistance: DefaultCommitDistance,
		VerticalRatio:  DefaultVerticalRatio,
		VerticalSlop:   DefaultVerticalSlop,
	}
}

// Target is what a gesture acts on, usually the registry.
type Target interface {
	Pause(id string)
	Resume(id string)
	Dismiss(id string)
}

// State is the drag state of a handler.
type State int

const (
	StateIdle State = iota
	StateDragging
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Outcome is the result of ending a drag.
type Outcome int

const (
	// OutcomeNone means there was no drag to end.
	OutcomeNone Outcome = iota
	// OutcomeCommitted means the toast was dismissed.
	OutcomeCommitted
	// OutcomeRestored means the offset was reset and the countdown resumed.
	OutcomeRestored
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeCommitted:
		return "committed"
	case OutcomeRestored:
		return "restored"
	default:
		return "unknown"
	}
}

// Handler tracks one toast's drag and hover state.
type Handler struct {
	id     string
	target Target
	cfg    Config

	state    State
	startX   float64
	startY   float64
	offset   float64
	hovering bool
}

// NewHandler creates a handler for the toast id.
func NewHandler(id string, target Target, cfg Config) *Handler {
	if cfg.CommitDistance <= 0 {
		cfg.CommitDistance = DefaultCommitDistance
	}
	if cfg.VerticalRatio <= 0 {
		cfg.VerticalRatio = DefaultVerticalRatio
	}
	if cfg.VerticalSlop < 0 {
		cfg.VerticalSlop = DefaultVerticalSlop
	}
	return &Handler{id: id, target: target, cfg: cfg}
}

// ID returns the toast id the handler acts on.
func (h *Handler) ID() string { return h.id }

// State returns the current drag state.
func (h *Handler) State() State { return h.state }

// Offset returns the horizontal offset used for visual feedback.
func (h *Handler) Offset() float64 { return h.offset }

// SetConfig replaces the tuning. It takes effect on the next move or release.
func (h *Handler) SetConfig(cfg Config) {
	h.cfg = NewHandler(h.id, h.target, cfg).cfg
}

// PointerDown starts a drag at (x, y) and pauses the countdown.
func (h *Handler) PointerDown(x, y float64) {
	if h.state == StateDragging {
		return
	}
	h.state = StateDragging
	h.startX = x
	h.startY = y
	h.offset = 0
	h.target.Pause(h.id)
}

// PointerMove updates the offset while dragging and returns it.
// Predominantly vertical motion leaves the offset where it was.
func (h *Handler) PointerMove(x, y float64) float64 {
	if h.state != StateDragging {
		return h.offset
	}

	dx := x - h.startX
	dy := y - h.startY
	if h.isVertical(dx, dy) {
		return h.offset
	}
	h.offset = dx
	return h.offset
}

// PointerUp ends the drag, dismissing if the offset passed the commit distance.
func (h *Handler) PointerUp() Outcome {
	if h.state != StateDragging {
		return OutcomeNone
	}
	h.state = StateIdle

	if math.Abs(h.offset) > h.cfg.CommitDistance {
		h.target.Dismiss(h.id)
		return OutcomeCommitted
	}

	h.offset = 0
	h.target.Resume(h.id)
	return OutcomeRestored
}

// PointerCancel ends the drag without dismissing. The countdown always resumes.
func (h *Handler) PointerCancel() Outcome {
	if h.state != StateDragging {
		return OutcomeNone
	}
	h.state = StateIdle
	h.offset = 0
	h.target.Resume(h.id)
	return OutcomeRestored
}

// HoverEnter pauses the countdown while the pointer rests on the toast.
func (h *Handler) HoverEnter() {
	if h.hovering {
		return
	}
	h.hovering = true
	h.target.Pause(h.id)
}

// HoverLeave resumes the countdown, unless a drag is still in progress;
// the drag's release resumes it instead.
func (h *Handler) HoverLeave() {
	if !h.hovering {
		return
	}
	h.hovering = false
	if h.state == StateDragging {
		return
	}
	h.target.Resume(h.id)
}

func (h *Handler) isVertical(dx, dy float64) bool {
	ady := math.Abs(dy)
	return ady > math.Abs(dx)*h.cfg.VerticalRatio && ady > h.cfg.VerticalSlop
}
