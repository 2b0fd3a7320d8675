package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type call struct {
	op string
	id string
}

type recorder struct {
	calls []call
}

func (r *recorder) Pause(id string)   { r.calls = append(r.calls, call{"pause", id}) }
func (r *recorder) Resume(id string)  { r.calls = append(r.calls, call{"resume", id}) }
func (r *recorder) Dismiss(id string) { r.calls = append(r.calls, call{"dismiss", id}) }

func (r *recorder) ops() []string {
	out := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c.op)
	}
	return out
}

func TestPointerDown_Pauses(t *testing.T) {
	rec := &recorder{}
	h := NewHandler("t1", rec, DefaultConfig())

	h.PointerDown(10, 10)
	assert.Equal(t, StateDragging, h.State())
	assert.Equal(t, []call{{"pause", "t1"}}, rec.calls)

	// A second press while dragging is ignored
	h.PointerDown(50, 50)
	assert.Len(t, rec.calls, 1)
}

func TestPointerUp_CommitThreshold(t *testing.T) {
	tests := []struct {
		name    string
		dx      float64
		want    Outcome
		wantOps []string
	}{
		{"just over right", 81, OutcomeCommitted, []string{"pause", "dismiss"}},
		{"just over left", -81, OutcomeCommitted, []string{"pause", "dismiss"}},
		{"exactly at distance", 80, OutcomeRestored, []string{"pause", "resume"}},
		{"short drag", 30, OutcomeRestored, []string{"pause", "resume"}},
		{"no movement", 0, OutcomeRestored, []string{"pause", "resume"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			h := NewHandler("t1", rec, DefaultConfig())

			h.PointerDown(100, 100)
			h.PointerMove(100+tt.dx, 100)
			got := h.PointerUp()

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOps, rec.ops())
			assert.Equal(t, StateIdle, h.State())
		})
	}
}

func TestPointerUp_RestoreResetsOffset(t *testing.T) {
	rec := &recorder{}
	h := NewHandler("t1", rec, DefaultConfig())

	h.PointerDown(0, 0)
	assert.Equal(t, 40.0, h.PointerMove(40, 2))
	h.PointerUp()
	assert.Equal(t, 0.0, h.Offset())
}

func TestPointerMove_VerticalIgnored(t *testing.T) {
	rec := &recorder{}
	h := NewHandler("t1", rec, DefaultConfig())

	h.PointerDown(0, 0)
	h.PointerMove(20, 0)
	assert.Equal(t, 20.0, h.Offset())

	// |dy|=100 > |dx|*1.2 and > 8: scroll, offset stays put
	assert.Equal(t, 20.0, h.PointerMove(10, 100))

	// Small vertical jitter below the slop still moves horizontally
	assert.Equal(t, 5.0, h.PointerMove(5, 7))

	// A long vertical drag never commits
	h.PointerMove(0, 400)
	assert.Equal(t, OutcomeRestored, h.PointerUp())
	assert.NotContains(t, rec.ops(), "dismiss")
}

func TestPointerMove_WithoutPressIsNoop(t *testing.T) {
	rec := &recorder{}
	h := NewHandler("t1", rec, DefaultConfig())

	assert.Equal(t, 0.0, h.PointerMove(200, 0))
	assert.Equal(t, OutcomeNone, h.PointerUp())
	assert.Empty(t, rec.calls)
}

func TestPointerCancel_AlwaysResumes(t *testing.T) {
	rec := &recorder{}
	h := NewHandler("t1", rec, DefaultConfig())

	h.PointerDown(0, 0)
	h.PointerMove(500, 0)
	assert.Equal(t, OutcomeRestored, h.PointerCancel())
	assert.Equal(t, []string{"pause", "resume"}, rec.ops())
	assert.Equal(t, 0.0, h.Offset())

	assert.Equal(t, OutcomeNone, h.PointerCancel())
	assert.Len(t, rec.calls, 2)
}

func TestHover_PausesAndResumes(t *testing.T) {
	rec := &recorder{}
	h := NewHandler("t1", rec, DefaultConfig())

	h.HoverEnter()
	h.HoverEnter()
	assert.True(t, h.hovering)
	h.HoverLeave()
	h.HoverLeave()

	assert.Equal(t, []string{"pause", "resume"}, rec.ops())
}

func TestHoverLeave_DuringDragDefersResume(t *testing.T) {
	rec := &recorder{}
	h := NewHandler("t1", rec, DefaultConfig())

	h.HoverEnter()
	h.PointerDown(0, 0)
	h.PointerMove(20, 0)
	h.HoverLeave()
	assert.Equal(t, []string{"pause", "pause"}, rec.ops(), "leave while dragging must not resume")

	h.PointerUp()
	assert.Equal(t, []string{"pause", "pause", "resume"}, rec.ops())
}

func TestNewHandler_FillsInvalidConfig(t *testing.T) {
	h := NewHandler("t1", &recorder{}, Config{})
	assert.Equal(t, DefaultCommitDistance, h.cfg.CommitDistance)
	assert.Equal(t, DefaultVerticalRatio, h.cfg.VerticalRatio)
	assert.Equal(t, 0.0, h.cfg.VerticalSlop)

	h.SetConfig(Config{CommitDistance: 20, VerticalRatio: 2, VerticalSlop: -1})
	assert.Equal(t, 20.0, h.cfg.CommitDistance)
	assert.Equal(t, DefaultVerticalSlop, h.cfg.VerticalSlop)
}

func TestStateAndOutcomeStrings(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "dragging", StateDragging.String())
	assert.Equal(t, "committed", OutcomeCommitted.String())
	assert.Equal(t, "restored", OutcomeRestored.String())
	assert.Equal(t, "none", OutcomeNone.String())
}
