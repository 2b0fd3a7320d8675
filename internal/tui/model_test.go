package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toasty/internal/clock"
	"github.com/jmylchreest/toasty/internal/model"
	"github.com/jmylchreest/toasty/internal/registry"
)

type harness struct {
	reg *registry.Registry
	clk *clock.Fake
	m   Model
}

func newHarness(t *testing.T, position model.Position) *harness {
	t.Helper()
	clk := clock.NewFake(time.Unix(1700000000, 0))
	reg := registry.New(registry.Options{Max: 5, Clock: clk})
	t.Cleanup(reg.Close)

	opts := DefaultOptions()
	opts.Now = clk.Now
	return &harness{reg: reg, clk: clk, m: New(reg, position, opts)}
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

// push adds a toast and sizes the screen to 80x24.
func (h *harness) push(opts model.Options) string {
	id := h.reg.Push(opts)
	h.send(tea.WindowSizeMsg{Width: 80, Height: 24})
	h.send(eventMsg{})
	return id
}

func (h *harness) mouse(action tea.MouseAction, x, y int) {
	h.send(tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft})
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestLayout_TopRight(t *testing.T) {
	h := newHarness(t, model.PositionTopRight)
	id := h.push(model.Options{Title: "Saved", Description: "All good"})

	boxes := h.m.layout()
	require.Len(t, boxes, 1)
	b := boxes[0]
	assert.Equal(t, id, b.id)
	assert.Equal(t, 0, b.y)
	assert.Equal(t, cardWidth, b.w)
	assert.Equal(t, 80-cardWidth-edgeMargin, b.x)
	assert.Equal(t, b.x+b.w-3, b.closeX)
	assert.Equal(t, -1, b.actionY)
}

func TestLayout_BottomAnchorsAboveFooter(t *testing.T) {
	h := newHarness(t, model.PositionBottomLeft)
	h.push(model.Options{Title: "Saved"})

	boxes := h.m.layout()
	require.Len(t, boxes, 1)
	assert.Equal(t, h.m.area(), boxes[0].y+boxes[0].h)
	assert.Equal(t, edgeMargin, boxes[0].x)
}

func TestLayout_NewestNearestEdge(t *testing.T) {
	h := newHarness(t, model.PositionTopCenter)
	first := h.push(model.Options{Title: "first"})
	second := h.push(model.Options{Title: "second"})

	boxes := h.m.layout()
	require.Len(t, boxes, 2)
	assert.Equal(t, second, boxes[0].id)
	assert.Equal(t, first, boxes[1].id)

	h = newHarness(t, model.PositionBottomCenter)
	first = h.push(model.Options{Title: "first"})
	second = h.push(model.Options{Title: "second"})

	boxes = h.m.layout()
	require.Len(t, boxes, 2)
	assert.Equal(t, first, boxes[0].id)
	assert.Equal(t, second, boxes[1].id)
}

func TestMouse_DragPastCommitDismisses(t *testing.T) {
	h := newHarness(t, model.PositionTopRight)
	id := h.push(model.Options{Title: "Saved", Description: "All good"})

	h.mouse(tea.MouseActionPress, 50, 2)
	assert.True(t, h.reg.Paused(id))

	h.mouse(tea.MouseActionMotion, 61, 2)
	h.mouse(tea.MouseActionRelease, 61, 2)

	assert.Equal(t, 0, h.reg.Len())
	assert.Empty(t, h.m.handlers)
}

func TestMouse_ShortDragRestores(t *testing.T) {
	h := newHarness(t, model.PositionTopRight)
	id := h.push(model.Options{Title: "Saved", Description: "All good"})

	h.mouse(tea.MouseActionPress, 50, 2)
	h.clk.Advance(10 * time.Second)
	h.mouse(tea.MouseActionMotion, 60, 2)
	h.mouse(tea.MouseActionRelease, 60, 2)

	_, ok := h.reg.Get(id)
	require.True(t, ok)
	assert.False(t, h.reg.Paused(id))
	remaining, _ := h.reg.Remaining(id)
	assert.Equal(t, model.DefaultDuration, remaining)
	assert.Zero(t, h.m.handlers[id].Offset())
}

func TestMouse_VerticalMoveIgnored(t *testing.T) {
	h := newHarness(t, model.PositionTopRight)
	id := h.push(model.Options{Title: "Saved", Description: "All good"})

	h.mouse(tea.MouseActionPress, 50, 2)
	h.mouse(tea.MouseActionMotion, 52, 12)
	assert.Zero(t, h.m.handlers[id].Offset())

	h.mouse(tea.MouseActionRelease, 52, 12)
	_, ok := h.reg.Get(id)
	assert.True(t, ok)
}

func TestMouse_HoverPausesAndLeaveResumes(t *testing.T) {
	h := newHarness(t, model.PositionTopRight)
	id := h.push(model.Options{Title: "Saved", Description: "All good"})

	h.mouse(tea.MouseActionMotion, 50, 2)
	assert.True(t, h.reg.Paused(id))
	assert.Equal(t, id, h.m.hovered)

	h.clk.Advance(time.Minute)
	_, ok := h.reg.Get(id)
	require.True(t, ok)

	h.mouse(tea.MouseActionMotion, 0, 20)
	assert.False(t, h.reg.Paused(id))
	assert.Empty(t, h.m.hovered)
}

func TestMouse_ReleaseOverCardResumes(t *testing.T) {
	h := newHarness(t, model.PositionTopRight)
	id := h.push(model.Options{Title: "Saved", Description: "All good"})

	h.mouse(tea.MouseActionMotion, 50, 2)
	require.True(t, h.reg.Paused(id))
	h.mouse(tea.MouseActionPress, 50, 2)
	h.mouse(tea.MouseActionMotion, 52, 2)
	h.mouse(tea.MouseActionRelease, 52, 2)

	assert.False(t, h.reg.Paused(id))
	assert.Equal(t, id, h.m.hovered)

	// Leaving and entering again pauses on the fresh enter
	h.mouse(tea.MouseActionMotion, 0, 20)
	assert.False(t, h.reg.Paused(id))
	h.mouse(tea.MouseActionMotion, 50, 2)
	assert.True(t, h.reg.Paused(id))
}

func TestMouse_ShortDragExpiresAfterRelease(t *testing.T) {
	h := newHarness(t, model.PositionTopRight)
	id := h.push(model.Options{Title: "Saved", Duration: model.DurationOf(time.Second)})

	h.mouse(tea.MouseActionPress, 50, 2)
	h.mouse(tea.MouseActionMotion, 52, 2)
	h.clk.Advance(400 * time.Millisecond)
	h.mouse(tea.MouseActionRelease, 52, 2)

	remaining, ok := h.reg.Remaining(id)
	require.True(t, ok)
	assert.Equal(t, time.Second, remaining)

	h.clk.Advance(999 * time.Millisecond)
	_, ok = h.reg.Get(id)
	assert.True(t, ok)

	h.clk.Advance(time.Millisecond)
	_, ok = h.reg.Get(id)
	assert.False(t, ok)
}

func TestMouse_HoverDisabled(t *testing.T) {
	h := newHarness(t, model.PositionTopRight)
	id := h.push(model.Options{Title: "Saved"})
	h.send(optionsMsg{gesture: h.m.opts.Gesture, pauseOnHover: false})

	h.mouse(tea.MouseActionMotion, 50, 2)
	assert.False(t, h.reg.Paused(id))
}

func TestMouse_DisablingHoverResumes(t *testing.T) {
	h := newHarness(t, model.PositionTopRight)
	id := h.push(model.Options{Title: "Saved"})

	h.mouse(tea.MouseActionMotion, 50, 2)
	require.True(t, h.reg.Paused(id))

	h.send(optionsMsg{gesture: h.m.opts.Gesture, pauseOnHover: false})
	assert.False(t, h.reg.Paused(id))
}

func TestMouse_CloseGlyphDismisses(t *testing.T) {
	h := newHarness(t, model.PositionTopRight)
	h.push(model.Options{Title: "Saved"})

	b := h.m.layout()[0]
	h.mouse(tea.MouseActionPress, b.closeX, b.y+1)
	assert.Equal(t, 0, h.reg.Len())
}

func TestMouse_CloseGlyphHiddenWhenNotDismissible(t *testing.T) {
	h := newHarness(t, model.PositionTopRight)
	id := h.push(model.Options{Title: "Sticky", Dismissible: model.BoolOf(false)})

	b := h.m.layout()[0]
	h.mouse(tea.MouseActionPress, b.closeX, b.y+1)
	h.mouse(tea.MouseActionRelease, b.closeX, b.y+1)

	_, ok := h.reg.Get(id)
	assert.True(t, ok)
}

func TestMouse_ActionRowInvokes(t *testing.T) {
	h := newHarness(t, model.PositionTopRight)
	var invoked string
	id := h.push(model.Options{
		Title:  "New Message",
		Action: &model.Action{Label: "Reply", OnClick: func(id string) { invoked = id }},
	})

	b := h.m.layout()[0]
	require.GreaterOrEqual(t, b.actionY, 0)
	h.mouse(tea.MouseActionPress, b.x+4, b.actionY)

	assert.Equal(t, id, invoked)
	_, ok := h.reg.Get(id)
	assert.True(t, ok)
}

func TestKeys(t *testing.T) {
	t.Run("dismiss selected", func(t *testing.T) {
		h := newHarness(t, model.PositionTopRight)
		first := h.push(model.Options{Title: "first"})
		second := h.push(model.Options{Title: "second"})
		require.Equal(t, first, h.m.selected)

		h.send(keyMsg("d"))
		require.Equal(t, 1, h.reg.Len())
		_, ok := h.reg.Get(first)
		assert.False(t, ok)
		assert.Equal(t, second, h.m.selected)
	})

	t.Run("clear", func(t *testing.T) {
		h := newHarness(t, model.PositionTopRight)
		h.push(model.Options{Title: "first"})
		h.push(model.Options{Title: "second"})

		h.send(keyMsg("D"))
		assert.Equal(t, 0, h.reg.Len())
	})

	t.Run("invoke", func(t *testing.T) {
		h := newHarness(t, model.PositionTopRight)
		calls := 0
		h.push(model.Options{
			Title:  "New Message",
			Action: &model.Action{Label: "Reply", OnClick: func(string) { calls++ }},
		})

		h.send(keyMsg("enter"))
		assert.Equal(t, 1, calls)
	})

	t.Run("invoke without action", func(t *testing.T) {
		h := newHarness(t, model.PositionTopRight)
		h.push(model.Options{Title: "plain"})

		cmd := h.send(keyMsg("enter"))
		require.NotNil(t, cmd)
		assert.Equal(t, statusMsg{text: "No action on this toast"}, cmd())
	})

	t.Run("pause toggles", func(t *testing.T) {
		h := newHarness(t, model.PositionTopRight)
		id := h.push(model.Options{Title: "first"})

		h.send(keyMsg("p"))
		assert.True(t, h.reg.Paused(id))
		h.send(keyMsg("p"))
		assert.False(t, h.reg.Paused(id))
	})

	t.Run("selection wraps", func(t *testing.T) {
		h := newHarness(t, model.PositionTopRight)
		first := h.push(model.Options{Title: "first"})
		second := h.push(model.Options{Title: "second"})
		require.Equal(t, first, h.m.selected)

		h.send(keyMsg("j"))
		assert.Equal(t, second, h.m.selected)
		h.send(keyMsg("k"))
		assert.Equal(t, first, h.m.selected)
	})
}

func TestView(t *testing.T) {
	h := newHarness(t, model.PositionTopRight)
	id := h.push(model.Options{Title: "Download Complete", AppName: "Firefox"})
	h.reg.Pause(id)

	view := h.m.View()
	assert.Contains(t, view, "Download Complete")
	assert.Contains(t, view, "Firefox")
	assert.Contains(t, view, "paused")
	assert.Contains(t, view, "1 active")
}

func TestView_EmptyBeforeResize(t *testing.T) {
	h := newHarness(t, model.PositionTopRight)
	h.reg.Push(model.Options{Title: "early"})
	assert.Empty(t, h.m.View())
}

func TestEvents(t *testing.T) {
	h := newHarness(t, model.PositionTopRight)
	h.m.events = h.reg.Subscribe()

	cmd := h.m.waitForEvent()
	id := h.reg.Push(model.Options{Title: "via event"})
	msg := cmd()
	require.IsType(t, eventMsg{}, msg)
	assert.Equal(t, id, msg.(eventMsg).Item.ID)

	next := h.send(msg)
	require.NotNil(t, next)
	require.Len(t, h.m.items, 1)

	h.reg.Close()
	for {
		msg = h.m.waitForEvent()()
		if _, ok := msg.(registryClosedMsg); ok {
			break
		}
	}
	cmd = h.send(msg)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
