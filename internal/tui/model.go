// Package tui provides the BubbleTea-based terminal host that renders live
// toasts and turns mouse input into gesture and hover events.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/toasty/internal/gesture"
	"github.com/jmylchreest/toasty/internal/model"
	"github.com/jmylchreest/toasty/internal/registry"
)

// Layout constants, in terminal cells.
const (
	cardWidth    = 44 // including border
	innerWidth   = cardWidth - 4
	edgeMargin   = 1
	tickInterval = 100 * time.Millisecond
)

// Registry is the part of the toast registry the terminal host drives.
// *registry.Registry satisfies it.
type Registry interface {
	gesture.Target
	Items() []model.Item
	Remaining(id string) (time.Duration, bool)
	Duration(id string) time.Duration
	Paused(id string) bool
	Remove(id string)
	Clear()
	Invoke(id string) bool
}

// Options configures the terminal host.
type Options struct {
	Gesture      gesture.Config
	PauseOnHover bool

	// Size of one terminal cell in gesture units.
	CellWidth  float64
	CellHeight float64

	// Now is the clock used for ages (default time.Now).
	Now func() time.Time
}

// DefaultOptions returns the default host options.
func DefaultOptions() Options {
	return Options{
		Gesture:      gesture.DefaultConfig(),
		PauseOnHover: true,
		CellWidth:    8,
		CellHeight:   16,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.CellWidth <= 0 {
		o.CellWidth = d.CellWidth
	}
	if o.CellHeight <= 0 {
		o.CellHeight = d.CellHeight
	}
	if o.Gesture == (gesture.Config{}) {
		o.Gesture = d.Gesture
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Model is the terminal host's BubbleTea model.
type Model struct {
	reg      Registry
	position model.Position
	opts     Options
	events   <-chan registry.Event

	items    []model.Item
	handlers map[string]*gesture.Handler
	dragging string
	hovered  string
	selected string

	keys     KeyMap
	help     help.Model
	progress map[model.Variant]progress.Model

	width  int
	height int

	statusMsg string
	statusErr bool
}

// New creates a Model for reg rendered at position.
func New(reg Registry, position model.Position, opts Options) Model {
	opts = opts.withDefaults()

	bars := make(map[model.Variant]progress.Model, len(model.ValidVariants()))
	for _, v := range model.ValidVariants() {
		bars[v] = progress.New(
			progress.WithSolidFill(string(variantColor(v))),
			progress.WithoutPercentage(),
			progress.WithWidth(innerWidth),
		)
	}

	m := Model{
		reg:      reg,
		position: position,
		opts:     opts,
		handlers: make(map[string]*gesture.Handler),
		keys:     DefaultKeyMap(),
		help:     help.New(),
		progress: bars,
	}
	m.refresh()
	return m
}

type eventMsg registry.Event

type registryClosedMsg struct{}

type tickMsg time.Time

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

// optionsMsg swaps gesture and hover settings at runtime.
type optionsMsg struct {
	gesture      gesture.Config
	pauseOnHover bool
}

// Init starts the refresh tick and the registry event wait.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), m.waitForEvent())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForEvent blocks on the registry subscription.
func (m Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return registryClosedMsg{}
		}
		return eventMsg(ev)
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case eventMsg:
		m.refresh()
		return m, m.waitForEvent()

	case registryClosedMsg:
		return m, tea.Quit

	case tickMsg:
		m.refresh()
		return m, tick()

	case optionsMsg:
		if m.opts.PauseOnHover && !msg.pauseOnHover && m.hovered != "" {
			m.handler(m.hovered).HoverLeave()
		}
		m.opts.Gesture = msg.gesture
		m.opts.PauseOnHover = msg.pauseOnHover
		for _, h := range m.handlers {
			h.SetConfig(msg.gesture)
		}
		return m, nil

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, status("Copy failed: "+msg.err.Error(), true)
		}
		return m, status("Copied to clipboard", false)
	}

	return m, nil
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// refresh reloads the live toasts and drops state for removed ones.
func (m *Model) refresh() {
	m.items = m.reg.Items()

	live := make(map[string]bool, len(m.items))
	for _, item := range m.items {
		live[item.ID] = true
	}
	for id := range m.handlers {
		if !live[id] {
			delete(m.handlers, id)
		}
	}
	if !live[m.dragging] {
		m.dragging = ""
	}
	if !live[m.hovered] {
		m.hovered = ""
	}
	if !live[m.selected] {
		m.selected = ""
		if ordered := m.ordered(); len(ordered) > 0 {
			m.selected = ordered[0].ID
		}
	}
}

func (m *Model) handler(id string) *gesture.Handler {
	h, ok := m.handlers[id]
	if !ok {
		h = gesture.NewHandler(id, m.reg, m.opts.Gesture)
		m.handlers[id] = h
	}
	return h
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.reg.Clear()
		m.refresh()
		return m, status("All toasts cleared", false)
	}

	if m.selected == "" {
		return m, nil
	}
	id := m.selected

	switch {
	case key.Matches(msg, m.keys.Dismiss):
		m.reg.Dismiss(id)
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Invoke):
		if !m.reg.Invoke(id) {
			return m, status("No action on this toast", false)
		}
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Pause):
		if m.reg.Paused(id) {
			m.reg.Resume(id)
		} else {
			m.reg.Pause(id)
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		for _, item := range m.items {
			if item.ID == id {
				return m, copyCmd(strings.TrimSpace(item.Title + "\n" + item.Description))
			}
		}
	}

	return m, nil
}

func (m *Model) moveSelection(delta int) {
	ordered := m.ordered()
	if len(ordered) == 0 {
		return
	}
	idx := 0
	for i, item := range ordered {
		if item.ID == m.selected {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(ordered)) % len(ordered)
	m.selected = ordered[idx].ID
}

// handleMouse routes pointer input to the card under the pointer. A press
// on the close glyph dismisses, a press on the action row invokes, and any
// other press starts a drag.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	px := float64(msg.X) * m.opts.CellWidth
	py := float64(msg.Y) * m.opts.CellHeight

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		box, ok := m.hit(msg.X, msg.Y)
		if !ok {
			return m, nil
		}
		m.selected = box.id

		switch {
		case box.dismissible && msg.Y == box.y+1 && msg.X == box.closeX:
			m.reg.Dismiss(box.id)
			m.refresh()
		case box.actionY >= 0 && msg.Y == box.actionY:
			m.reg.Invoke(box.id)
			m.refresh()
		default:
			m.handler(box.id).PointerDown(px, py)
			m.dragging = box.id
			m.holdHover(box.id)
		}
		return m, nil

	case tea.MouseActionMotion:
		if m.dragging != "" {
			m.handler(m.dragging).PointerMove(px, py)
			return m, nil
		}
		m.updateHover(msg.X, msg.Y)
		return m, nil

	case tea.MouseActionRelease:
		if m.dragging == "" {
			return m, nil
		}
		id := m.dragging
		m.dragging = ""
		if m.handler(id).PointerUp() == gesture.OutcomeCommitted {
			m.refresh()
			return m, nil
		}
		// The release always resumes. Hover pauses again only on a fresh
		// enter, so a pointer resting on the card leaves it running.
		m.updateHover(msg.X, msg.Y)
		return m, nil
	}

	return m, nil
}

// holdHover marks id as the hovered card without pausing it; the drag
// already holds the countdown.
func (m *Model) holdHover(id string) {
	if m.hovered == id {
		return
	}
	if m.hovered != "" && m.opts.PauseOnHover {
		m.handler(m.hovered).HoverLeave()
	}
	m.hovered = id
}

func (m *Model) updateHover(x, y int) {
	id := ""
	if box, ok := m.hit(x, y); ok {
		id = box.id
	}
	if id == m.hovered {
		return
	}

	if m.hovered != "" && m.opts.PauseOnHover {
		m.handler(m.hovered).HoverLeave()
	}
	m.hovered = id
	if id != "" && m.opts.PauseOnHover {
		m.handler(id).HoverEnter()
	}
}

// ordered returns the toasts in display order: the newest is always
// nearest the anchored edge.
func (m Model) ordered() []model.Item {
	out := make([]model.Item, len(m.items))
	copy(out, m.items)
	if !m.position.IsBottom() {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// box is a rendered card and its screen rectangle.
type box struct {
	id          string
	x, y        int
	w, h        int
	lines       []string
	dismissible bool
	closeX      int
	actionY     int // -1 when the toast has no action
}

// layout renders every card and positions it on screen.
func (m Model) layout() []box {
	area := m.area()
	if m.width <= 0 || area <= 0 {
		return nil
	}

	now := m.opts.Now()
	ordered := m.ordered()
	boxes := make([]box, 0, len(ordered))
	for _, item := range ordered {
		boxes = append(boxes, m.renderCard(item, now))
	}

	total := 0
	for _, b := range boxes {
		total += b.h
	}

	y := 0
	if m.position.IsBottom() {
		y = area - total
	}

	visible := boxes[:0]
	for _, b := range boxes {
		b.y = y
		y += b.h
		if b.y < 0 || b.y+b.h > area {
			continue
		}
		b.x = m.cardX(b)
		b.closeX = b.x + b.w - 3
		if b.actionY >= 0 {
			b.actionY += b.y
		}
		visible = append(visible, b)
	}
	return visible
}

func (m Model) cardX(b box) int {
	var x int
	switch m.position {
	case model.PositionTopLeft, model.PositionBottomLeft:
		x = edgeMargin
	case model.PositionTopCenter, model.PositionBottomCenter:
		x = (m.width - b.w) / 2
	default:
		x = m.width - b.w - edgeMargin
	}

	if h, ok := m.handlers[b.id]; ok {
		x += int(h.Offset() / m.opts.CellWidth)
	}
	return max(0, min(x, m.width-b.w))
}

func (m Model) hit(x, y int) (box, bool) {
	for _, b := range m.layout() {
		if x >= b.x && x < b.x+b.w && y >= b.y && y < b.y+b.h {
			return b, true
		}
	}
	return box{}, false
}

// renderCard renders one toast. Rows inside the card are offset by one for
// the top border.
func (m Model) renderCard(item model.Item, now time.Time) box {
	var rows []string
	actionRow := -1

	title := item.Title
	if title == "" {
		title = string(item.Variant)
	}
	titleWidth := innerWidth - 2
	if lipgloss.Width(title) > titleWidth {
		title = truncate(title, titleWidth)
	}
	header := titleStyle.Foreground(variantColor(item.Variant)).Render(title)
	if item.Dismissible {
		gap := innerWidth - lipgloss.Width(header) - 1
		header += strings.Repeat(" ", max(1, gap)) + dimStyle.Render("✕")
	}
	rows = append(rows, header)

	if item.Description != "" {
		desc := item.DescriptionTruncated(innerWidth * 3)
		wrapped := lipgloss.NewStyle().Width(innerWidth).Render(desc)
		rows = append(rows, strings.Split(wrapped, "\n")...)
	}

	meta := item.Age(now)
	if item.AppName != "" {
		meta = item.AppName + " · " + meta
	}
	paused := m.reg.Paused(item.ID)
	if paused {
		meta += " · paused"
	}
	rows = append(rows, dimStyle.Render(meta))

	if item.Action != nil {
		actionRow = len(rows)
		rows = append(rows, actionStyle.Render("[ "+item.Action.Label+" ]"))
	}

	rows = append(rows, m.progressBar(item))

	style := cardStyle.BorderForeground(variantColor(item.Variant))
	if item.ID == m.selected {
		style = style.Border(lipgloss.ThickBorder())
	}
	if h, ok := m.handlers[item.ID]; ok && h.State() == gesture.StateDragging &&
		abs(h.Offset()) > m.opts.Gesture.CommitDistance {
		style = style.BorderForeground(lipgloss.Color("8")).Faint(true)
	}

	rendered := style.Render(strings.Join(rows, "\n"))
	lines := strings.Split(rendered, "\n")

	b := box{
		id:          item.ID,
		w:           lipgloss.Width(rendered),
		h:           len(lines),
		lines:       lines,
		dismissible: item.Dismissible,
		actionY:     -1,
	}
	if actionRow >= 0 {
		b.actionY = actionRow + 1
	}
	return b
}

func (m Model) progressBar(item model.Item) string {
	bar, ok := m.progress[item.Variant]
	if !ok {
		bar = m.progress[model.VariantDefault]
	}

	total := m.reg.Duration(item.ID)
	remaining, ok := m.reg.Remaining(item.ID)
	if !ok || total <= 0 {
		return bar.ViewAs(0)
	}
	return bar.ViewAs(float64(remaining) / float64(total))
}

// View renders the toasts over an empty screen.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	area := m.area()
	if area <= 0 {
		return m.footer()
	}

	rows := make([]string, area)
	for _, b := range m.layout() {
		pad := strings.Repeat(" ", b.x)
		for i, line := range b.lines {
			rows[b.y+i] = pad + line
		}
	}

	return strings.Join(rows, "\n") + "\n" + m.footer()
}

// area is the number of rows above the footer.
func (m Model) area() int {
	return m.height - lipgloss.Height(m.footer())
}

func (m Model) footer() string {
	if m.statusMsg != "" {
		style := statusStyle
		if m.statusErr {
			style = errorStyle
		}
		return style.Render(m.statusMsg)
	}
	if m.help.ShowAll {
		return m.help.FullHelpView(m.keys.FullHelp())
	}
	return m.help.ShortHelpView(m.keys.ShortHelp()) + dimStyle.Render(fmt.Sprintf("  %d active", len(m.items)))
}

// Styles.
var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(cardWidth - 2)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	actionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func variantColor(v model.Variant) lipgloss.Color {
	switch v {
	case model.VariantSuccess:
		return lipgloss.Color("10")
	case model.VariantWarning:
		return lipgloss.Color("11")
	case model.VariantDanger:
		return lipgloss.Color("9")
	default:
		return lipgloss.Color("12")
	}
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
