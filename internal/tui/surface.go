package tui

import (
	"runtime"
	"sync"

	"github.com/smartbotics/automate-web/internal/model/chat"
	"github.com/smartbotics/automate-web/internal/model/page"
	"github.com/smartbotics/automate-web/internal/widget"
)

// Terminal cells are mapped to CSS px so the widget's breakpoints keep
// their meaning.
const (
	cellWidth  = 8
	cellHeight = 16
)

// UserAgent identifies the terminal widget in chat requests.
var UserAgent = "automate-web-tui/1.0 (" + runtime.GOOS + "; " + runtime.GOARCH + ")"

// Surface is the terminal page. The controller writes to it from any
// goroutine; the bubbletea model reads it back through snapshots.
type Surface struct {
	mu      sync.Mutex
	updates chan struct{}

	cols, rows   int
	fragment     string
	scrollLocked bool

	windowActive bool
	windowHeight int
	toggleActive bool

	inputValue   string
	inputDirty   bool
	inputHeight  int
	scrollHeight int
	focus        bool
	sendDisabled bool

	turns  []chat.Turn
	typing int
	scroll bool
}

// NewSurface creates a surface reporting fragment as the URL fragment.
func NewSurface(fragment string) *Surface {
	return &Surface{
		fragment: fragment,
		updates:  make(chan struct{}, 1),
	}
}

// Updates signals that the surface changed since the last snapshot.
func (s *Surface) Updates() <-chan struct{} {
	return s.updates
}

func (s *Surface) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

func (s *Surface) change(f func()) {
	s.mu.Lock()
	f()
	s.mu.Unlock()
	s.notify()
}

// Elements returns the widget affordances backed by this surface.
func (s *Surface) Elements() widget.Elements {
	return widget.Elements{
		Toggle:   toggleButton{s},
		Window:   window{s},
		Close:    trigger("close"),
		Form:     trigger("form"),
		Input:    input{s},
		Messages: messages{s},
		Send:     sendButton{s},
	}
}

func (s *Surface) SetSize(cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cols, s.rows = cols, rows
}

// SetInput records the textarea content after a local edit.
func (s *Surface) SetInput(value string, lines int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputValue = value
	s.scrollHeight = lines * cellHeight
}

func (s *Surface) ViewportWidth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cols * cellWidth
}

func (s *Surface) ViewportHeight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows * cellHeight
}

func (s *Surface) Fragment() string {
	return s.fragment
}

func (s *Surface) UserAgent() string {
	return UserAgent
}

// Sections is empty: a terminal has no page layout to report.
func (s *Surface) Sections() []page.Section {
	return nil
}

func (s *Surface) SetScrollLocked(locked bool) {
	s.change(func() { s.scrollLocked = locked })
}

// frame is a snapshot of the surface for one render.
type frame struct {
	windowActive bool
	windowHeight int
	toggleActive bool
	scrollLocked bool

	inputValue   string
	inputDirty   bool
	inputHeight  int
	focus        bool
	sendDisabled bool

	turns  []chat.Turn
	typing bool
	scroll bool
}

// take snapshots the surface and consumes one-shot requests (focus, scroll,
// input reset).
func (s *Surface) take() frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := frame{
		windowActive: s.windowActive,
		windowHeight: s.windowHeight,
		toggleActive: s.toggleActive,
		scrollLocked: s.scrollLocked,
		inputValue:   s.inputValue,
		inputDirty:   s.inputDirty,
		inputHeight:  s.inputHeight,
		focus:        s.focus,
		sendDisabled: s.sendDisabled,
		turns:        append([]chat.Turn(nil), s.turns...),
		typing:       s.typing > 0,
		scroll:       s.scroll,
	}
	s.inputDirty, s.focus, s.scroll = false, false, false
	return f
}

type trigger string

func (t trigger) ID() string { return string(t) }

type toggleButton struct{ s *Surface }

func (b toggleButton) SetActive(active bool) {
	b.s.change(func() { b.s.toggleActive = active })
}

type window struct{ s *Surface }

func (w window) SetActive(active bool) {
	w.s.change(func() { w.s.windowActive = active })
}

func (w window) SetHeight(px int) {
	w.s.change(func() { w.s.windowHeight = px })
}

type input struct{ s *Surface }

func (i input) Value() string {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()
	return i.s.inputValue
}

func (i input) SetValue(v string) {
	i.s.change(func() {
		i.s.inputValue = v
		i.s.inputDirty = true
	})
}

func (i input) Focus() {
	i.s.change(func() { i.s.focus = true })
}

func (i input) SetHeight(px int) {
	i.s.change(func() { i.s.inputHeight = px })
}

func (i input) ScrollHeight() int {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()
	return i.s.scrollHeight
}

type messages struct{ s *Surface }

func (m messages) Append(turn chat.Turn) {
	m.s.change(func() { m.s.turns = append(m.s.turns, turn) })
}

func (m messages) AppendTyping() {
	m.s.change(func() { m.s.typing++ })
}

func (m messages) RemoveTyping() bool {
	removed := false
	m.s.change(func() {
		if m.s.typing > 0 {
			m.s.typing--
			removed = true
		}
	})
	return removed
}

func (m messages) ScrollToBottom() {
	m.s.change(func() { m.s.scroll = true })
}

type sendButton struct{ s *Surface }

func (b sendButton) SetDisabled(disabled bool) {
	b.s.change(func() { b.s.sendDisabled = disabled })
}
