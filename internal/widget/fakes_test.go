package widget

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/smartbotics/automate-web/internal/model/chat"
	"github.com/smartbotics/automate-web/internal/model/page"
)

// manualScheduler fires callbacks only when the test advances time.
type manualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []scheduled
}

type scheduled struct {
	at  time.Duration
	seq int
	f   func()
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.pending = append(s.pending, scheduled{at: s.now + d, seq: s.seq, f: f})
}

// Advance moves the clock forward, running due callbacks in order. Callbacks
// scheduled while advancing run too if they fall inside the window.
func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		sort.Slice(s.pending, func(i, j int) bool {
			if s.pending[i].at == s.pending[j].at {
				return s.pending[i].seq < s.pending[j].seq
			}
			return s.pending[i].at < s.pending[j].at
		})
		if len(s.pending) == 0 || s.pending[0].at > target {
			s.now = target
			s.mu.Unlock()
			return
		}
		next := s.pending[0]
		s.pending = s.pending[1:]
		s.now = next.at
		s.mu.Unlock()

		next.f()
	}
}

// fakePage implements every affordance and the environment.
type fakePage struct {
	mu sync.Mutex

	width, height int
	fragment      string
	userAgent     string
	sections      []page.Section
	scrollLocked  bool

	windowActive bool
	windowHeight int
	toggleActive bool

	inputValue   string
	inputHeight  int
	scrollHeight int
	focusCount   int
	sendDisabled bool

	rendered   []chat.Turn
	typing     int
	typingSeen int
	scrolls    int
}

func newFakePage(width, height int) *fakePage {
	return &fakePage{width: width, height: height, userAgent: "fake-agent/1.0", scrollHeight: 40}
}

type trigger string

func (t trigger) ID() string { return string(t) }

func (p *fakePage) elements() Elements {
	return Elements{
		Toggle:   toggleOf{p},
		Window:   windowOf{p},
		Close:    trigger("chatbotClose"),
		Form:     trigger("chatbotForm"),
		Input:    inputOf{p},
		Messages: messagesOf{p},
		Send:     sendOf{p},
	}
}

func (p *fakePage) ViewportWidth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width
}

func (p *fakePage) ViewportHeight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.height
}

func (p *fakePage) Fragment() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fragment
}

func (p *fakePage) UserAgent() string { return p.userAgent }

func (p *fakePage) Sections() []page.Section {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]page.Section(nil), p.sections...)
}

func (p *fakePage) SetScrollLocked(locked bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scrollLocked = locked
}

func (p *fakePage) typeText(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inputValue = text
}

// pageView is a point-in-time copy of the fake page's rendered state.
type pageView struct {
	windowActive bool
	windowHeight int
	toggleActive bool
	scrollLocked bool
	inputValue   string
	inputHeight  int
	focusCount   int
	sendDisabled bool
	rendered     []chat.Turn
	typing       int
	typingSeen   int
	scrolls      int
}

func (p *fakePage) snapshot() pageView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return pageView{
		windowActive: p.windowActive,
		windowHeight: p.windowHeight,
		toggleActive: p.toggleActive,
		scrollLocked: p.scrollLocked,
		inputValue:   p.inputValue,
		inputHeight:  p.inputHeight,
		focusCount:   p.focusCount,
		sendDisabled: p.sendDisabled,
		rendered:     append([]chat.Turn(nil), p.rendered...),
		typing:       p.typing,
		typingSeen:   p.typingSeen,
		scrolls:      p.scrolls,
	}
}

type toggleOf struct{ p *fakePage }

func (t toggleOf) SetActive(active bool) {
	t.p.mu.Lock()
	defer t.p.mu.Unlock()
	t.p.toggleActive = active
}

type windowOf struct{ p *fakePage }

func (w windowOf) SetActive(active bool) {
	w.p.mu.Lock()
	defer w.p.mu.Unlock()
	w.p.windowActive = active
}

func (w windowOf) SetHeight(px int) {
	w.p.mu.Lock()
	defer w.p.mu.Unlock()
	w.p.windowHeight = px
}

type inputOf struct{ p *fakePage }

func (i inputOf) Value() string {
	i.p.mu.Lock()
	defer i.p.mu.Unlock()
	return i.p.inputValue
}

func (i inputOf) SetValue(v string) {
	i.p.mu.Lock()
	defer i.p.mu.Unlock()
	i.p.inputValue = v
}

func (i inputOf) Focus() {
	i.p.mu.Lock()
	defer i.p.mu.Unlock()
	i.p.focusCount++
}

func (i inputOf) SetHeight(px int) {
	i.p.mu.Lock()
	defer i.p.mu.Unlock()
	i.p.inputHeight = px
}

func (i inputOf) ScrollHeight() int {
	i.p.mu.Lock()
	defer i.p.mu.Unlock()
	return i.p.scrollHeight
}

type messagesOf struct{ p *fakePage }

func (m messagesOf) Append(turn chat.Turn) {
	m.p.mu.Lock()
	defer m.p.mu.Unlock()
	m.p.rendered = append(m.p.rendered, turn)
}

func (m messagesOf) AppendTyping() {
	m.p.mu.Lock()
	defer m.p.mu.Unlock()
	m.p.typing++
	m.p.typingSeen++
}

func (m messagesOf) RemoveTyping() bool {
	m.p.mu.Lock()
	defer m.p.mu.Unlock()
	if m.p.typing == 0 {
		return false
	}
	m.p.typing--
	return true
}

func (m messagesOf) ScrollToBottom() {
	m.p.mu.Lock()
	defer m.p.mu.Unlock()
	m.p.scrolls++
}

type sendOf struct{ p *fakePage }

func (s sendOf) SetDisabled(disabled bool) {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	s.p.sendDisabled = disabled
}

// fakeSender answers with a canned reply or error and records requests.
type fakeSender struct {
	mu       sync.Mutex
	requests []chat.Request
	reply    string
	err      error
	gate     chan struct{}
}

func (s *fakeSender) Send(ctx context.Context, req chat.Request) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	gate := s.gate
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return s.reply, s.err
}

func (s *fakeSender) calls() []chat.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]chat.Request(nil), s.requests...)
}
