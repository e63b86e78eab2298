package widget

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/smartbotics/automate-web/internal/model/chat"
	"github.com/smartbotics/automate-web/internal/model/page"
	chatservice "github.com/smartbotics/automate-web/internal/service/chat"
	"github.com/smartbotics/automate-web/internal/service/session"
)

var (
	// ErrMissingAffordance is returned by Mount when the page lacks one of the
	// widget's elements. Callers treat it as "no widget on this page".
	ErrMissingAffordance = errors.New("widget: required affordance missing")

	errMissingCollaborator = errors.New("widget: environment and sender are required")
)

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// State is the open/closed state of the chat panel.
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Controller owns the chat widget of one page load. All state changes are
// serialized on mu, which stands in for the browser's UI thread; the HTTP
// exchange runs outside it so the page stays interactive.
type Controller struct {
	mu sync.Mutex

	el       Elements
	env      Environment
	sender   Sender
	sched    Scheduler
	now      func() time.Time
	opts     Options
	identity chat.Identity
	logger   zerolog.Logger

	state          State
	narrow         bool
	initialHeight  int
	manuallyOpened bool
	detached       bool
	transcript     []chat.Turn

	inflight sync.WaitGroup
}

// Mount wires a controller to the page and schedules the auto-open.
func Mount(el Elements, env Environment, sender Sender, opts ...Option) (*Controller, error) {
	if !el.complete() {
		return nil, ErrMissingAffordance
	}
	if env == nil || sender == nil {
		return nil, errMissingCollaborator
	}

	c := &Controller{
		el:     el,
		env:    env,
		sender: sender,
		sched:  TimerScheduler{},
		now:    time.Now,
		opts:   DefaultOptions(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.identity.SessionID == "" || c.identity.ConversationID == "" {
		c.identity = session.NewIdentity(c.now())
	}

	c.logger = log.With().
		Str("component", "widget").
		Str("session_id", c.identity.SessionID).
		Logger()

	// Back-navigation and keyboard handling are decided once, like the
	// listeners registered at page setup.
	c.narrow = env.ViewportWidth() <= c.opts.NarrowBreakpoint
	if c.narrow {
		c.initialHeight = env.ViewportHeight()
	}

	c.el.Send.SetDisabled(true)
	c.sched.AfterFunc(c.opts.AutoOpenDelay, c.autoOpen)

	c.logger.Debug().Bool("narrow", c.narrow).Msg("widget mounted")
	return c, nil
}

// Identity returns the identifiers generated at mount time.
func (c *Controller) Identity() chat.Identity {
	return c.identity
}

// State returns the current panel state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Transcript returns a copy of the rendered turns.
func (c *Controller) Transcript() []chat.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]chat.Turn(nil), c.transcript...)
}

// Toggle opens a closed widget and closes an open one.
func (c *Controller) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detached {
		return
	}
	if c.state == Open {
		c.closeLocked()
		return
	}
	c.manuallyOpened = true
	c.openLocked()
}

// Open shows the panel at the visitor's request.
func (c *Controller) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detached {
		return
	}
	c.manuallyOpened = true
	c.openLocked()
}

// Close hides the panel. The transcript is left untouched.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detached {
		return
	}
	c.closeLocked()
}

// HandlePopState treats back navigation on narrow screens as a close. It
// reports whether the default navigation must be suppressed.
func (c *Controller) HandlePopState() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detached || !c.narrow || c.state != Open {
		return false
	}
	c.closeLocked()
	return true
}

// HandleResize pins the panel to the visible height while the on-screen
// keyboard is up.
func (c *Controller) HandleResize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detached || !c.narrow {
		return
	}

	current := c.env.ViewportHeight()
	if c.initialHeight-current > c.opts.KeyboardShrink {
		c.el.Window.SetHeight(current)
	} else {
		c.el.Window.SetHeight(0)
	}
}

// HandleInput grows the input with its content and refreshes the send button.
func (c *Controller) HandleInput() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detached {
		return
	}

	c.el.Input.SetHeight(0)
	c.el.Input.SetHeight(min(c.el.Input.ScrollHeight(), c.opts.InputMaxHeight))
	c.el.Send.SetDisabled(strings.TrimSpace(c.el.Input.Value()) == "")
}

// HandleKeyDown sends on a plain Enter. It reports whether the key's default
// action (inserting a newline) must be suppressed.
func (c *Controller) HandleKeyDown(key string, shift bool) bool {
	if key != "Enter" || shift {
		return false
	}
	c.dispatch()
	return true
}

// HandleSubmit sends the current input in the background.
func (c *Controller) HandleSubmit() {
	c.dispatch()
}

// Send runs one full send/receive cycle and returns once the reply (or the
// failure) has been rendered.
func (c *Controller) Send(ctx context.Context) {
	req, ok := c.begin()
	if !ok {
		return
	}
	c.exchange(ctx, req)
}

// Wait blocks until every dispatched send cycle has completed.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Teardown detaches the controller from the page. Requests already in flight
// still complete, but their results and any pending timers no longer touch
// the elements.
func (c *Controller) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detached = true
	c.logger.Debug().Msg("widget detached")
}

// dispatch reads and clears the input synchronously, then leaves the HTTP
// exchange to a goroutine. Sends are neither queued nor coalesced.
func (c *Controller) dispatch() {
	req, ok := c.begin()
	if !ok {
		return
	}

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		c.exchange(context.Background(), req)
	}()
}

func (c *Controller) begin() (chat.Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detached {
		return chat.Request{}, false
	}

	text := strings.TrimSpace(c.el.Input.Value())
	if text == "" {
		return chat.Request{}, false
	}

	c.appendLocked(chat.Turn{Text: text, Origin: chat.User})

	c.el.Input.SetValue("")
	c.el.Input.SetHeight(0)
	c.el.Send.SetDisabled(true)

	c.el.Messages.AppendTyping()
	c.scrollLocked()

	return chat.Request{
		Message:        text,
		ConversationID: c.identity.ConversationID,
		Timestamp:      c.now().UTC().Format(isoMillis),
		UserAgent:      c.env.UserAgent(),
		Page:           page.CurrentPage(c.env.Fragment(), c.env.Sections(), c.opts.ReferenceLine),
		SessionID:      c.identity.SessionID,
	}, true
}

func (c *Controller) exchange(ctx context.Context, req chat.Request) {
	reply, err := c.sender.Send(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.logger.Error().
			Err(err).
			Bool("connectivity", chatservice.IsConnectivity(err)).
			Str("page", req.Page).
			Msg("chatbot error")
	}

	if c.detached {
		c.logger.Debug().Msg("dropping chat result for detached widget")
		return
	}

	c.el.Messages.RemoveTyping()

	if err != nil {
		c.appendLocked(chat.Turn{Text: FailureText(err), Origin: chat.Bot, IsError: true})
	} else {
		c.appendLocked(chat.Turn{Text: reply, Origin: chat.Bot})
	}

	c.el.Input.Focus()
}

// FailureText picks the visitor-facing message for a failed exchange.
func FailureText(err error) string {
	if chatservice.IsConnectivity(err) {
		return chat.ConnectivityFailureText
	}
	return chat.GenericFailureText
}

func (c *Controller) autoOpen() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detached || c.manuallyOpened || c.state == Open {
		return
	}

	c.logger.Debug().Msg("auto-opening widget")
	c.openLocked()
	c.sched.AfterFunc(c.opts.WelcomeDelay, c.onUI(func() {
		c.appendLocked(chat.Turn{Text: c.opts.WelcomeMessage, Origin: chat.Bot})
	}))
}

func (c *Controller) openLocked() {
	c.state = Open
	c.el.Window.SetActive(true)
	c.el.Toggle.SetActive(true)

	if c.env.ViewportWidth() <= c.opts.NarrowBreakpoint {
		c.env.SetScrollLocked(true)
		// Focusing right away fights the on-screen keyboard animation.
		c.sched.AfterFunc(c.opts.MobileFocusDelay, c.onUI(c.el.Input.Focus))
	} else {
		c.el.Input.Focus()
	}

	c.scrollLocked()
}

func (c *Controller) closeLocked() {
	c.state = Closed
	c.el.Window.SetActive(false)
	c.el.Toggle.SetActive(false)
	c.env.SetScrollLocked(false)
}

func (c *Controller) appendLocked(turn chat.Turn) {
	c.transcript = append(c.transcript, turn)
	c.el.Messages.Append(turn)
	c.scrollLocked()
}

func (c *Controller) scrollLocked() {
	c.sched.AfterFunc(c.opts.ScrollSettle, c.onUI(c.el.Messages.ScrollToBottom))
}

// onUI wraps f so it runs serialized with every other widget event and is
// skipped once the widget is detached.
func (c *Controller) onUI(f func()) func() {
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.detached {
			return
		}
		f()
	}
}
