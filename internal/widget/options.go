package widget

import (
	"time"

	"github.com/smartbotics/automate-web/internal/model/chat"
	"github.com/smartbotics/automate-web/internal/model/page"
)

// Options tunes the widget's timings and thresholds.
type Options struct {
	AutoOpenDelay    time.Duration
	WelcomeDelay     time.Duration
	MobileFocusDelay time.Duration
	ScrollSettle     time.Duration
	NarrowBreakpoint int
	KeyboardShrink   int
	InputMaxHeight   int
	ReferenceLine    float64
	WelcomeMessage   string
}

// DefaultOptions mirrors the production site.
func DefaultOptions() Options {
	return Options{
		AutoOpenDelay:    5000 * time.Millisecond,
		WelcomeDelay:     800 * time.Millisecond,
		MobileFocusDelay: 300 * time.Millisecond,
		ScrollSettle:     100 * time.Millisecond,
		NarrowBreakpoint: 768,
		KeyboardShrink:   150,
		InputMaxHeight:   100,
		ReferenceLine:    page.ReferenceLine,
		WelcomeMessage:   chat.WelcomeMessage,
	}
}

// Option customises a Controller at mount time.
type Option func(*Controller)

// WithOptions replaces the timing and threshold settings.
func WithOptions(o Options) Option {
	return func(c *Controller) {
		c.opts = o
	}
}

// WithScheduler replaces the runtime timer scheduler.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) {
		c.sched = s
	}
}

// WithClock replaces time.Now for identifiers and request timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithIdentity fixes the session identifiers instead of generating them.
func WithIdentity(id chat.Identity) Option {
	return func(c *Controller) {
		c.identity = id
	}
}
