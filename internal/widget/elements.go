package widget

import (
	"context"

	"github.com/smartbotics/automate-web/internal/model/chat"
	"github.com/smartbotics/automate-web/internal/model/page"
)

// ToggleButton is the floating launcher. Active switches its icon to "close".
type ToggleButton interface {
	SetActive(active bool)
}

// Window is the chat panel container.
type Window interface {
	SetActive(active bool)
	// SetHeight pins the panel height in px; 0 restores the full-height layout.
	SetHeight(px int)
}

// Trigger is an affordance that only produces events (close button, form).
type Trigger interface {
	ID() string
}

// Input is the message textarea.
type Input interface {
	Value() string
	SetValue(v string)
	Focus()
	// SetHeight sets the height in px; 0 means automatic sizing.
	SetHeight(px int)
	ScrollHeight() int
}

// MessageList renders the transcript.
type MessageList interface {
	Append(turn chat.Turn)
	AppendTyping()
	// RemoveTyping removes one typing placeholder, reporting whether one existed.
	RemoveTyping() bool
	ScrollToBottom()
}

// SendButton is the submit affordance.
type SendButton interface {
	SetDisabled(disabled bool)
}

// Elements groups the affordances the controller operates against. All of
// them must be present for the widget to mount.
type Elements struct {
	Toggle   ToggleButton
	Window   Window
	Close    Trigger
	Form     Trigger
	Input    Input
	Messages MessageList
	Send     SendButton
}

func (e Elements) complete() bool {
	return e.Toggle != nil && e.Window != nil && e.Close != nil && e.Form != nil &&
		e.Input != nil && e.Messages != nil && e.Send != nil
}

// Environment exposes the page values the widget reads.
type Environment interface {
	ViewportWidth() int
	ViewportHeight() int
	// Fragment returns the URL fragment including its leading '#', or "".
	Fragment() string
	UserAgent() string
	Sections() []page.Section
	// SetScrollLocked toggles page scrolling behind the widget.
	SetScrollLocked(locked bool)
}

// Sender performs the exchange with the remote chat service.
type Sender interface {
	Send(ctx context.Context, req chat.Request) (string, error)
}
