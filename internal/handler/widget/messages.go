package widget

import (
	"encoding/json"

	"github.com/smartbotics/automate-web/internal/model/chat"
	"github.com/smartbotics/automate-web/internal/model/contact"
	"github.com/smartbotics/automate-web/internal/model/page"
)

// Inbound event types sent by the page script.
const (
	eventHello    = "hello"
	eventToggle   = "toggle"
	eventClose    = "close"
	eventInput    = "input"
	eventKeyDown  = "keydown"
	eventSubmit   = "submit"
	eventResize   = "resize"
	eventPopState = "popstate"
	eventScroll   = "scroll"
	eventContact  = "contact"
)

// Outbound message types. An ack reports what the controller decided for a
// keydown or popstate, but it arrives after the browser event has finished
// dispatching. The page script must therefore call preventDefault itself,
// using the same rules: a plain Enter in the input, and popstate while the
// widget is open on a viewport of 768 px or less. The ack lets the script
// confirm or undo that choice.
const (
	typeOp       = "op"
	typeAck      = "ack"
	typeInactive = "inactive"
	typeError    = "error"
)

// Render operations applied by the page script.
const (
	opWindow         = "window"
	opToggle         = "toggle"
	opBodyScroll     = "bodyScroll"
	opInputValue     = "inputValue"
	opInputHeight    = "inputHeight"
	opSendDisabled   = "sendDisabled"
	opAppendTurn     = "appendTurn"
	opTyping         = "typing"
	opRemoveTyping   = "removeTyping"
	opScrollBottom   = "scrollBottom"
	opWindowHeight   = "windowHeight"
	opFocus          = "focus"
	opActiveNav      = "activeNav"
	opContactErrors  = "contactErrors"
	opContactSuccess = "contactSuccess"
	opContactHidden  = "contactHidden"
	opContactFailed  = "contactFailed"
)

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Affordances carries the element ids the page found. A blank id means the
// element is missing.
type Affordances struct {
	Toggle   string `json:"toggle"`
	Window   string `json:"window"`
	Close    string `json:"close"`
	Form     string `json:"form"`
	Input    string `json:"input"`
	Messages string `json:"messages"`
	Send     string `json:"send"`
}

// Viewport is the visible area in CSS px.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// HelloMessage opens a page session.
type HelloMessage struct {
	Viewport    Viewport       `json:"viewport"`
	Fragment    string         `json:"fragment"`
	UserAgent   string         `json:"userAgent"`
	Sections    []page.Section `json:"sections"`
	ScrollY     float64        `json:"scrollY"`
	Affordances Affordances    `json:"affordances"`
}

// InputMessage reports the textarea after an edit.
type InputMessage struct {
	Value        string `json:"value"`
	ScrollHeight int    `json:"scrollHeight"`
}

// KeyDownMessage reports a key pressed in the textarea. Value, when set,
// refreshes the cached input before the key is handled.
type KeyDownMessage struct {
	Key   string  `json:"key"`
	Shift bool    `json:"shift"`
	Value *string `json:"value,omitempty"`
}

// SubmitMessage reports a form submission.
type SubmitMessage struct {
	Value *string `json:"value,omitempty"`
}

// ScrollMessage reports fresh page geometry.
type ScrollMessage struct {
	ScrollY  float64        `json:"scrollY"`
	Sections []page.Section `json:"sections"`
	Fragment *string        `json:"fragment,omitempty"`
}

// ContactMessage carries a contact form submission.
type ContactMessage struct {
	Fields contact.Fields `json:"fields"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	Op        string `json:"op,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type turnPayload struct {
	Text    string `json:"text"`
	Origin  string `json:"origin"`
	IsError bool   `json:"isError,omitempty"`
}

func newTurnPayload(turn chat.Turn) turnPayload {
	return turnPayload{Text: turn.Text, Origin: turn.Origin.String(), IsError: turn.IsError}
}
