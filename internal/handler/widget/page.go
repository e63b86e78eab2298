package widget

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/smartbotics/automate-web/internal/model/chat"
	"github.com/smartbotics/automate-web/internal/model/page"
	"github.com/smartbotics/automate-web/internal/widget"
)

const writeWait = 10 * time.Second

// outbox serializes writes to one connection and drops them once the
// connection is gone.
type outbox struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
	logger zerolog.Logger
}

func (o *outbox) send(msg outgoingMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}

	msg.Timestamp = time.Now().Unix()
	o.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := o.conn.WriteJSON(msg); err != nil {
		o.logger.Debug().Err(err).Str("type", msg.Type).Str("op", msg.Op).Msg("write failed")
	}
}

func (o *outbox) op(name string, data any) {
	o.send(outgoingMessage{Type: typeOp, Op: name, Data: data})
}

func (o *outbox) sendError(message string) {
	o.send(outgoingMessage{Type: typeError, Data: map[string]string{"message": message}})
}

func (o *outbox) close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
}

// remotePage mirrors the browser page on the server side. Reads come from
// the last values the page script reported; writes become render operations.
type remotePage struct {
	mu  sync.Mutex
	out *outbox

	width, height int
	fragment      string
	userAgent     string
	sections      []page.Section
	scrollY       float64

	inputValue   string
	scrollHeight int
	activeNav    string
}

func newRemotePage(out *outbox, hello HelloMessage) *remotePage {
	return &remotePage{
		out:       out,
		width:     hello.Viewport.Width,
		height:    hello.Viewport.Height,
		fragment:  hello.Fragment,
		userAgent: hello.UserAgent,
		sections:  hello.Sections,
		scrollY:   hello.ScrollY,
	}
}

// elements builds the affordances named in ids; missing ones stay nil.
func (p *remotePage) elements(ids Affordances) widget.Elements {
	var el widget.Elements
	if ids.Toggle != "" {
		el.Toggle = activeElement{p, ids.Toggle, opToggle}
	}
	if ids.Window != "" {
		el.Window = windowElement{activeElement{p, ids.Window, opWindow}}
	}
	if ids.Close != "" {
		el.Close = trigger(ids.Close)
	}
	if ids.Form != "" {
		el.Form = trigger(ids.Form)
	}
	if ids.Input != "" {
		el.Input = inputElement{p, ids.Input}
	}
	if ids.Messages != "" {
		el.Messages = messagesElement{p, ids.Messages}
	}
	if ids.Send != "" {
		el.Send = sendElement{p, ids.Send}
	}
	return el
}

func (p *remotePage) ViewportWidth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width
}

func (p *remotePage) ViewportHeight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.height
}

func (p *remotePage) Fragment() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fragment
}

func (p *remotePage) UserAgent() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.userAgent
}

func (p *remotePage) Sections() []page.Section {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]page.Section(nil), p.sections...)
}

func (p *remotePage) SetScrollLocked(locked bool) {
	p.out.op(opBodyScroll, map[string]bool{"locked": locked})
}

func (p *remotePage) setViewport(v Viewport) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.width, p.height = v.Width, v.Height
}

func (p *remotePage) setInput(value string, scrollHeight int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inputValue = value
	p.scrollHeight = scrollHeight
}

func (p *remotePage) setInputValue(value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inputValue = value
}

// scrolled records new geometry and reports the navigation entry to
// highlight when it changed.
func (p *remotePage) scrolled(msg ScrollMessage) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scrollY = msg.ScrollY
	if msg.Sections != nil {
		p.sections = msg.Sections
	}
	if msg.Fragment != nil {
		p.fragment = *msg.Fragment
	}

	active := page.ActiveSection(p.scrollY, p.sections)
	if active == p.activeNav {
		return active, false
	}
	p.activeNav = active
	return active, true
}

type trigger string

func (t trigger) ID() string { return string(t) }

type activeElement struct {
	p  *remotePage
	id string
	op string
}

func (e activeElement) SetActive(active bool) {
	e.p.out.op(e.op, map[string]any{"target": e.id, "active": active})
}

type windowElement struct {
	activeElement
}

func (e windowElement) SetHeight(px int) {
	e.p.out.op(opWindowHeight, map[string]any{"target": e.id, "height": px})
}

type inputElement struct {
	p  *remotePage
	id string
}

func (e inputElement) Value() string {
	e.p.mu.Lock()
	defer e.p.mu.Unlock()
	return e.p.inputValue
}

func (e inputElement) SetValue(v string) {
	e.p.setInputValue(v)
	e.p.out.op(opInputValue, map[string]any{"target": e.id, "value": v})
}

func (e inputElement) Focus() {
	e.p.out.op(opFocus, map[string]any{"target": e.id})
}

func (e inputElement) SetHeight(px int) {
	e.p.out.op(opInputHeight, map[string]any{"target": e.id, "height": px})
}

func (e inputElement) ScrollHeight() int {
	e.p.mu.Lock()
	defer e.p.mu.Unlock()
	return e.p.scrollHeight
}

type messagesElement struct {
	p  *remotePage
	id string
}

func (e messagesElement) Append(turn chat.Turn) {
	e.p.out.op(opAppendTurn, map[string]any{"target": e.id, "turn": newTurnPayload(turn)})
}

func (e messagesElement) AppendTyping() {
	e.p.out.op(opTyping, map[string]any{"target": e.id, "label": chat.TypingLabel})
}

// RemoveTyping always reports success: the controller removes at most one
// placeholder per one it added.
func (e messagesElement) RemoveTyping() bool {
	e.p.out.op(opRemoveTyping, map[string]any{"target": e.id})
	return true
}

func (e messagesElement) ScrollToBottom() {
	e.p.out.op(opScrollBottom, map[string]any{"target": e.id})
}

type sendElement struct {
	p  *remotePage
	id string
}

func (e sendElement) SetDisabled(disabled bool) {
	e.p.out.op(opSendDisabled, map[string]any{"target": e.id, "disabled": disabled})
}
