package widget

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	contacthandler "github.com/smartbotics/automate-web/internal/handler/contact"
	"github.com/smartbotics/automate-web/internal/middleware"
	contactservice "github.com/smartbotics/automate-web/internal/service/contact"
	"github.com/smartbotics/automate-web/internal/widget"
)

const (
	readWait     = 60 * time.Second
	pingInterval = 54 * time.Second
)

// Config tunes the bridge.
type Config struct {
	Options        widget.Options
	SuccessDisplay time.Duration
	// AllowedOrigins restricts the upgrade; empty allows any origin.
	AllowedOrigins []string
}

// WebSocketHandler drives one widget controller per page connection.
type WebSocketHandler struct {
	sender     widget.Sender
	submitter  contacthandler.Submitter
	cfg        Config
	widgetOpts []widget.Option
	upgrader   websocket.Upgrader
}

// NewWebSocketHandler creates the bridge. Extra widget options are applied
// to every mounted controller.
func NewWebSocketHandler(sender widget.Sender, submitter contacthandler.Submitter, cfg Config, opts ...widget.Option) *WebSocketHandler {
	h := &WebSocketHandler{
		sender:     sender,
		submitter:  submitter,
		cfg:        cfg,
		widgetOpts: opts,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin:     h.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	return h
}

// RegisterWebSocketRoutes registers the widget socket.
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/ws/widget", h.handleWebSocket)
}

// checkOrigin applies the API's CORS origin list to the upgrade. Requests
// without an Origin header come from non-browser clients.
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || middleware.AllowOrigin(h.cfg.AllowedOrigins)(r, origin)
}

// connection is the state of one page load.
type connection struct {
	out    *outbox
	page   *remotePage
	ctrl   *widget.Controller
	logger zerolog.Logger
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("component", "widget_ws").Msg("upgrade failed")
		return
	}
	defer conn.Close()

	logger := log.With().
		Str("component", "widget_ws").
		Str("conn_id", uuid.NewString()).
		Logger()
	logger.Debug().Str("remote", r.RemoteAddr).Msg("new connection")

	state := &connection{
		out:    &outbox{conn: conn, logger: logger},
		logger: logger,
	}
	defer func() {
		state.out.close()
		if state.ctrl != nil {
			state.ctrl.Teardown()
		}
		logger.Debug().Msg("connection closed")
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readWait))
		return nil
	})

	go h.pingLoop(ctx, conn)

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Msg("read error")
			}
			return
		}

		conn.SetReadDeadline(time.Now().Add(readWait))
		h.handleMessage(ctx, state, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, state *connection, msg *inboundMessage) {
	switch msg.Type {
	case eventHello:
		h.handleHello(state, msg.Data)
	case eventScroll:
		h.handleScroll(state, msg.Data)
	case eventContact:
		h.handleContact(ctx, state, msg.Data)
	case eventToggle, eventClose, eventInput, eventKeyDown, eventSubmit, eventResize, eventPopState:
		if state.ctrl == nil {
			state.logger.Debug().Str("type", msg.Type).Msg("widget event without mounted widget")
			return
		}
		h.handleWidgetEvent(state, msg)
	default:
		state.out.sendError("unsupported message type: " + msg.Type)
	}
}

func (h *WebSocketHandler) handleHello(state *connection, raw json.RawMessage) {
	if state.page != nil {
		state.out.sendError("session already started")
		return
	}

	var hello HelloMessage
	if err := json.Unmarshal(raw, &hello); err != nil {
		state.out.sendError("invalid hello payload")
		return
	}

	state.page = newRemotePage(state.out, hello)

	opts := append([]widget.Option{widget.WithOptions(h.cfg.Options)}, h.widgetOpts...)
	ctrl, err := widget.Mount(state.page.elements(hello.Affordances), state.page, h.sender, opts...)
	if err != nil {
		if errors.Is(err, widget.ErrMissingAffordance) {
			state.logger.Debug().Msg("chatbot elements not found, widget inactive")
			state.out.send(outgoingMessage{Type: typeInactive})
			return
		}
		state.logger.Error().Err(err).Msg("mount widget")
		state.out.sendError("widget unavailable")
		return
	}

	state.ctrl = ctrl
	id := ctrl.Identity()
	state.logger = state.logger.With().Str("session_id", id.SessionID).Logger()
	state.out.send(outgoingMessage{Type: typeAck, Data: map[string]string{
		"event":          eventHello,
		"sessionId":      id.SessionID,
		"conversationId": id.ConversationID,
	}})

	if active, changed := state.page.scrolled(ScrollMessage{ScrollY: hello.ScrollY}); changed {
		state.out.op(opActiveNav, map[string]string{"section": active})
	}
}

func (h *WebSocketHandler) handleWidgetEvent(state *connection, msg *inboundMessage) {
	ctrl := state.ctrl

	switch msg.Type {
	case eventToggle:
		ctrl.Toggle()
	case eventClose:
		ctrl.Close()
	case eventResize:
		var v Viewport
		if err := json.Unmarshal(msg.Data, &v); err != nil {
			state.out.sendError("invalid resize payload")
			return
		}
		state.page.setViewport(v)
		ctrl.HandleResize()
	case eventInput:
		var in InputMessage
		if err := json.Unmarshal(msg.Data, &in); err != nil {
			state.out.sendError("invalid input payload")
			return
		}
		state.page.setInput(in.Value, in.ScrollHeight)
		ctrl.HandleInput()
	case eventKeyDown:
		var key KeyDownMessage
		if err := json.Unmarshal(msg.Data, &key); err != nil {
			state.out.sendError("invalid keydown payload")
			return
		}
		if key.Value != nil {
			state.page.setInputValue(*key.Value)
		}
		prevented := ctrl.HandleKeyDown(key.Key, key.Shift)
		state.out.send(outgoingMessage{Type: typeAck, Data: map[string]any{
			"event":     eventKeyDown,
			"prevented": prevented,
		}})
	case eventSubmit:
		var submit SubmitMessage
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &submit); err != nil {
				state.out.sendError("invalid submit payload")
				return
			}
		}
		if submit.Value != nil {
			state.page.setInputValue(*submit.Value)
		}
		ctrl.HandleSubmit()
	case eventPopState:
		handled := ctrl.HandlePopState()
		state.out.send(outgoingMessage{Type: typeAck, Data: map[string]any{
			"event":   eventPopState,
			"handled": handled,
		}})
	}
}

func (h *WebSocketHandler) handleScroll(state *connection, raw json.RawMessage) {
	if state.page == nil {
		return
	}

	var scroll ScrollMessage
	if err := json.Unmarshal(raw, &scroll); err != nil {
		state.out.sendError("invalid scroll payload")
		return
	}

	if active, changed := state.page.scrolled(scroll); changed {
		state.out.op(opActiveNav, map[string]string{"section": active})
	}
}

// handleContact relays a contact form in the background so the socket keeps
// serving widget events.
func (h *WebSocketHandler) handleContact(ctx context.Context, state *connection, raw json.RawMessage) {
	if h.submitter == nil {
		state.out.sendError("contact form unavailable")
		return
	}

	var form ContactMessage
	if err := json.Unmarshal(raw, &form); err != nil {
		state.out.sendError("invalid contact payload")
		return
	}

	out, logger := state.out, state.logger
	go func() {
		err := h.submitter.Submit(ctx, form.Fields)

		var verr *contactservice.ValidationError
		switch {
		case err == nil:
			logger.Info().Msg("contact form sent")
			out.op(opContactSuccess, nil)
			time.AfterFunc(h.cfg.SuccessDisplay, func() {
				out.op(opContactHidden, nil)
			})
		case errors.As(err, &verr):
			out.op(opContactErrors, map[string]any{"errors": verr.Fields})
		default:
			logger.Error().Err(err).Msg("contact form failed")
			out.op(opContactFailed, map[string]string{"message": contactservice.FailureText})
		}
	}()
}

func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
