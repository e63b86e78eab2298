package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/smartbotics/automate-web/internal/model/chat"
)

// ErrConnectivity marks exchanges that failed before any response arrived.
var ErrConnectivity = errors.New("failed to fetch")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Code)
}

// ReplyError is returned when the service answered but without a usable message.
type ReplyError struct {
	Message string
}

func (e *ReplyError) Error() string {
	return e.Message
}

// IsConnectivity reports whether err came from a transport-level failure.
func IsConnectivity(err error) bool {
	return errors.Is(err, ErrConnectivity)
}

// Service relays widget messages to the remote chat endpoint. Every call is
// a single POST; nothing is retried or queued.
type Service struct {
	endpoint   string
	httpClient *http.Client
}

// Option customises a Service.
type Option func(*Service)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Service) {
		s.httpClient = hc
	}
}

// NewService builds a client for endpoint. A zero timeout waits indefinitely.
func NewService(endpoint string, timeout time.Duration, opts ...Option) *Service {
	s := &Service{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Endpoint returns the configured chat URL.
func (s *Service) Endpoint() string {
	return s.endpoint
}

// Send posts req and returns the bot's reply text.
func (s *Service) Send(ctx context.Context, req chat.Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", errors.Wrap(err, "encode chat request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build chat request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	logger := log.With().
		Str("component", "chat_client").
		Str("session_id", req.SessionID).
		Str("page", req.Page).
		Logger()

	started := time.Now()
	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		logger.Debug().Err(err).Msg("chat request did not complete")
		return "", errors.Wrap(ErrConnectivity, err.Error())
	}
	defer resp.Body.Close()

	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("chat response received")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &StatusError{Code: resp.StatusCode}
	}

	var reply chat.Reply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", errors.WithStack(&ReplyError{Message: "invalid chat response: " + err.Error()})
	}

	if reply.Success && reply.Message != "" {
		return reply.Message, nil
	}

	msg := reply.Error
	if msg == "" {
		msg = chat.UnknownErrorMessage
	}
	return "", &ReplyError{Message: msg}
}
