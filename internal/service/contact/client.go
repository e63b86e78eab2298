package contact

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

	"github.com/smartbotics/automate-web/internal/model/contact"
)

// FailureText is shown to the visitor when a submission does not go through.
const FailureText = "Hubo un problema al enviar el formulario. Intenta de nuevo."

// ErrSubmission is returned when the webhook rejects the form.
var ErrSubmission = errors.New("Error al enviar los datos")

// ValidationError reports a form that failed validation before submission.
type ValidationError struct {
	Fields []contact.FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("contact form invalid: %d field(s)", len(e.Fields))
}

// Client posts contact form data to the lead webhook. Each submission is a
// single attempt.
type Client struct {
	webhookURL string
	httpClient *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a webhook client.
func NewClient(webhookURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit validates fields and forwards them to the webhook.
func (c *Client) Submit(ctx context.Context, fields contact.Fields) error {
	if errs := Validate(fields); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}

	body, err := json.Marshal(fields)
	if err != nil {
		return errors.Wrap(err, "encode contact form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build contact request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("component", "contact").Msg("webhook request failed")
		return errors.Wrap(err, "post contact form")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error().Int("status", resp.StatusCode).Str("component", "contact").Msg("webhook rejected form")
		return errors.Wrapf(ErrSubmission, "status %d", resp.StatusCode)
	}

	log.Info().Str("component", "contact").Msg("contact form delivered")
	return nil
}
