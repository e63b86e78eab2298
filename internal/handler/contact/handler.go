package contact

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/smartbotics/automate-web/internal/model/contact"
	contactservice "github.com/smartbotics/automate-web/internal/service/contact"
	"github.com/smartbotics/automate-web/pkg/utils"
)

// Submitter delivers a validated contact form.
type Submitter interface {
	Submit(ctx context.Context, fields contact.Fields) error
}

// Handler serves the contact form endpoints.
type Handler struct {
	submitter Submitter
}

// New creates a contact handler.
func New(submitter Submitter) *Handler {
	return &Handler{submitter: submitter}
}

// RegisterRoutes registers the contact routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/contact", h.handleSubmit)
	r.Post("/contact/validate", h.handleValidateField)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var fields contact.Fields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.submitter.Submit(r.Context(), fields)

	var verr *contactservice.ValidationError
	switch {
	case err == nil:
		utils.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
	case errors.As(err, &verr):
		utils.RespondJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": verr.Fields})
	default:
		log.Error().Err(err).Str("component", "contact_handler").Msg("contact submission failed")
		utils.RespondError(w, http.StatusBadGateway, contactservice.FailureText)
	}
}

func (h *Handler) handleValidateField(w http.ResponseWriter, r *http.Request) {
	var field contact.Field
	if err := json.NewDecoder(r.Body).Decode(&field); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if ferr := contactservice.ValidateField(field); ferr != nil {
		utils.RespondJSON(w, http.StatusOK, map[string]any{"valid": false, "error": ferr})
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"valid": true})
}
