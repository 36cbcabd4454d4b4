package handler

import (
	"errors"
	"net/http"

	"github.com/contactrelay/contactrelay/internal/email"
	"github.com/contactrelay/contactrelay/internal/middleware"
	"github.com/contactrelay/contactrelay/internal/model"
	"github.com/contactrelay/contactrelay/internal/service"
)

// Contact relays one contact-form submission to the site owner's inbox
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		if errors.Is(err, errBodyTooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body is too large")
			return
		}
		writeError(w, r, http.StatusBadRequest, "invalid_payload", model.ErrInvalidPayload.Error())
		return
	}

	in, err := model.DecodeContactInput(data)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_payload", model.ErrInvalidPayload.Error())
		return
	}

	ctx := service.WithRequestID(r.Context(), middleware.GetRequestID(r.Context()))
	if _, err := h.relay.Relay(ctx, in); err != nil {
		h.writeRelayError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) writeRelayError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *service.ValidationError
		cfgErr        *email.ConfigurationError
		transportErr  *email.TransportError
	)

	switch {
	case errors.As(err, &validationErr):
		writeError(w, r, http.StatusBadRequest, "validation_error", validationErr.Message)
	case errors.As(err, &cfgErr):
		writeError(w, r, http.StatusServiceUnavailable, "configuration_error", cfgErr.Error())
	case errors.As(err, &transportErr):
		writeError(w, r, http.StatusBadGateway, "transport_error", transportErr.Error())
	default:
		h.log.Error().Err(err).Str("request_id", middleware.GetRequestID(r.Context())).Msg("unexpected relay error")
		writeError(w, r, http.StatusInternalServerError, "internal_server_error", "An unexpected error occurred")
	}
}
