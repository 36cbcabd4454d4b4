package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/contactrelay/contactrelay/internal/config"
	"github.com/contactrelay/contactrelay/internal/logger"
	"github.com/contactrelay/contactrelay/internal/middleware"
	"github.com/contactrelay/contactrelay/internal/service"
)

// maxBodyBytes caps the contact payload
const maxBodyBytes = 64 << 10

// Pinger reports the health of an optional backing store
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// Handler holds all HTTP handlers
type Handler struct {
	relay *service.RelayService
	rdb   Pinger
	log   *logger.Logger
	cfg   *config.Config
}

// New creates a new Handler instance. rdb may be nil when Redis is disabled.
func New(relay *service.RelayService, rdb Pinger, log *logger.Logger, cfg *config.Config) *Handler {
	return &Handler{
		relay: relay,
		rdb:   rdb,
		log:   log,
		cfg:   cfg,
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	body := map[string]interface{}{
		"code":    code,
		"message": message,
	}
	if reqID := middleware.GetRequestID(r.Context()); reqID != "" {
		body["request_id"] = reqID
	}
	writeJSON(w, status, map[string]interface{}{"error": body})
}

var errBodyTooLarge = errors.New("request body too large")

// readBody reads at most maxBodyBytes of the request body
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errBodyTooLarge
		}
		return nil, err
	}
	return data, nil
}
