package router

import (
	"net/http"
	"time"

	"github.com/contactrelay/contactrelay/internal/config"
	"github.com/contactrelay/contactrelay/internal/handler"
	"github.com/contactrelay/contactrelay/internal/logger"
	"github.com/contactrelay/contactrelay/internal/middleware"
)

const defaultRateLimitWindow = 15 * time.Minute

// New creates and configures the HTTP router
func New(h *handler.Handler, mw *middleware.Middleware, log *logger.Logger, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoints
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ready", h.Ready)

	mux.HandleFunc("GET /api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"contactrelay API v1","version":"` + handler.Version + `"}`))
	})

	window, err := time.ParseDuration(cfg.Contact.RateLimitWindow)
	if err != nil || window <= 0 {
		log.Warn().Str("window", cfg.Contact.RateLimitWindow).Msg("invalid rate limit window, using 15m")
		window = defaultRateLimitWindow
	}
	contactRateLimit := mw.RateLimit(middleware.RateLimitConfig{
		Name:   "contact",
		Limit:  cfg.Contact.RateLimit,
		Window: window,
		KeyFn:  mw.IPKey,
	})
	mux.Handle("POST /api/v1/contact", contactRateLimit(http.HandlerFunc(h.Contact)))

	// Apply middleware stack
	var handler http.Handler = mux

	handler = mw.CORS(cfg.CORS.AllowedOrigins)(handler)

	// Security headers
	handler = mw.SecurityHeaders(handler)

	// Request logging
	handler = mw.Logger(handler)

	// Timing
	handler = mw.Timing(handler)

	// Request ID
	handler = mw.RequestID(handler)

	// Panic recovery (outermost)
	handler = mw.Recover(handler)

	return handler
}
