package middleware

import (
	"context"
	"net/netip"
	"strings"
	"time"

	"github.com/contactrelay/contactrelay/internal/config"
	"github.com/contactrelay/contactrelay/internal/logger"
)

// Counter is a windowed hit counter; *database.Redis satisfies it
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Middleware holds all HTTP middleware
type Middleware struct {
	counter        Counter
	log            *logger.Logger
	cfg            *config.Config
	trustedProxies []netip.Prefix
}

// New creates a new Middleware instance. counter may be nil, which disables rate limiting.
func New(counter Counter, log *logger.Logger, cfg *config.Config) *Middleware {
	return &Middleware{
		counter:        counter,
		log:            log,
		cfg:            cfg,
		trustedProxies: parseProxies(cfg.Server.TrustedProxies, log),
	}
}

// parseProxies accepts bare addresses and CIDR prefixes; bad entries are skipped
func parseProxies(entries []string, log *logger.Logger) []netip.Prefix {
	var prefixes []netip.Prefix
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			log.Warn().Str("entry", entry).Msg("ignoring invalid trusted proxy")
			continue
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return prefixes
}
