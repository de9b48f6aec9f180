package app

import (
	"log/slog"
	"os"
	"strings"

	"Gin_postgres_redis_peer_lending/config"
)

// NewLogger builds the process logger from LOG_LEVEL / LOG_FORMAT and makes
// it the slog default.
func NewLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var h slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	l := slog.New(h).With("service", "peer-lending")
	slog.SetDefault(l)
	return l
}
