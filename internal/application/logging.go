package application

import (
	"io"
	"log/slog"

	"thirdcoast.systems/aquatube/internal/config"
)

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(w io.Writer, conf config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: conf.SlogLevel()}
	if conf.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
