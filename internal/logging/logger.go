// Package logging builds the per-module structured loggers used across the API.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	level   = new(slog.LevelVar)
	handler slog.Handler
	once    sync.Once
)

// SetLevel accepts debug, info, warn or error; anything else means info.
func SetLevel(name string) {
	switch strings.ToLower(name) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
}

// New returns a logger tagged with the module name, e.g. "blog-api:comment".
func New(module string) *slog.Logger {
	once.Do(func() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	})
	return slog.New(handler).With("module", "blog-api:"+module)
}
