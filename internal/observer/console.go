// Package observer provides store event sinks: a structured console logger
// and an append-only event log file.
package observer

import (
	"log/slog"

	"github.com/matteso1/radixkv/internal/store"
)

// Console logs every store event through slog.
type Console struct {
	logger *slog.Logger
}

// NewConsole creates a console sink. A nil logger uses slog.Default().
func NewConsole(logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{logger: logger.With("sink", "console")}
}

// OnEvent implements store.Observer.
func (c *Console) OnEvent(kind store.EventType, key string) {
	c.logger.Info("store event", "op", kind.String(), "key", key)
}
