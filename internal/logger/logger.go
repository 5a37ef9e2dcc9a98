package logger

import (
	"context"
	"log/slog"
	"os"

	"unihub/internal/config"
	"unihub/internal/telemetry"
)

// New builds the process logger: console output (JSON in production, text in
// development) plus the OpenTelemetry bridge, and installs it as the slog
// default.
func New(cfg config.Config) *slog.Logger {
	level := slog.LevelDebug
	if cfg.Server.Environment == "production" {
		level = slog.LevelInfo
	}

	otelHandler := telemetry.NewOTelHandler(&slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	})

	var consoleHandler slog.Handler
	if cfg.Server.Environment == "production" {
		consoleHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		})
	} else {
		consoleHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		})
	}

	logger := slog.New(NewMultiHandler(otelHandler, consoleHandler)).With(
		"service", cfg.Telemetry.ServiceName,
		"version", cfg.Telemetry.ServiceVersion,
		"environment", cfg.Telemetry.Environment,
	)

	slog.SetDefault(logger)

	return logger
}

// MultiHandler sends records to every underlying handler that accepts them.
type MultiHandler struct {
	handlers []slog.Handler
}

func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *MultiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record); err != nil {
				slog.Error("Failed to handle log record", "error", err)
			}
		}
	}
	return nil
}

func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, 0, len(h.handlers))
	for _, handler := range h.handlers {
		newHandlers = append(newHandlers, handler.WithAttrs(attrs))
	}
	return &MultiHandler{handlers: newHandlers}
}

func (h *MultiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, 0, len(h.handlers))
	for _, handler := range h.handlers {
		newHandlers = append(newHandlers, handler.WithGroup(name))
	}
	return &MultiHandler{handlers: newHandlers}
}
