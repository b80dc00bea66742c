// Package logging configures the process-wide slog logger.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/Walehamdi1/QNA/internal/config"
)

type ctxKey struct{}

// WithRequestID stores the request id for log records / Stocke l'ID de requête pour les logs
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the request id stored in ctx / Retourne l'ID de requête du contexte
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// ParseLevel maps a config level, info by default / Convertit le niveau de config, info par défaut
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing to w / Construit un logger écrivant dans w
func New(conf config.LoggingConfig, production bool, w io.Writer) *slog.Logger {
	level := ParseLevel(conf.Level)

	var h slog.Handler
	if strings.ToLower(conf.Format) == "json" {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, AddSource: production})
	} else {
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}
	return slog.New(&contextHandler{Handler: h})
}

// Setup installs the logger as slog default / Installe le logger par défaut
func Setup(conf *config.Config, w io.Writer) *slog.Logger {
	logger := New(conf.Logging, conf.IsProduction(), w)
	slog.SetDefault(logger)
	return logger
}

// contextHandler adds the request id of ctx to every record
type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, record slog.Record) error {
	if id := RequestID(ctx); id != "" {
		record.AddAttrs(slog.String("request_id", id))
	}
	return h.Handler.Handle(ctx, record)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}
