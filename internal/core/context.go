package core

import (
	"context"
	"log/slog"

	"github.com/JonMunkholm/fileprobe/internal/logging"
)

type contextKey string

const ctxKeyClientIP contextKey = "client_ip"

// ContextWithClientIP attaches the caller's IP address for logging.
func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyClientIP, ip)
}

// ClientIPFromContext extracts the client IP from context.
func ClientIPFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyClientIP).(string); ok {
		return v
	}
	return ""
}

// loggerFrom returns the request logger enriched with the client IP.
func loggerFrom(ctx context.Context) *slog.Logger {
	logger := logging.FromContext(ctx)
	if ip := ClientIPFromContext(ctx); ip != "" {
		logger = logger.With("client_ip", ip)
	}
	return logger
}
