package logging

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

var defaultLogger = slog.Default()

// FromContext extracts the logger from context.
// Returns the default logger if no logger is found or ctx is nil.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return defaultLogger
	}

	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}

	return defaultLogger
}

// WithContext stores a logger in the context.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// WithCommand adds the invoked command name to the logger in context.
// Returns a new context with the enriched logger.
func WithCommand(ctx context.Context, command string) context.Context {
	logger := FromContext(ctx).With(slog.String("command", command))
	return WithContext(ctx, logger)
}

// WithGuildID adds the invoking guild to the logger in context.
// Returns a new context with the enriched logger.
func WithGuildID(ctx context.Context, guildID string) context.Context {
	logger := FromContext(ctx).With(slog.String("guild_id", guildID))
	return WithContext(ctx, logger)
}

// WithInteractionID adds the gateway interaction ID to the logger in context.
// Returns a new context with the enriched logger.
func WithInteractionID(ctx context.Context, interactionID string) context.Context {
	logger := FromContext(ctx).With(slog.String("interaction_id", interactionID))
	return WithContext(ctx, logger)
}

// SetDefault sets the default logger used when no logger is in context.
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}
