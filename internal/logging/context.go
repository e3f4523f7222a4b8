package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// FromContext extracts the logger from context
// If no logger is found, returns a disabled logger (no-op)
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// WithComponent creates a child logger with a component field
func WithComponent(ctx context.Context, component string) context.Context {
	logger := FromContext(ctx)
	childLogger := logger.With().Str("component", component).Logger()
	return WithContext(ctx, childLogger)
}

// WithExtension creates a child logger with an extension_id field
func WithExtension(ctx context.Context, extensionID string) context.Context {
	logger := FromContext(ctx)
	childLogger := logger.With().Str("extension_id", extensionID).Logger()
	return WithContext(ctx, childLogger)
}

// WithFeature creates a child logger with a feature_id field
func WithFeature(ctx context.Context, featureID string) context.Context {
	logger := FromContext(ctx)
	childLogger := logger.With().Str("feature_id", featureID).Logger()
	return WithContext(ctx, childLogger)
}
