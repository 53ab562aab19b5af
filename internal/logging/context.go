// internal/logging/context.go
package logging

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"

	"go.uber.org/zap"
)

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 3)

	if guildID := GuildFromContext(ctx); guildID != "" {
		fields = append(fields, zap.String("guild.id", guildID))
	}

	if purpose := PurposeFromContext(ctx); purpose != "" {
		fields = append(fields, zap.String("purpose", purpose))
	}

	if requestID := RequestIDFromContext(ctx); requestID != "" {
		fields = append(fields, zap.String("request.id", requestID))
	}

	return fields
}

// Context key types
type guildCtxKey struct{}
type purposeCtxKey struct{}
type requestCtxKey struct{}

const maxIDLen = 128

var (
	// guildPattern allows decimal snowflakes only
	guildPattern = regexp.MustCompile(`^[0-9]+$`)
	// idPattern allows alphanumeric, hyphen, underscore
	idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// validateID validates a correlation ID against pattern.
func validateID(id, name string, pattern *regexp.Regexp) error {
	if id == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	if !utf8.ValidString(id) {
		return fmt.Errorf("%s contains invalid UTF-8", name)
	}
	if len(id) > maxIDLen {
		return fmt.Errorf("%s exceeds max length %d", name, maxIDLen)
	}
	if !pattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters", name)
	}
	return nil
}

// GuildFromContext extracts the guild ID from context.
func GuildFromContext(ctx context.Context) string {
	if g, ok := ctx.Value(guildCtxKey{}).(string); ok {
		return g
	}
	return ""
}

// WithGuild adds the guild ID to context.
// Invalid IDs are ignored and ctx is returned unchanged.
func WithGuild(ctx context.Context, guildID string) context.Context {
	if err := validateID(guildID, "guildID", guildPattern); err != nil {
		return ctx
	}
	return context.WithValue(ctx, guildCtxKey{}, guildID)
}

// PurposeFromContext extracts the dictionary purpose from context.
func PurposeFromContext(ctx context.Context) string {
	if p, ok := ctx.Value(purposeCtxKey{}).(string); ok {
		return p
	}
	return ""
}

// WithPurpose adds the dictionary purpose to context.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	if err := validateID(purpose, "purpose", idPattern); err != nil {
		return ctx
	}
	return context.WithValue(ctx, purposeCtxKey{}, purpose)
}

// RequestIDFromContext extracts request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if r, ok := ctx.Value(requestCtxKey{}).(string); ok {
		return r
	}
	return ""
}

// WithRequestID adds request ID to context.
// Invalid IDs are ignored and ctx is returned unchanged.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if err := validateID(requestID, "requestID", idPattern); err != nil {
		return ctx
	}
	return context.WithValue(ctx, requestCtxKey{}, requestID)
}

// loggerCtxKey is the context key for Logger.
type loggerCtxKey struct{}

// WithLogger stores logger in context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext retrieves logger from context.
// Returns a nop logger if not found.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok {
		return l
	}
	return NewNop()
}
