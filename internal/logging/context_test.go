package logging

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestContextFields_Empty(t *testing.T) {
	fields := ContextFields(context.Background())
	assert.Empty(t, fields)
}

func TestContextFields_All(t *testing.T) {
	ctx := WithGuild(context.Background(), "222222222222222222")
	ctx = WithPurpose(ctx, "faqs")
	ctx = WithRequestID(ctx, "req_456")

	fields := ContextFields(ctx)

	assert.Len(t, fields, 3)
	assertFieldExists(t, fields, "guild.id", "222222222222222222")
	assertFieldExists(t, fields, "purpose", "faqs")
	assertFieldExists(t, fields, "request.id", "req_456")
}

func TestWithGuild_InvalidIgnored(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"letters", "acme"},
		{"negative", "-1"},
		{"too long", strings.Repeat("1", maxIDLen+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := WithGuild(context.Background(), tt.input)
			assert.Empty(t, GuildFromContext(ctx))
		})
	}
}

func TestWithRequestID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"uuid", "7d3b1e0a-5c4f-4d1e-9a0b-2c6f1e3d4b5a", "7d3b1e0a-5c4f-4d1e-9a0b-2c6f1e3d4b5a"},
		{"underscore", "req_1", "req_1"},
		{"spaces rejected", "req 1", ""},
		{"newline rejected", "req\n1", ""},
		{"empty rejected", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := WithRequestID(context.Background(), tt.input)
			assert.Equal(t, tt.want, RequestIDFromContext(ctx))
		})
	}
}

func TestWithPurpose_InvalidIgnored(t *testing.T) {
	ctx := WithPurpose(context.Background(), "../faqs")
	assert.Empty(t, PurposeFromContext(ctx))
}

func TestLogger_InContext(t *testing.T) {
	logger := &Logger{zap: zap.NewNop(), config: NewDefaultConfig()}
	ctx := WithLogger(context.Background(), logger)

	retrieved := FromContext(ctx)
	assert.Equal(t, logger, retrieved)
}

func TestLogger_FromContextMissing(t *testing.T) {
	retrieved := FromContext(context.Background())
	assert.NotNil(t, retrieved)
}

func assertFieldExists(t *testing.T, fields []zap.Field, key, expected string) {
	t.Helper()
	for _, field := range fields {
		if field.Key == key && field.String == expected {
			return
		}
	}
	t.Errorf("field %q with value %q not found", key, expected)
}
