package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestTestLogger_Creation(t *testing.T) {
	tl := NewTestLogger()
	assert.NotNil(t, tl.Logger)
	assert.NotNil(t, tl.observed)
}

func TestTestLogger_AssertLogged(t *testing.T) {
	tl := NewTestLogger()
	ctx := context.Background()

	tl.Info(ctx, "dictionary written", zap.String("file", "42-faqs.json"))

	tl.AssertLogged(t, zapcore.InfoLevel, "dictionary written")
}

func TestTestLogger_AssertNotLogged(t *testing.T) {
	tl := NewTestLogger()

	tl.AssertNotLogged(t, zapcore.ErrorLevel, "should not exist")
}

func TestTestLogger_AssertField(t *testing.T) {
	tl := NewTestLogger()
	ctx := context.Background()

	tl.Info(ctx, "test", zap.String("key", "value"), zap.Int("distance", 2))

	tl.AssertField(t, "test", "key", "value")
	tl.AssertField(t, "test", "distance", int64(2))
}

func TestTestLogger_AssertNoErrors(t *testing.T) {
	tl := NewTestLogger()
	ctx := context.Background()

	tl.Warn(ctx, "skipped entry")

	tl.AssertNoErrors(t)
}

func TestTestLogger_FilterAndReset(t *testing.T) {
	tl := NewTestLogger()
	ctx := context.Background()

	tl.Error(ctx, "unparsable dictionary file")
	assert.Equal(t, 1, tl.FilterMessage("unparsable").Len())

	tl.Reset()
	assert.Empty(t, tl.All())
}
