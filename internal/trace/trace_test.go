package trace_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/alejandrodnm/forecastbot/internal/trace"
)

func TestStartSpan_DisabledIsNoop(t *testing.T) {
	require.NoError(t, trace.Init(trace.Config{Enabled: false}))
	assert.False(t, trace.Enabled())

	ctx, span := trace.StartSpan(context.Background(), "noop")
	assert.NotNil(t, ctx)
	assert.False(t, span.SpanContext().IsValid())
	trace.End(span, nil)
}

func TestStartSpan_ExportsOnShutdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, trace.Init(trace.Config{Enabled: true, Writer: &buf, Version: "test"}))
	assert.True(t, trace.Enabled())

	_, span := trace.StartSpan(context.Background(), "pipeline.Recommend")
	span.SetAttributes(attribute.String("symbol", "GOOGL"))
	assert.True(t, span.SpanContext().IsValid())
	trace.End(span, errors.New("boom"))

	require.NoError(t, trace.Shutdown(context.Background()))
	assert.False(t, trace.Enabled())

	out := buf.String()
	assert.Contains(t, out, "pipeline.Recommend")
	assert.Contains(t, out, "GOOGL")
	assert.Contains(t, out, "boom")
}
