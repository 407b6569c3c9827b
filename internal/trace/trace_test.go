package trace

import (
	"context"
	"testing"
)

func TestDisabledTracing(t *testing.T) {
	t.Setenv("LOG_TRACING_ENABLED", "false")
	if err := Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if Enabled() {
		t.Fatal("Expected tracing to be disabled")
	}

	ctx, span := StartSpan(context.Background(), "noop")
	defer span.End()
	if span.SpanContext().IsValid() {
		t.Error("Expected an invalid span when tracing is off")
	}
	if _, _, ok := GetTraceFields(ctx); ok {
		t.Error("Expected no trace fields when tracing is off")
	}
}

func TestEnabledTracing(t *testing.T) {
	t.Setenv("LOG_TRACING_ENABLED", "true")
	if err := Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() {
		_ = Shutdown(context.Background())
		enabled = false
		tracer = nil
		tracerProvider = nil
	})

	ctx, span := StartSpan(context.Background(), "cycle")
	defer span.End()
	traceID, spanID, ok := GetTraceFields(ctx)
	if !ok {
		t.Fatal("Expected trace fields on a started span")
	}
	if len(traceID) != 32 || len(spanID) != 16 {
		t.Errorf("Expected hex ids of 32/16 chars, got %q/%q", traceID, spanID)
	}
}
