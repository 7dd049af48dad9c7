package telemetry

import (
	"context"
	"testing"

	"field-fighter/internal/config"
)

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.DefaultTelemetry())
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestExporterOptions(t *testing.T) {
	tests := []struct {
		endpoint string
		want     int
	}{
		{"", 0},
		{"localhost:4318", 2},
		{"https://collector.example:4318", 1},
	}
	for _, tt := range tests {
		if got := len(exporterOptions(tt.endpoint)); got != tt.want {
			t.Errorf("exporterOptions(%q) gave %d options, want %d", tt.endpoint, got, tt.want)
		}
	}
}

func TestNoopTracerRecordsNothing(t *testing.T) {
	_, span := NoopTracer().Start(context.Background(), "kinetic.strike")
	defer span.End()
	if span.IsRecording() {
		t.Error("noop span should not record")
	}
	if span.SpanContext().IsValid() {
		t.Error("noop span should have an invalid context")
	}
}
