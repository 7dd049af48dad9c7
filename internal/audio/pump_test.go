package audio

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestPumpWritesFrames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FPS = 100
	m := NewMixer(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	if err := m.Pump(ctx, &buf); err != nil {
		t.Fatalf("Pump: %v", err)
	}
	if buf.Len() == 0 || buf.Len()%m.FrameSize() != 0 {
		t.Errorf("Expected whole frames, got %d bytes (frame %d)", buf.Len(), m.FrameSize())
	}
}

func TestPumpStopsOnWriteError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FPS = 100
	m := NewMixer(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := m.Pump(ctx, failingWriter{}); err == nil {
		t.Error("Expected write error")
	}
}
