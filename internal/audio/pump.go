package audio

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Pump pulls one frame per 1/FPS seconds and writes it to w until ctx is
// done. Pulling drains finished voices, so a mixer that feeds nothing should
// still be pumped into io.Discard.
func (m *Mixer) Pump(ctx context.Context, w io.Writer) error {
	ticker := time.NewTicker(time.Second / time.Duration(m.cfg.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.Write(m.GenerateFrame()); err != nil {
				return fmt.Errorf("audio: write frame: %w", err)
			}
		}
	}
}
