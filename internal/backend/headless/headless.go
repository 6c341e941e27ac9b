// Package headless runs an emulator for a fixed number of frames with
// no display attached, for CI runs and golden-trace generation.
package headless

import (
	"fmt"
	"log/slog"

	"github.com/mrosa/dmgcore/internal/backend/snapshot"
	"github.com/mrosa/dmgcore/internal/emulator"
)

// Backend advances the emulator Frames times, optionally writing a PNG
// snapshot of the framebuffer every SnapshotEvery frames into
// SnapshotDir (disabled when SnapshotEvery is 0).
type Backend struct {
	Frames        int
	SnapshotEvery int
	SnapshotDir   string
}

func (b Backend) Run(e *emulator.Emulator) error {
	if b.Frames <= 0 {
		return fmt.Errorf("headless: frames must be positive, got %d", b.Frames)
	}

	for i := 1; i <= b.Frames; i++ {
		e.RunFrame()

		if b.SnapshotEvery > 0 && i%b.SnapshotEvery == 0 {
			path := fmt.Sprintf("%s/frame_%06d.png", b.SnapshotDir, i)
			if err := snapshot.Save(e.ConsumeFrame(), path); err != nil {
				slog.Error("headless: failed to save snapshot", "frame", i, "path", path, "error", err)
			} else {
				slog.Info("headless: saved snapshot", "frame", i, "path", path)
			}
		} else if e.FrameReady() {
			e.ConsumeFrame()
		}

		if i%10 == 0 {
			slog.Info("headless: frame progress", "completed", i, "total", b.Frames)
		}
	}

	slog.Info("headless: run complete", "frames", b.Frames, "instructions", e.InstructionCount())
	return nil
}
