// Package backend presents emulator frames to a host surface (a
// terminal, a headless frame-count budget, a PNG snapshot, or a
// one-way telemetry feed) and forwards button input back in.
package backend

import "github.com/mrosa/dmgcore/internal/emulator"

// Backend drives an emulator until its own natural stopping condition
// (window closed, frame budget reached, interrupt signal) and returns
// any error encountered along the way.
type Backend interface {
	Run(e *emulator.Emulator) error
}
