// Package serial provides a log-sink stand-in for the link cable port:
// cable-link multiplayer is out of scope, but test ROMs that print
// diagnostics over serial still need SB/SC to behave plausibly.
package serial

import (
	"log/slog"

	"github.com/mrosa/dmgcore/internal/addr"
	"github.com/mrosa/dmgcore/internal/bit"
)

// Port is the minimal interface the mmu needs from a serial device.
type Port interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	Tick(cycles int)
}

// LogSink completes serial transfers immediately (or after the real
// ~4096-cycle-per-byte timing, with WithFixedTiming) and logs the
// transmitted byte, buffering until a line boundary for readability.
type LogSink struct {
	irqHandler func()
	sb, sc     uint8
	active     bool
	countdown  int

	immediate bool
	defaultRX uint8

	line []byte
}

// Option configures a LogSink at construction.
type Option func(*LogSink)

// WithFixedTiming makes the sink finish a transfer after the
// hardware-accurate ~4096 T-cycle delay instead of instantly.
func WithFixedTiming() Option { return func(s *LogSink) { s.immediate = false } }

// NewLogSink creates a serial device that calls irq when a transfer
// completes; the mmu wires irq to request the serial interrupt.
func NewLogSink(irq func(), opts ...Option) *LogSink {
	s := &LogSink{
		irqHandler: irq,
		immediate:  true,
		defaultRX:  0xFF,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LogSink) Read(address uint16) uint8 {
	switch address {
	case addr.SB:
		return s.sb
	case addr.SC:
		return s.sc
	default:
		return 0xFF
	}
}

func (s *LogSink) Write(address uint16, value uint8) {
	switch address {
	case addr.SB:
		s.sb = value
	case addr.SC:
		s.sc = value
		s.maybeStart()
	}
}

func (s *LogSink) Tick(cycles int) {
	if s.immediate || !s.active {
		return
	}
	s.countdown -= cycles
	if s.countdown <= 0 {
		s.complete()
	}
}

func (s *LogSink) maybeStart() {
	if s.active {
		return
	}
	if !bit.IsSet(7, s.sc) || !bit.IsSet(0, s.sc) {
		return
	}

	b := s.sb
	if b == 0 || b == '\n' || b == '\r' {
		if len(s.line) > 0 {
			slog.Info("serial", "line", string(s.line))
			s.line = s.line[:0]
		}
	} else {
		s.line = append(s.line, b)
	}

	if s.immediate {
		s.complete()
		return
	}
	s.active = true
	s.countdown = 4096
}

func (s *LogSink) complete() {
	s.sb = s.defaultRX
	s.sc = bit.Reset(7, s.sc)
	s.active = false
	s.countdown = 0
	if s.irqHandler != nil {
		s.irqHandler()
	}
}
