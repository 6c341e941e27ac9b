// Package savestate serializes a running emulator into a versioned,
// checksummed blob that can be written to and restored from disk via
// the --save-state CLI flag.
package savestate

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/cespare/xxhash"

	"github.com/mrosa/dmgcore/internal/emulator"
)

// Version is bumped whenever emulator.State's shape changes in a way
// that breaks compatibility with previously written blobs.
//
// MBC bank-select latches (current ROM/RAM bank, RAM-enable, banking
// mode) are not captured: none of the MBC implementations expose
// them, and a freshly loaded cartridge always resets to bank 1 — a
// state loaded back in starts from that same reset point rather than
// wherever banking had advanced to when it was saved.
const Version = 1

type versionedState struct {
	Version int
	State   emulator.State
}

// Save serializes e's current state, gob-encodes it, and prepends an
// xxhash-64 checksum so Load can detect truncation or corruption.
func Save(e *emulator.Emulator) ([]byte, error) {
	vs := versionedState{Version: Version, State: e.Capture()}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(vs); err != nil {
		return nil, fmt.Errorf("savestate: encoding: %w", err)
	}

	payload := buf.Bytes()
	sum := xxhash.Sum64(payload)

	out := make([]byte, 8, 8+len(payload))
	for i := 0; i < 8; i++ {
		out[i] = byte(sum >> (8 * i))
	}
	return append(out, payload...), nil
}

// Load verifies the checksum, decodes the payload, and restores it
// into e. The cartridge must already be the one the blob was saved
// against (its digest is checked but the ROM itself is never
// reloaded from the blob).
func Load(e *emulator.Emulator, data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("savestate: blob too small (%d bytes)", len(data))
	}

	var want uint64
	for i := 0; i < 8; i++ {
		want |= uint64(data[i]) << (8 * i)
	}
	payload := data[8:]
	if got := xxhash.Sum64(payload); got != want {
		return fmt.Errorf("savestate: checksum mismatch (corrupt or truncated file)")
	}

	var vs versionedState
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&vs); err != nil {
		return fmt.Errorf("savestate: decoding: %w", err)
	}
	if vs.Version != Version {
		return fmt.Errorf("savestate: unsupported version %d (expected %d)", vs.Version, Version)
	}
	if vs.State.CartDigest != e.Cartridge().Digest() {
		return fmt.Errorf("savestate: blob was saved against a different ROM (digest mismatch)")
	}

	e.Restore(vs.State)
	return nil
}

// SaveToFile writes e's current state to path.
func SaveToFile(e *emulator.Emulator, path string) error {
	data, err := Save(e)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadFromFile reads and restores a save state previously written by
// SaveToFile.
func LoadFromFile(e *emulator.Emulator, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("savestate: reading %s: %w", path, err)
	}
	return Load(e, data)
}
