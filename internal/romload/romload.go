// Package romload loads a Game Boy ROM image from disk, transparently
// unpacking a .7z archive when the path points at one.
package romload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

// Load reads path and returns the raw ROM bytes. A .gb/.gbc file is
// returned as-is; a .7z archive must contain exactly one entry, which
// is extracted and returned in its place.
func Load(path string) ([]byte, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".7z":
		return loadSevenZip(path)
	default:
		return os.ReadFile(path)
	}
}

func loadSevenZip(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := sevenzip.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("romload: opening 7z archive: %w", err)
	}

	files := romEntries(r.File)
	if len(files) != 1 {
		return nil, fmt.Errorf("romload: archive %s must contain exactly one ROM file, found %d", path, len(files))
	}

	entry, err := files[0].Open()
	if err != nil {
		return nil, fmt.Errorf("romload: extracting %s: %w", files[0].Name, err)
	}
	defer entry.Close()

	return io.ReadAll(entry)
}

// romEntries filters out directory entries, leaving only candidate ROM
// files. An archive may legitimately contain a single regular file
// alongside directory records for its own layout.
func romEntries(files []*sevenzip.File) []*sevenzip.File {
	var out []*sevenzip.File
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		out = append(out, f)
	}
	return out
}
