// Command dmgcore is the CLI entrypoint: it loads a ROM, wires up the
// requested presenter backend, and runs the emulator until that
// backend's natural stopping condition.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/sqweek/dialog"
	"github.com/urfave/cli"

	"github.com/mrosa/dmgcore/internal/backend"
	"github.com/mrosa/dmgcore/internal/backend/headless"
	"github.com/mrosa/dmgcore/internal/backend/telemetry"
	"github.com/mrosa/dmgcore/internal/backend/terminal"
	"github.com/mrosa/dmgcore/internal/cpu"
	"github.com/mrosa/dmgcore/internal/emulator"
	"github.com/mrosa/dmgcore/internal/savestate"
)

func main() {
	app := cli.NewApp()
	app.Name = "dmgcore"
	app.Usage = "dmgcore [options] <ROM file>"
	app.Description = "A Game Boy (DMG/Pocket/Color/SGB) emulator core"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "path, p", Usage: "Path to the ROM file (or an archive containing exactly one)"},
		cli.BoolFlag{Name: "headless", Usage: "Run without a display, for a fixed number of frames"},
		cli.IntFlag{Name: "frames", Usage: "Number of frames to run in --headless mode", Value: 0},
		cli.BoolFlag{Name: "verbose", Usage: "Enable debug-level logging"},
		cli.StringFlag{Name: "backend", Usage: "Presenter: terminal (the headless runner is selected with --headless)", Value: "terminal"},
		cli.StringFlag{Name: "telemetry-addr", Usage: "If set, serve a one-way websocket telemetry feed at this address (e.g. :8090)"},
		cli.StringFlag{Name: "snapshot-dir", Usage: "Directory for periodic PNG snapshots in --headless mode"},
		cli.IntFlag{Name: "snapshot-interval", Usage: "Save a snapshot every N frames in --headless mode (0 = disabled)", Value: 0},
		cli.StringFlag{Name: "save-state", Usage: "Load this save-state file before running, and write it back out on a clean exit"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("dmgcore: exiting with error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("verbose") {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	romPath, err := resolveROMPath(c)
	if err != nil {
		return err
	}

	e, err := emulator.New(emulator.Config{
		Variant:  cpu.VariantDMG,
		ROMPath:  romPath,
		Headless: c.Bool("headless"),
		Verbose:  c.Bool("verbose"),
	})
	if err != nil {
		return fmt.Errorf("dmgcore: %w", err)
	}
	defer e.Close()

	if statePath := c.String("save-state"); statePath != "" {
		if _, err := os.Stat(statePath); err == nil {
			if err := savestate.LoadFromFile(e, statePath); err != nil {
				return fmt.Errorf("dmgcore: loading save state: %w", err)
			}
			slog.Info("dmgcore: resumed from save state", "path", statePath)
		}
	}

	b, err := resolveBackend(c)
	if err != nil {
		return err
	}

	runErr := b.Run(e)

	if statePath := c.String("save-state"); statePath != "" && runErr == nil {
		if err := savestate.SaveToFile(e, statePath); err != nil {
			slog.Error("dmgcore: failed to write save state", "path", statePath, "error", err)
		}
	}

	return runErr
}

func resolveROMPath(c *cli.Context) (string, error) {
	if path := c.String("path"); path != "" {
		return path, nil
	}
	if c.NArg() > 0 {
		return c.Args().Get(0), nil
	}

	path, err := dialog.File().Filter("Game Boy ROM", "gb", "gbc", "7z").Title("Select a ROM").Load()
	if err != nil {
		cli.ShowAppHelp(c)
		return "", errors.New("dmgcore: no ROM path provided")
	}
	return path, nil
}

// resolveBackend picks the presenter. --headless takes priority (it
// requires --frames and ignores --backend); otherwise --backend picks
// among the interactive presenters.
func resolveBackend(c *cli.Context) (backend.Backend, error) {
	var b backend.Backend

	switch {
	case c.Bool("headless"):
		frames := c.Int("frames")
		if frames <= 0 {
			return nil, errors.New("dmgcore: --headless requires --frames with a positive value")
		}
		b = headless.Backend{
			Frames:        frames,
			SnapshotEvery: c.Int("snapshot-interval"),
			SnapshotDir:   c.String("snapshot-dir"),
		}
	case c.String("backend") == "terminal", c.String("backend") == "":
		b = &terminal.Backend{}
	default:
		return nil, fmt.Errorf("dmgcore: unknown backend %q (want terminal)", c.String("backend"))
	}

	if addr := c.String("telemetry-addr"); addr != "" {
		b = &telemetry.Server{Addr: addr, Wrapped: b}
	}
	return b, nil
}
