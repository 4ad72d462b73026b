package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli"

	"github.com/nullstep/pocketcore"
)

func main() {
	app := cli.NewApp()
	app.Name = "pocket"
	app.Description = "A handheld console emulation engine"
	app.Usage = "pocket [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without rendering, for a fixed number of frames",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
			Value: 0,
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Write a frame snapshot every N frames in headless mode (0 = disabled)",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to write frame snapshots (default: temp directory)",
		},
		cli.StringFlag{
			Name:  "load-state",
			Usage: "Path to a save state to resume from instead of booting the ROM fresh",
		},
		cli.StringFlag{
			Name:  "save-state-out",
			Usage: "Path to write a save state to after the run completes",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("pocket exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	rom, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("reading ROM: %w", err)
	}

	var engine *pocket.Engine
	if statePath := c.String("load-state"); statePath != "" {
		data, err := os.ReadFile(statePath)
		if err != nil {
			return fmt.Errorf("reading save state: %w", err)
		}
		engine, err = pocket.LoadState(rom, data)
		if err != nil {
			return fmt.Errorf("loading save state: %w", err)
		}
		slog.Info("resumed from save state", "path", statePath)
	} else {
		engine, err = pocket.New(rom, nil)
		if err != nil {
			return fmt.Errorf("constructing engine: %w", err)
		}
	}

	if !c.Bool("headless") {
		return errors.New("interactive mode is not implemented; pass --headless")
	}

	frames := c.Int("frames")
	if frames <= 0 {
		return errors.New("headless mode requires --frames with a positive value")
	}

	snapshotInterval := c.Int("snapshot-interval")
	snapshotDir := c.String("snapshot-dir")
	if snapshotInterval > 0 {
		if snapshotDir == "" {
			tempDir, err := os.MkdirTemp("", "pocket-snapshots-*")
			if err != nil {
				return fmt.Errorf("creating snapshot directory: %w", err)
			}
			snapshotDir = tempDir
		} else if err := os.MkdirAll(snapshotDir, 0755); err != nil {
			return fmt.Errorf("creating snapshot directory: %w", err)
		}
	}

	romName := filepath.Base(romPath)

	slog.Info("running headless", "rom", romName, "frames", frames, "snapshot_interval", snapshotInterval)

	frameDuration := frameDurationFor()
	for i := 0; i < frames; i++ {
		engine.Emulate(frameDuration)

		if snapshotInterval > 0 && (i+1)%snapshotInterval == 0 {
			snapshotPath := filepath.Join(snapshotDir, fmt.Sprintf("%s_frame_%d.txt", romName, i+1))
			if err := writeFrameSnapshot(engine, snapshotPath, i+1); err != nil {
				slog.Error("failed to write snapshot", "frame", i+1, "path", snapshotPath, "error", err)
			}
		}

		if (i+1)%60 == 0 {
			slog.Info("progress", "completed", i+1, "total", frames)
		}
	}

	slog.Info("headless run completed", "frames", engine.FrameCounter())

	if outPath := c.String("save-state-out"); outPath != "" {
		data, err := engine.SaveState()
		if err != nil {
			return fmt.Errorf("encoding save state: %w", err)
		}
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return fmt.Errorf("writing save state: %w", err)
		}
		slog.Info("wrote save state", "path", outPath)
	}

	return nil
}

// frameDurationFor returns one frame's worth of wall-clock time at the
// Game Boy's ~59.7 Hz refresh rate, to drive Engine.Emulate one frame at a
// time in headless mode.
func frameDurationFor() time.Duration {
	const tCyclesPerFrame = 70224
	return time.Duration(tCyclesPerFrame) * time.Second / 4194304
}

func writeFrameSnapshot(engine *pocket.Engine, path string, frame int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "# pocket frame snapshot\n")
	fmt.Fprintf(file, "# frame %d\n", frame)
	fmt.Fprintf(file, "# resolution: 160x144, one character per pixel (space/./+/#)\n")

	fb := engine.FrameBuffer()
	const width, height = 160, 144
	for y := 0; y < height; y++ {
		line := make([]byte, width)
		for x := 0; x < width; x++ {
			line[x] = shadeChar(fb.GetPixel(x, y))
		}
		file.Write(line)
		file.Write([]byte{'\n'})
	}

	return nil
}

// shadeChar maps a packed RGBA pixel to one of four characters by its red
// channel, darkest to lightest: a quick, dependency-free way to eyeball a
// frame's shape from a text snapshot.
func shadeChar(pixel uint32) byte {
	shade := byte(pixel >> 24)
	switch {
	case shade < 0x30:
		return '#'
	case shade < 0x70:
		return '+'
	case shade < 0xC0:
		return '.'
	default:
		return ' '
	}
}
