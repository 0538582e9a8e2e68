package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/QEStudios/XMDecoder/parser/xm"
	"github.com/QEStudios/XMDecoder/report"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/pflag"
	"github.com/sqweek/dialog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "", log.Ldate|log.Ltime)

	// Get the current working directory.
	cwd, err := os.Getwd()
	if err != nil {
		logger.Fatalf("failed to get current working directory: %v", err)
	}

	var (
		allPatterns bool
		pattern     int
		instruments bool
		dump        bool
		dumpDepth   int
		ripDir      string
		rate        int
		quiet       bool
	)
	pflag.BoolVarP(&allPatterns, "patterns", "p", false, "print every pattern")
	pflag.IntVar(&pattern, "pattern", -1, "print a single pattern")
	pflag.BoolVarP(&instruments, "instruments", "i", false, "print instruments and samples")
	pflag.BoolVar(&dump, "dump", false, "dump the decoded song structure")
	pflag.IntVar(&dumpDepth, "dump-depth", 4, "maximum nesting shown by --dump (0 for no limit)")
	pflag.StringVar(&ripDir, "rip", "", "write every sample as a WAV file into this directory")
	pflag.IntVar(&rate, "rate", 0, "WAV sample rate (default: each sample's C-4 rate)")
	pflag.BoolVarP(&quiet, "quiet", "q", false, "do not log decoder progress")
	pflag.Parse()

	// Get the path of the module.
	path, err := choosePath(cwd, pflag.Args())
	if err != nil {
		if errors.Is(err, dialog.ErrCancelled) {
			logger.Printf("User cancelled the file dialog")
			os.Exit(1)
		}
		logger.Fatalf("failed to determine file path: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Fatalf("error reading file: %v", err)
	}

	decodeLogger := logger
	if quiet {
		decodeLogger = log.New(io.Discard, "", 0)
	}
	res, err := xm.NewDecoder(data, decodeLogger).Decode()
	if err != nil {
		logger.Fatalf("load rejected: %v", err)
	}
	song := res.Song
	for _, w := range res.Warnings {
		logger.Printf("warning: %s", w)
	}

	fmt.Print(report.Summary(song))

	if instruments {
		fmt.Print(report.Instruments(song))
	}

	if allPatterns || pattern >= 0 {
		width := 0
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
		}
		for i, p := range song.Patterns {
			if !allPatterns && i != pattern {
				continue
			}
			fmt.Printf("\n  - Pattern %02X (%d rows):\n", i, len(p.Rows))
			fmt.Print(report.FormatPattern(p, song.Channels, width, 4))
		}
		if !allPatterns && pattern >= len(song.Patterns) {
			logger.Fatalf("pattern %d does not exist, the song has %d", pattern, len(song.Patterns))
		}
	}

	if dump {
		cfg := spew.ConfigState{Indent: "  ", MaxDepth: dumpDepth, DisablePointerAddresses: true}
		cfg.Dump(song)
	}

	if ripDir != "" {
		n, err := ripSamples(song, ripDir, rate)
		if err != nil {
			logger.Fatalf("rip failed: %v", err)
		}
		logger.Printf("Wrote %d samples to %s", n, ripDir)
	}
}

// ripSamples writes every sample of s to dir as a WAV file. A rate of zero
// uses each sample's own C-4 rate.
func ripSamples(s *xm.Song, dir string, rate int) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	var g errgroup.Group
	g.SetLimit(8)
	count := 0
	for i := range s.Instruments {
		inst := &s.Instruments[i]
		for j := range inst.Samples {
			smp := &inst.Samples[j]
			if smp.Length == 0 {
				continue
			}
			count++
			name := filepath.Join(dir, report.SampleFileName(inst, j))
			g.Go(func() error {
				r := rate
				if r <= 0 {
					r = int(math.Round(smp.Rate()))
				}
				if err := os.WriteFile(name, report.EncodeWAV(smp.PCM, r), 0o644); err != nil {
					return fmt.Errorf("instrument %d: sample %d: %w", inst.Index+1, j, err)
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return count, nil
}

// choosePath returns the file path either from the command-line args
// or from an interactive file dialog.
func choosePath(cwd string, args []string) (string, error) {
	// If an argument was passed to the program, use it.
	if len(args) > 0 {
		absPath, err := filepath.Abs(args[0])
		if err != nil {
			return "", fmt.Errorf("cannot get absolute path: %w", err)
		}
		if err := validatePath(absPath); err != nil {
			return "", fmt.Errorf("passed argument is not a valid path: %w", err)
		}
		return absPath, nil
	}

	// Otherwise open the file dialog.
	path, err := dialog.
		File().
		Title("Open Extended Module").
		Filter("FastTracker 2 modules (*.xm)", "xm").
		SetStartDir(cwd).
		Load()
	if err != nil {
		// Propagate the error. Caller will check for dialog.ErrCancelled.
		return "", err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot get absolute path: %w", err)
	}

	// Check for empty path just in case.
	if absPath == "" {
		return "", dialog.ErrCancelled
	}
	if err := validatePath(absPath); err != nil {
		return "", fmt.Errorf("dialog selection invalid: %w", err)
	}
	return absPath, nil
}

// validatePath performs simple checks to verify if a file exists or not.
func validatePath(p string) error {
	if strings.ToLower(filepath.Ext(p)) != ".xm" {
		return fmt.Errorf("file must have .xm extension")
	}
	if _, err := os.Stat(p); err != nil {
		return fmt.Errorf("cannot stat file: %w", err)
	}
	return nil
}
