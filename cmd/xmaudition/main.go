package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"

	"github.com/QEStudios/XMDecoder/internal/audition"
	"github.com/QEStudios/XMDecoder/parser/xm"
	"github.com/spf13/pflag"
)

func main() {
	logger := log.New(os.Stdout, "", log.Ldate|log.Ltime)

	var (
		instrument int
		sample     int
		rate       int
		loops      int
	)
	pflag.IntVarP(&instrument, "instrument", "i", 1, "instrument number (1-based, as shown in patterns)")
	pflag.IntVarP(&sample, "sample", "s", 0, "sample index within the instrument")
	pflag.IntVar(&rate, "rate", 44100, "output sample rate")
	pflag.IntVar(&loops, "loops", 2, "times to repeat a looped sample after the first pass")
	pflag.Parse()

	if pflag.NArg() != 1 {
		logger.Fatalf("usage: xmaudition [flags] file.xm")
	}
	data, err := os.ReadFile(pflag.Arg(0))
	if err != nil {
		logger.Fatalf("error reading file: %v", err)
	}
	song, err := xm.Decode(data)
	if err != nil {
		logger.Fatalf("load rejected: %v", err)
	}

	if instrument < 1 || instrument > len(song.Instruments) {
		logger.Fatalf("instrument must be 1-%d, got %d", len(song.Instruments), instrument)
	}
	inst := &song.Instruments[instrument-1]
	if sample < 0 || sample >= len(inst.Samples) {
		logger.Fatalf("instrument %d %q has %d samples, got sample %d", instrument, inst.Name, len(inst.Samples), sample)
	}
	smp := &inst.Samples[sample]
	logger.Printf("Playing %q sample %d %q: %d frames at %.0f Hz, %s loop", inst.Name, sample, smp.Name, smp.Length, smp.Rate(), smp.Loop)

	player, err := audition.NewPlayer(rate)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer player.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := player.Play(ctx, audition.NewVoice(smp, rate, loops)); err != nil && !errors.Is(err, context.Canceled) {
		logger.Printf("playback failed: %v", err)
	}
}
