// Package report prints decoded songs for people: summaries, tracker-style
// pattern tables and instrument listings.
package report

import (
	"fmt"
	"strings"

	"github.com/QEStudios/XMDecoder/parser/xm"
)

// Summary pretty-prints the song header, order list and totals.
func Summary(s *xm.Song) string {
	var b strings.Builder
	b.WriteString("XM Song:\n")
	fmt.Fprintf(&b, "- Title: %s\n", s.Title)
	fmt.Fprintf(&b, "- Tracker: %s (format 0x%04x)\n", s.TrackerName, s.Version)
	fmt.Fprintf(&b, "- Channels: %d\n", s.Channels)
	fmt.Fprintf(&b, "- Tempo: %d ticks/row, %d BPM\n", s.Tempo, s.BPM)
	b.WriteString("- Frequency table: ")
	if s.LinearFrequencies {
		b.WriteString("linear\n")
	} else {
		b.WriteString("Amiga\n")
	}

	order := make([]string, len(s.Order))
	for i, p := range s.Order {
		order[i] = fmt.Sprintf("%02X", p)
	}
	fmt.Fprintf(&b, "- Order (%d): %s\n", len(s.Order), strings.Join(order, " "))
	fmt.Fprintf(&b, "- Restart position: %d\n", s.RestartPosition)

	rows := 0
	for _, p := range s.Patterns {
		rows += len(p.Rows)
	}
	fmt.Fprintf(&b, "- Patterns: %d (%d rows)\n", len(s.Patterns), rows)

	samples := 0
	for _, inst := range s.Instruments {
		samples += len(inst.Samples)
	}
	fmt.Fprintf(&b, "- Instruments: %d (%d samples)\n", len(s.Instruments), samples)

	f := SongFootprint(s)
	fmt.Fprintf(&b, "[Decoded size: %s (patterns %s, samples %s, envelopes %s)]\n",
		plural(f.Total()), plural(f.Patterns), plural(f.Samples), plural(f.Envelopes))

	return b.String()
}

// Instruments lists every instrument with its envelopes and samples.
func Instruments(s *xm.Song) string {
	var b strings.Builder
	for _, inst := range s.Instruments {
		fmt.Fprintf(&b, "\n  - Instrument %02X: %q", inst.Index+1, inst.Name)
		if len(inst.Samples) == 0 {
			b.WriteString(" (no samples)\n")
			continue
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "    - Volume envelope: %s\n", describeEnvelope(inst.Volume))
		fmt.Fprintf(&b, "    - Pan envelope: %s\n", describeEnvelope(inst.Pan))
		if inst.Fadeout > 0 {
			fmt.Fprintf(&b, "    - Fadeout: %d\n", inst.Fadeout)
		}
		if v := inst.Vibrato; v.Depth > 0 {
			fmt.Fprintf(&b, "    - Vibrato: type %d, sweep %d, depth %d, rate %d\n", v.Type, v.Sweep, v.Depth, v.Rate)
		}

		for i, smp := range inst.Samples {
			fmt.Fprintf(&b, "    - Sample %d: %q, %d-bit, %d frames", i, smp.Name, smp.Bits, smp.Length)
			if smp.Loop != xm.LoopNone {
				fmt.Fprintf(&b, ", %s loop %d+%d", smp.Loop, smp.LoopStart, smp.LoopLength)
			}
			fmt.Fprintf(&b, ", volume %d, pan %d, relative note %+d, finetune %+d\n",
				smp.Volume, smp.Pan, smp.RelativeNote, smp.FineTune)
		}
	}
	return b.String()
}

func describeEnvelope(env *xm.Envelope) string {
	if env == nil {
		return "none"
	}
	if env.Source == xm.EnvelopeDefault {
		return "default"
	}
	points := make([]string, len(env.Points))
	for i, p := range env.Points {
		points[i] = fmt.Sprintf("%d:%d", p.Tick, p.Value)
	}
	out := strings.Join(points, " ")
	if env.HasSustain() {
		out += fmt.Sprintf(", sustain %d", env.Sustain)
	}
	if env.Looped() {
		out += fmt.Sprintf(", loop %d-%d", env.LoopStart, env.LoopEnd)
	}
	return out
}

// plural formats n bytes, pluralising the unit if needed.
func plural(n int) string {
	if n == 1 {
		return "1 byte"
	}
	return fmt.Sprintf("%d bytes", n)
}
