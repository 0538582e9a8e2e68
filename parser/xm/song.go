package xm

import "math"

// A decoded Extended Module. Everything reachable from a Song is owned by it
// and is never mutated after Decode returns.
type Song struct {
	Title       string // Song name from the module header.
	TrackerName string // Name of the tracker that saved the file.
	Version     uint16 // Format version, always 0x0104 for decoded songs.

	Flags             uint16 // Raw header flags.
	LinearFrequencies bool   // Flag bit 0: linear frequency table instead of Amiga periods.

	Channels        int // Fixed song-wide channel count. Every Row has exactly this many cells.
	Tempo           int // Default ticks per row.
	BPM             int // Default beats per minute.
	RestartPosition int // Order position playback loops back to.

	// Pattern indices in play order.
	Order []int

	Patterns    []Pattern
	Instruments []Instrument

	// Initial mixer state for each channel.
	ChannelStates []ChannelState
}

// ChannelState is the state a playback engine starts each channel in.
type ChannelState struct {
	Index  int
	Volume int
	Pan    int // 0..255, 128 is centre.
	Period int
}

const (
	defaultChannelPan    = 128
	defaultChannelPeriod = 1920 - 48*16
)

type Pattern struct {
	Rows []Row
}

// A row holds one Cell per channel.
type Row []Cell

// Note is a zero-based note number. Real notes are 0..95 (C-0 to B-7).
type Note int16

const (
	NoteNone   Note = -1 // No note in the cell.
	NoteKeyOff Note = 96 // Key-off event, stored on disk as 97.
)

// IsNote reports whether n is a playable note rather than a sentinel.
func (n Note) IsNote() bool { return n >= 0 && n < NoteKeyOff }

// None marks an absent instrument or volume column.
const None = -1

// EffectNone marks an absent effect column.
const EffectNone = -1

// Cell is one channel's event in one row. Volume and effect values are
// carried as stored; the decoder does not interpret them.
type Cell struct {
	Note       Note
	Instrument int16 // 1-based instrument number as stored, or None.
	Volume     int16 // Volume column byte, or None.
	Effect     int16 // Effect type, or EffectNone.
	Param      uint8 // Effect parameter, 0 when absent.
}

// EmptyCell is a cell with every field absent.
var EmptyCell = Cell{Note: NoteNone, Instrument: None, Volume: None, Effect: EffectNone}

type Instrument struct {
	Name  string
	Index int   // Zero-based slot. Pattern instrument n refers to Index n-1.
	Type  uint8 // Instrument type byte, almost always 0.

	// Maps each of the 96 notes to a sample index. Nil for sample-less instruments.
	KeyMap *[96]uint8

	Samples []Sample

	// Volume and pan envelopes. Always set when the instrument has samples.
	Volume *Envelope
	Pan    *Envelope

	Fadeout int // Volume fadeout rate.
	Vibrato Vibrato
}

// Vibrato holds an instrument's auto-vibrato settings.
type Vibrato struct {
	Type, Sweep, Depth, Rate int
}

type LoopType uint8

const (
	LoopNone LoopType = iota
	LoopForward
	LoopPingPong
)

func (l LoopType) String() string {
	switch l {
	case LoopNone:
		return "none"
	case LoopForward:
		return "forward"
	case LoopPingPong:
		return "ping-pong"
	default:
		return "unknown"
	}
}

type Sample struct {
	Name string

	Length     int // Length in frames. Always len(PCM).
	LoopStart  int // Loop start in frames.
	LoopLength int // Loop length in frames. Zero means no loop.
	Loop       LoopType
	Bits       int // Bit depth of the stored data, 8 or 16.

	RelativeNote int // Base note offset relative to C-4.
	FineTune     int // -128..127, in 1/128 semitone steps.
	Volume       int // 0..64.
	Pan          int // 0..255.

	// Linear PCM. 8-bit data is scaled to the 16-bit range.
	PCM []int16
}

// LoopEnd returns the frame just past the loop.
func (s *Sample) LoopEnd() int { return s.LoopStart + s.LoopLength }

// C4Rate is the playback rate of an untuned sample at C-4.
const C4Rate = 8363

// Rate returns the rate at which s plays its own base note, taking relative
// note and finetune into account.
func (s *Sample) Rate() float64 {
	semis := float64(s.RelativeNote) + float64(s.FineTune)/128
	return C4Rate * math.Pow(2, semis/12)
}

type EnvelopeFlags uint8

const (
	EnvEnabled EnvelopeFlags = 1 << iota
	EnvSustain
	EnvLoop
)

// EnvelopeSource tells whether an envelope came from the file or is the
// canonical default substituted for a disabled one.
type EnvelopeSource uint8

const (
	EnvelopeDeclared EnvelopeSource = iota
	EnvelopeDefault
)

type EnvelopePoint struct {
	Tick  int
	Value int
}

type Envelope struct {
	Points    []EnvelopePoint
	Flags     EnvelopeFlags
	Sustain   int // Point index of the sustain point.
	LoopStart int // Point index of the loop start.
	LoopEnd   int // Point index of the loop end.
	Source    EnvelopeSource
}

func (e *Envelope) Enabled() bool { return e.Flags&EnvEnabled != 0 }
func (e *Envelope) HasSustain() bool { return e.Flags&EnvSustain != 0 }
func (e *Envelope) Looped() bool { return e.Flags&EnvLoop != 0 }
