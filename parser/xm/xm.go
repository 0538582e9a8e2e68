// Package xm decodes FastTracker 2 Extended Modules into an immutable Song.
//
// Decoding is all-or-nothing: either a complete Song is returned or a
// *DecodeError tagged with one of ErrFormat, ErrTruncated,
// ErrInconsistentHeader or ErrMalformedSample. Every read is bounds-checked,
// so hostile input fails instead of reading past the buffer or looping.
package xm

import (
	"fmt"
	"io"
	"log"
	"strings"
)

// Magic is the text every XM file starts with.
const Magic = "Extended Module: "

// Version is the only format revision this decoder reads.
const Version = 0x0104

// Offsets inside the module header.
const (
	titleOff        = 17
	titleLen        = 20
	trackerOff      = 38
	trackerLen      = 20
	versionOff      = 58
	headerLenOff    = 60
	songLengthOff   = 64
	restartOff      = 66
	channelsOff     = 68
	patternsOff     = 70
	instrumentsOff  = 72
	flagsOff        = 74
	tempoOff        = 76
	bpmOff          = 78
	orderOff        = 80
	fixedHeaderLen  = orderOff - headerLenOff // Header length must cover at least this.
	maxOrderLength  = 256
	maxChannels     = 256
	maxPatterns     = 256
	maxInstruments  = 256
	flagLinearFreqs = 0x01
)

// Warning is a problem that did not stop decoding.
type Warning struct {
	Offset  int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("offset 0x%x: %s", w.Offset, w.Message)
}

type DecodeResult struct {
	Song     *Song
	Warnings []Warning
}

// Decoder decodes one module buffer. A Decoder can only be used once.
type Decoder struct {
	reader *Reader
	logger *log.Logger
	song   Song

	warnings []Warning

	// Whether or not Decode has already been called.
	used bool
}

// NewDecoder creates a decoder for data. A nil logger logs to log.Default().
// The decoder copies everything it keeps, so data may be reused once Decode
// returns.
func NewDecoder(data []byte, logger *log.Logger) *Decoder {
	if logger == nil {
		logger = log.Default()
	}
	return &Decoder{
		reader: NewReader(data),
		logger: logger,
	}
}

var discard = log.New(io.Discard, "", 0)

// Decode decodes data as a complete module without logging.
func Decode(data []byte) (*Song, error) {
	res, err := NewDecoder(data, discard).Decode()
	if err != nil {
		return nil, err
	}
	return res.Song, nil
}

// warn records a non-fatal problem and logs it.
func (d *Decoder) warn(off int, format string, args ...any) {
	w := Warning{Offset: off, Message: fmt.Sprintf(format, args...)}
	d.warnings = append(d.warnings, w)
	d.logger.Printf("warning: %s", w)
}

// Decode parses the whole buffer. On error no Song is returned. Failures
// are *DecodeError values, except ErrDecoderUsed on a second call.
func (d *Decoder) Decode() (*DecodeResult, error) {
	if d.used {
		return nil, ErrDecoderUsed
	}
	d.used = true

	off, err := d.decodeHeader()
	if err != nil {
		return nil, err
	}

	numPatterns := len(d.song.Patterns)
	for i := range numPatterns {
		d.song.Patterns[i], off, err = d.decodePattern(i, off)
		if err != nil {
			return nil, withContext(err, "pattern %d", i)
		}
	}

	for i := range d.song.Instruments {
		d.song.Instruments[i], off, err = d.loadInstrument(i, off)
		if err != nil {
			return nil, withContext(err, "instrument %d", i)
		}
	}

	if off < d.reader.Len() {
		d.logger.Printf("%d trailing bytes after the last instrument", d.reader.Len()-off)
	}
	d.logger.Printf("loaded %q", d.song.Title)

	song := d.song
	return &DecodeResult{Song: &song, Warnings: d.warnings}, nil
}

// decodeHeader reads the module header and order table, sizes the pattern
// and instrument slices, and returns the offset of the first pattern.
func (d *Decoder) decodeHeader() (int, error) {
	r := d.reader
	if r.Len() < len(Magic) {
		head, _ := r.slice(0, r.Len())
		if strings.HasPrefix(Magic, string(head)) {
			return 0, truncated("module signature", &BoundsError{Offset: 0, Size: len(Magic), Len: r.Len()})
		}
		return 0, formatErrorf(0, "file is %d bytes, too short for an XM header", r.Len())
	}
	magic, _ := r.slice(0, len(Magic))
	if string(magic) != Magic {
		return 0, formatErrorf(0, "missing %q signature", Magic)
	}
	if err := r.Require(0, orderOff); err != nil {
		return 0, truncated("module header", err)
	}

	s := &d.song
	s.Title, _ = r.String(titleOff, titleLen)
	s.TrackerName, _ = r.String(trackerOff, trackerLen)
	s.Version, _ = r.U16(versionOff)
	if s.Version != Version {
		return 0, formatErrorf(versionOff, "unsupported version 0x%04x, need 0x%04x", s.Version, Version)
	}

	hlen, _ := r.U32(headerLenOff)
	songLength, _ := r.U16(songLengthOff)
	restart, _ := r.U16(restartOff)
	channels, _ := r.U16(channelsOff)
	patterns, _ := r.U16(patternsOff)
	instruments, _ := r.U16(instrumentsOff)
	s.Flags, _ = r.U16(flagsOff)
	tempo, _ := r.U16(tempoOff)
	bpm, _ := r.U16(bpmOff)

	switch {
	case songLength > maxOrderLength:
		return 0, inconsistentf(songLengthOff, "song length %d exceeds %d", songLength, maxOrderLength)
	case int(hlen) < fixedHeaderLen+int(songLength):
		return 0, inconsistentf(headerLenOff, "header length %d cannot hold %d order entries", hlen, songLength)
	case channels == 0 || channels > maxChannels:
		return 0, inconsistentf(channelsOff, "channel count %d is outside 1..%d", channels, maxChannels)
	case patterns > maxPatterns:
		return 0, inconsistentf(patternsOff, "pattern count %d exceeds %d", patterns, maxPatterns)
	case instruments > maxInstruments:
		return 0, inconsistentf(instrumentsOff, "instrument count %d exceeds %d", instruments, maxInstruments)
	}

	dataOff := headerLenOff + int(hlen)
	if err := r.Require(headerLenOff, int(hlen)); err != nil {
		return 0, truncated("module header", err)
	}

	s.Channels = int(channels)
	s.Tempo = int(tempo)
	s.BPM = int(bpm)
	s.RestartPosition = int(restart)
	s.LinearFrequencies = s.Flags&flagLinearFreqs != 0

	d.logger.Printf("header length %d", hlen)
	d.logger.Printf("song length %d, %d channels, %d patterns, %d instruments", songLength, channels, patterns, instruments)
	d.logger.Printf("flags=%d tempo %d bpm %d", s.Flags, tempo, bpm)

	order, _ := r.slice(orderOff, int(songLength))
	s.Order = make([]int, songLength)
	for i, p := range order {
		s.Order[i] = int(p)
		if int(p) >= int(patterns) {
			d.warn(orderOff+i, "order position %d plays pattern %d, only %d exist", i, p, patterns)
		}
	}
	if songLength > 0 && int(restart) >= int(songLength) {
		d.warn(restartOff, "restart position %d is past song length %d", restart, songLength)
	}

	s.ChannelStates = make([]ChannelState, s.Channels)
	for i := range s.ChannelStates {
		s.ChannelStates[i] = ChannelState{
			Index:  i,
			Pan:    defaultChannelPan,
			Period: defaultChannelPeriod,
		}
	}

	s.Patterns = make([]Pattern, patterns)
	s.Instruments = make([]Instrument, instruments)
	return dataOff, nil
}

// withContext prefixes a DecodeError's message without changing its kind.
func withContext(err error, format string, args ...any) error {
	de, ok := err.(*DecodeError)
	if !ok {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
	}
	out := *de
	prefix := fmt.Sprintf(format, args...)
	if out.Msg == "" {
		out.Msg = prefix
	} else if !strings.HasPrefix(out.Msg, prefix) {
		out.Msg = prefix + ": " + out.Msg
	}
	return &out
}
