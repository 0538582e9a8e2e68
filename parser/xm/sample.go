package xm

import "encoding/binary"

const (
	sampleTypeLoopMask = 0x03
	sampleType16Bit    = 0x10
)

// DecodeDelta reconstructs linear PCM from delta-encoded sample bytes. Each
// stored value is the difference to the previous output frame. 8-bit frames
// wrap at 256 and are scaled to the 16-bit range; 16-bit frames wrap at 65536.
func DecodeDelta(raw []byte, sixteenBit bool) ([]int16, error) {
	if !sixteenBit {
		out := make([]int16, len(raw))
		var acc int8
		for i, d := range raw {
			acc += int8(d)
			out[i] = int16(acc) << 8
		}
		return out, nil
	}

	if len(raw)%2 != 0 {
		return nil, malformedSamplef(-1, "16-bit sample data has odd length %d", len(raw))
	}
	out := make([]int16, len(raw)/2)
	var acc int16
	for i := range out {
		acc += int16(binary.LittleEndian.Uint16(raw[i*2:]))
		out[i] = acc
	}
	return out, nil
}

// sampleHeader is one 40-byte sample header as stored, lengths in bytes.
type sampleHeader struct {
	length     int
	loopStart  int
	loopLength int
	volume     int
	fineTune   int
	typ        uint8
	pan        int
	relNote    int
	name       string

	dataOffset int // Offset of this sample's bytes inside the instrument's PCM block.
}

func (h *sampleHeader) sixteenBit() bool { return h.typ&sampleType16Bit != 0 }

// buildSample decodes the PCM for h from raw and produces a finished Sample
// with frame-based loop points and a normalized loop. Problems that do not
// stop decoding are passed to warn.
func buildSample(h sampleHeader, raw []byte, warn func(format string, args ...any)) (Sample, error) {
	pcm, err := DecodeDelta(raw, h.sixteenBit())
	if err != nil {
		return Sample{}, err
	}

	s := Sample{
		Name:         h.name,
		Length:       len(pcm),
		LoopStart:    h.loopStart,
		LoopLength:   h.loopLength,
		Loop:         LoopType(h.typ & sampleTypeLoopMask),
		Bits:         8,
		RelativeNote: h.relNote,
		FineTune:     h.fineTune,
		Volume:       h.volume,
		Pan:          h.pan,
		PCM:          pcm,
	}
	if s.Loop > LoopPingPong {
		// Both loop bits set plays as ping-pong in FT2.
		s.Loop = LoopPingPong
	}
	if h.sixteenBit() {
		s.Bits = 16
		s.LoopStart /= 2
		s.LoopLength /= 2
	}

	if s.Loop != LoopNone && s.LoopLength > 0 {
		switch {
		case s.LoopStart >= s.Length:
			warn("loop start %d is past sample end %d, loop disabled", s.LoopStart, s.Length)
			s.LoopStart, s.LoopLength = 0, 0
		case s.LoopEnd() > s.Length:
			warn("loop end %d is past sample end %d, clamped", s.LoopEnd(), s.Length)
			s.LoopLength = s.Length - s.LoopStart
		}
	}
	if s.Loop == LoopNone || s.LoopLength == 0 {
		s.Loop = LoopNone
		s.LoopStart, s.LoopLength = 0, 0
	}

	NormalizeLoop(&s)
	return s, nil
}
