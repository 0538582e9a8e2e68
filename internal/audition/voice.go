// Package audition plays single decoded samples on the system audio device.
package audition

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/QEStudios/XMDecoder/parser/xm"
)

// Voice streams one sample as signed 16-bit little-endian mono frames.
// A looped sample plays its loop Loops more times after the first pass.
type Voice struct {
	pcm       []int16
	loopStart int
	loopLen   int
	loopsLeft int

	pos  float64 // Position in source frames.
	step float64 // Source frames per output frame.
	done bool
}

// NewVoice prepares s for playback at outRate.
func NewVoice(s *xm.Sample, outRate int, loops int) *Voice {
	return newVoice(s.PCM, s.LoopStart, s.LoopLength, loops, s.Rate()/float64(outRate))
}

func newVoice(pcm []int16, loopStart, loopLen, loops int, step float64) *Voice {
	if loopLen <= 0 || loopStart+loopLen > len(pcm) {
		loopLen, loops = 0, 0
	}
	return &Voice{
		pcm:       pcm,
		loopStart: loopStart,
		loopLen:   loopLen,
		loopsLeft: max(loops, 0),
		step:      step,
		done:      len(pcm) == 0,
	}
}

// frame returns the interpolated frame at the current position.
func (v *Voice) frame() int16 {
	i := int(v.pos)
	frac := v.pos - float64(i)
	a := float64(v.pcm[i])
	next := i + 1
	if next >= v.loopStart+v.loopLen && v.loopLen > 0 && v.loopsLeft > 0 {
		next -= v.loopLen
	}
	b := a
	if next < len(v.pcm) {
		b = float64(v.pcm[next])
	}
	return int16(math.Round(a + (b-a)*frac))
}

// advance moves to the next output frame and reports whether one is left.
// While repeats remain, reaching the loop end jumps back into the loop;
// frames after the loop end only play after the last repeat.
func (v *Voice) advance() bool {
	v.pos += v.step
	loopEnd := float64(v.loopStart + v.loopLen)
	for v.loopLen > 0 && v.loopsLeft > 0 && v.pos >= loopEnd {
		v.pos -= float64(v.loopLen)
		v.loopsLeft--
	}
	if v.pos >= float64(len(v.pcm)) {
		v.done = true
		return false
	}
	return true
}

// Read implements io.Reader.
func (v *Voice) Read(p []byte) (int, error) {
	if v.done {
		return 0, io.EOF
	}
	n := 0
	for n+2 <= len(p) && !v.done {
		binary.LittleEndian.PutUint16(p[n:], uint16(v.frame()))
		n += 2
		v.advance()
	}
	return n, nil
}

// Done reports whether the voice has played to the end.
func (v *Voice) Done() bool { return v.done }
