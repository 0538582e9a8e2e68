package report

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unicode"

	"github.com/QEStudios/XMDecoder/parser/xm"
)

const wavHeaderSize = 44

// EncodeWAV encodes mono 16-bit PCM as a RIFF/WAVE file.
func EncodeWAV(pcm []int16, sampleRate int) []byte {
	const (
		channels      = 1
		bytesPerFrame = 2
	)
	dataSize := len(pcm) * bytesPerFrame
	out := make([]byte, wavHeaderSize+dataSize)
	copy(out[0:], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+dataSize))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1) // Integer PCM.
	binary.LittleEndian.PutUint16(out[22:], channels)
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(sampleRate*channels*bytesPerFrame))
	binary.LittleEndian.PutUint16(out[32:], channels*bytesPerFrame)
	binary.LittleEndian.PutUint16(out[34:], 16)
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, v := range pcm {
		binary.LittleEndian.PutUint16(out[wavHeaderSize+i*2:], uint16(v))
	}
	return out
}

// SampleFileName builds a file name for a ripped sample, e.g.
// "03-01-Bass_drum.wav". Instrument and sample numbers are 1-based.
func SampleFileName(inst *xm.Instrument, sample int) string {
	name := inst.Samples[sample].Name
	if name == "" {
		name = inst.Name
	}
	clean := strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r > unicode.MaxASCII, !unicode.IsPrint(r), strings.ContainsRune(`/\:*?"<>|`, r):
			return -1
		}
		return r
	}, name)
	if clean == "" {
		return fmt.Sprintf("%02d-%02d.wav", inst.Index+1, sample+1)
	}
	return fmt.Sprintf("%02d-%02d-%s.wav", inst.Index+1, sample+1, clean)
}
