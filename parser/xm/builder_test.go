package xm

import (
	"encoding/binary"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

// Test helpers that assemble XM files byte by byte.

type testPattern struct {
	rows int
	data []byte
}

type testEnvelope struct {
	points    [][2]uint16
	typ       uint8
	sustain   uint8
	loopStart uint8
	loopEnd   uint8
}

type testSample struct {
	name       string
	data       []byte // Delta-encoded bytes as stored.
	loopStart  uint32 // In bytes.
	loopLength uint32 // In bytes.
	typ        uint8
	volume     uint8
	fineTune   int8
	pan        uint8
	relNote    int8
}

type testInstrument struct {
	name      string
	headerLen uint32 // Zero means 263 (or 29 for a sample-less instrument).
	keyMap    [96]uint8
	vol, pan  testEnvelope
	fadeout   uint16
	samples   []testSample
}

type testModule struct {
	title       string
	channels    int
	tempo, bpm  int
	restart     int
	flags       uint16
	order       []byte
	patterns    []testPattern
	instruments []testInstrument
}

func le16(b []byte, v uint16) []byte { return binary.LittleEndian.AppendUint16(b, v) }
func le32(b []byte, v uint32) []byte { return binary.LittleEndian.AppendUint32(b, v) }

func padded(s string, n int) []byte {
	out := make([]byte, n)
	copy(out, s)
	return out
}

func (m testModule) bytes() []byte {
	if m.channels == 0 {
		m.channels = 4
	}
	if len(m.order) == 0 {
		m.order = []byte{0}
	}
	b := []byte(Magic)
	b = append(b, padded(m.title, 20)...)
	b = append(b, 0x1a)
	b = append(b, padded("FastTracker v2.00", 20)...)
	b = le16(b, Version)
	b = le32(b, 20+256)
	b = le16(b, uint16(len(m.order)))
	b = le16(b, uint16(m.restart))
	b = le16(b, uint16(m.channels))
	b = le16(b, uint16(len(m.patterns)))
	b = le16(b, uint16(len(m.instruments)))
	b = le16(b, m.flags)
	b = le16(b, uint16(m.tempo))
	b = le16(b, uint16(m.bpm))
	b = append(b, padded(string(m.order), 256)...)

	for _, p := range m.patterns {
		b = append(b, encodePattern(p)...)
	}
	for _, inst := range m.instruments {
		b = append(b, encodeInstrument(inst)...)
	}
	return b
}

func encodePattern(p testPattern) []byte {
	b := le32(nil, 9)
	b = append(b, 0)
	b = le16(b, uint16(p.rows))
	b = le16(b, uint16(len(p.data)))
	return append(b, p.data...)
}

func encodeEnvelopePoints(b []byte, points [][2]uint16) []byte {
	for i := range maxEnvelopePoints {
		var p [2]uint16
		if i < len(points) {
			p = points[i]
		}
		b = le16(b, p[0])
		b = le16(b, p[1])
	}
	return b
}

func encodeInstrument(inst testInstrument) []byte {
	headerLen := inst.headerLen
	if headerLen == 0 {
		headerLen = 263
		if len(inst.samples) == 0 {
			headerLen = 29
		}
	}
	b := le32(nil, headerLen)
	b = append(b, padded(inst.name, 22)...)
	b = append(b, 0)
	b = le16(b, uint16(len(inst.samples)))
	if len(inst.samples) > 0 || headerLen > 29 {
		b = le32(b, 40)
		b = append(b, inst.keyMap[:]...)
		b = encodeEnvelopePoints(b, inst.vol.points)
		b = encodeEnvelopePoints(b, inst.pan.points)
		b = append(b, uint8(len(inst.vol.points)), uint8(len(inst.pan.points)))
		b = append(b, inst.vol.sustain, inst.vol.loopStart, inst.vol.loopEnd)
		b = append(b, inst.pan.sustain, inst.pan.loopStart, inst.pan.loopEnd)
		b = append(b, inst.vol.typ, inst.pan.typ)
		b = append(b, 0, 0, 0, 0) // Vibrato.
		b = le16(b, inst.fadeout)
	}
	for uint32(len(b)) < headerLen {
		b = append(b, 0)
	}

	for _, s := range inst.samples {
		b = le32(b, uint32(len(s.data)))
		b = le32(b, s.loopStart)
		b = le32(b, s.loopLength)
		b = append(b, s.volume, uint8(s.fineTune), s.typ, s.pan, uint8(s.relNote), 0)
		b = append(b, padded(s.name, 22)...)
	}
	for _, s := range inst.samples {
		b = append(b, s.data...)
	}
	return b
}

// deltas encodes 8-bit PCM values the way XM stores them.
func deltas(values ...int8) []byte {
	out := make([]byte, len(values))
	var prev int8
	for i, v := range values {
		out[i] = uint8(v - prev)
		prev = v
	}
	return out
}

// emptyPatternData packs rows*channels empty cells.
func emptyPatternData(rows, channels int) []byte {
	out := make([]byte, rows*channels)
	for i := range out {
		out[i] = cellPacked
	}
	return out
}

func decodeOK(t *testing.T, data []byte) *DecodeResult {
	t.Helper()
	res, err := NewDecoder(data, discard).Decode()
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return res
}

func dump(v any) string { return spew.Sdump(v) }
