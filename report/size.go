package report

import (
	"unsafe"

	"github.com/QEStudios/XMDecoder/parser/xm"
)

// Footprint is the memory a decoded song holds, split by kind of data.
type Footprint struct {
	Patterns  int // Cell storage.
	Samples   int // PCM storage.
	Envelopes int // Envelope points.
}

// Total returns the size in bytes of all decoded data.
func (f Footprint) Total() int {
	return f.Patterns + f.Samples + f.Envelopes
}

// CalculateSize returns the size in bytes of a sample's PCM.
func CalculateSize(s *xm.Sample) int {
	return len(s.PCM) * int(unsafe.Sizeof(int16(0)))
}

// SongFootprint adds up the decoded data held by s. Slice headers and
// strings are not counted.
func SongFootprint(s *xm.Song) Footprint {
	var f Footprint
	cellSize := int(unsafe.Sizeof(xm.Cell{}))
	for _, p := range s.Patterns {
		for _, row := range p.Rows {
			f.Patterns += len(row) * cellSize
		}
	}

	pointSize := int(unsafe.Sizeof(xm.EnvelopePoint{}))
	for _, inst := range s.Instruments {
		for i := range inst.Samples {
			f.Samples += CalculateSize(&inst.Samples[i])
		}
		for _, env := range []*xm.Envelope{inst.Volume, inst.Pan} {
			if env != nil {
				f.Envelopes += len(env.Points) * pointSize
			}
		}
	}
	return f
}
