package xm

import "fmt"

// Offsets inside an instrument header.
const (
	instNameOff        = 4
	instNameLen        = 22
	instTypeOff        = 26
	instNumSamplesOff  = 27
	instSampleHdrOff   = 29
	instKeyMapOff      = 33
	instVolPointsOff   = 129
	instPanPointsOff   = 177
	instVolCountOff    = 225
	instPanCountOff    = 226
	instVolSustainOff  = 227
	instPanSustainOff  = 230
	instVolTypeOff     = 233
	instPanTypeOff     = 234
	instVibratoOff     = 235
	instFadeoutOff     = 239
	minInstHeaderLen   = instSampleHdrOff // Enough to hold the sample count.
	minSampledInstLen  = instFadeoutOff + 4
	minSampleHeaderLen = 40
	keyMapSize         = 96
)

// Offsets inside a sample header.
const (
	smpLengthOff    = 0
	smpLoopStartOff = 4
	smpLoopLenOff   = 8
	smpVolumeOff    = 12
	smpFineTuneOff  = 13
	smpTypeOff      = 14
	smpPanOff       = 15
	smpRelNoteOff   = 16
	smpNameOff      = 18
	smpNameLen      = 22
)

// loadInstrument decodes instrument index at off and returns the offset of
// the next instrument.
func (d *Decoder) loadInstrument(index, off int) (Instrument, int, error) {
	r := d.reader
	headerLen, err := r.U32(off)
	if err != nil {
		return Instrument{}, off, truncated("instrument header", err)
	}
	if headerLen < minInstHeaderLen {
		return Instrument{}, off, inconsistentf(off, "instrument header length %d is below %d", headerLen, minInstHeaderLen)
	}
	if err := r.Require(off, int(headerLen)); err != nil {
		return Instrument{}, off, truncated("instrument header", err)
	}

	inst := Instrument{Index: index}
	inst.Name, _ = r.String(off+instNameOff, instNameLen)
	inst.Type, _ = r.U8(off + instTypeOff)
	numSamples, _ := r.U16(off + instNumSamplesOff)

	if numSamples == 0 {
		d.logger.Printf("instrument %d: %q has no samples", index, inst.Name)
		return inst, off + int(headerLen), nil
	}
	if headerLen < minSampledInstLen {
		return Instrument{}, off, inconsistentf(off, "instrument with %d samples has header length %d, need %d", numSamples, headerLen, minSampledInstLen)
	}

	sampleHeaderLen, _ := r.U32(off + instSampleHdrOff)
	if sampleHeaderLen < minSampleHeaderLen {
		return Instrument{}, off, inconsistentf(off+instSampleHdrOff, "sample header length %d is below %d", sampleHeaderLen, minSampleHeaderLen)
	}

	keyMap := new([keyMapSize]uint8)
	km, _ := r.slice(off+instKeyMapOff, keyMapSize)
	copy(keyMap[:], km)
	for note, s := range keyMap {
		if int(s) >= int(numSamples) {
			d.warn(off+instKeyMapOff+note, "instrument %d: key map entry %d names sample %d of %d", index, note, s, numSamples)
			break
		}
	}
	inst.KeyMap = keyMap

	volEnv, err := readEnvelope(r, off, instVolPointsOff, instVolCountOff, instVolSustainOff, instVolTypeOff)
	if err != nil {
		return Instrument{}, off, err
	}
	panEnv, err := readEnvelope(r, off, instPanPointsOff, instPanCountOff, instPanSustainOff, instPanTypeOff)
	if err != nil {
		return Instrument{}, off, err
	}

	vib, _ := r.slice(off+instVibratoOff, 4)
	inst.Vibrato = Vibrato{Type: int(vib[0]), Sweep: int(vib[1]), Depth: int(vib[2]), Rate: int(vib[3])}
	fadeout, _ := r.U16(off + instFadeoutOff)
	inst.Fadeout = int(fadeout)

	inst.Volume = buildVolumeEnvelope(volEnv, inst.Fadeout)
	inst.Pan = buildPanEnvelope(panEnv)

	// All sample headers come first, then the PCM of every sample in order.
	hdrOff := off + int(headerLen)
	headers := make([]sampleHeader, numSamples)
	total := 0
	for i := range headers {
		h, err := readSampleHeader(r, hdrOff)
		if err != nil {
			return Instrument{}, off, truncated(fmt.Sprintf("instrument %d: sample %d header", index, i), err)
		}
		h.dataOffset = total
		headers[i] = h
		total += h.length
		hdrOff += int(sampleHeaderLen)
	}

	dataOff := hdrOff
	if err := r.Require(dataOff, total); err != nil {
		return Instrument{}, off, truncated(fmt.Sprintf("instrument %d: sample data", index), err)
	}
	d.logger.Printf("instrument %d: %q, %d samples, %d bytes of sample data", index, inst.Name, numSamples, total)

	inst.Samples = make([]Sample, numSamples)
	for i, h := range headers {
		raw, _ := r.slice(dataOff+h.dataOffset, h.length)
		warn := func(format string, args ...any) {
			d.warn(dataOff+h.dataOffset, "instrument %d: sample %d: %s", index, i, fmt.Sprintf(format, args...))
		}
		s, err := buildSample(h, raw, warn)
		if err != nil {
			if de, ok := err.(*DecodeError); ok && de.Offset < 0 {
				de.Offset = dataOff + h.dataOffset
				de.Msg = fmt.Sprintf("instrument %d: sample %d: %s", index, i, de.Msg)
			}
			return Instrument{}, off, err
		}
		inst.Samples[i] = s
	}
	return inst, dataOff + total, nil
}

func readEnvelope(r *Reader, off, pointsOff, countOff, sustainOff, typeOff int) (rawEnvelope, error) {
	count, _ := r.U8(off + countOff)
	typ, _ := r.U8(off + typeOff)
	idx, _ := r.slice(off+sustainOff, 3)
	raw := rawEnvelope{
		typ:       typ,
		sustain:   int(idx[0]),
		loopStart: int(idx[1]),
		loopEnd:   int(idx[2]),
	}
	if typ&uint8(EnvEnabled) == 0 {
		// Disabled envelopes often hold garbage counts; they are replaced anyway.
		return raw, nil
	}
	if count > maxEnvelopePoints {
		return rawEnvelope{}, inconsistentf(off+countOff, "envelope has %d points, limit is %d", count, maxEnvelopePoints)
	}
	raw.points = make([]EnvelopePoint, count)
	for i := range raw.points {
		p := off + pointsOff + i*4
		tick, _ := r.U16(p)
		value, _ := r.U16(p + 2)
		raw.points[i] = EnvelopePoint{Tick: int(tick), Value: int(value)}
	}
	return raw, nil
}

func readSampleHeader(r *Reader, off int) (sampleHeader, error) {
	if err := r.Require(off, minSampleHeaderLen); err != nil {
		return sampleHeader{}, err
	}
	length, _ := r.U32(off + smpLengthOff)
	loopStart, _ := r.U32(off + smpLoopStartOff)
	loopLen, _ := r.U32(off + smpLoopLenOff)
	volume, _ := r.U8(off + smpVolumeOff)
	fine, _ := r.I8(off + smpFineTuneOff)
	typ, _ := r.U8(off + smpTypeOff)
	pan, _ := r.U8(off + smpPanOff)
	rel, _ := r.I8(off + smpRelNoteOff)
	name, _ := r.String(off+smpNameOff, smpNameLen)
	return sampleHeader{
		length:     int(length),
		loopStart:  int(loopStart),
		loopLength: int(loopLen),
		volume:     int(volume),
		fineTune:   int(fine),
		typ:        typ,
		pan:        int(pan),
		relNote:    int(rel),
		name:       name,
	}, nil
}
