package xm

const (
	maxEnvelopePoints = 12
	envelopeFullValue = 64
	envelopeCentre    = 32
)

// rawEnvelope is an envelope as it appears in an instrument header.
type rawEnvelope struct {
	points    []EnvelopePoint // Only the declared points.
	typ       uint8           // Type bits: 0 enabled, 1 sustain, 2 loop.
	sustain   int
	loopStart int
	loopEnd   int
}

func (r rawEnvelope) enabled() bool {
	return r.typ&uint8(EnvEnabled) != 0 && len(r.points) > 0
}

// DefaultVolumeEnvelope is used when an instrument's volume envelope is
// disabled: full volume while the key is held, silence after key-off.
func DefaultVolumeEnvelope() *Envelope {
	return &Envelope{
		Points:  []EnvelopePoint{{Tick: 0, Value: envelopeFullValue}, {Tick: 1, Value: 0}},
		Flags:   EnvEnabled | EnvSustain,
		Sustain: 0,
		Source:  EnvelopeDefault,
	}
}

// DefaultPanEnvelope is used when an instrument's pan envelope is disabled:
// a constant centred pan.
func DefaultPanEnvelope() *Envelope {
	return &Envelope{
		Points: []EnvelopePoint{{Tick: 0, Value: envelopeCentre}},
		Flags:  EnvEnabled,
		Source: EnvelopeDefault,
	}
}

// buildVolumeEnvelope turns the stored volume envelope into a playable one.
// An enabled envelope with a fadeout rate gets one extra point that decays to
// zero 65536/fadeout ticks after the last declared point.
func buildVolumeEnvelope(raw rawEnvelope, fadeout int) *Envelope {
	if !raw.enabled() {
		return DefaultVolumeEnvelope()
	}
	env := declaredEnvelope(raw)
	if fadeout > 0 {
		last := env.Points[len(env.Points)-1]
		env.Points = append(env.Points, EnvelopePoint{
			Tick:  last.Tick + max(1, 65536/fadeout),
			Value: 0,
		})
	}
	return env
}

func buildPanEnvelope(raw rawEnvelope) *Envelope {
	if !raw.enabled() {
		return DefaultPanEnvelope()
	}
	return declaredEnvelope(raw)
}

// declaredEnvelope copies raw into an Envelope. Without a declared sustain
// point the sustain is placed on the last declared point.
func declaredEnvelope(raw rawEnvelope) *Envelope {
	env := &Envelope{
		Points:    append([]EnvelopePoint(nil), raw.points...),
		Flags:     EnvelopeFlags(raw.typ) & (EnvEnabled | EnvSustain | EnvLoop),
		Sustain:   raw.sustain,
		LoopStart: raw.loopStart,
		LoopEnd:   raw.loopEnd,
		Source:    EnvelopeDeclared,
	}
	last := len(raw.points) - 1
	if !env.HasSustain() {
		env.Sustain = last
		env.Flags |= EnvSustain
	}
	env.Sustain = min(env.Sustain, last)
	env.LoopStart = min(env.LoopStart, last)
	env.LoopEnd = min(env.LoopEnd, last)
	return env
}
