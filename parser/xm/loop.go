package xm

// MinLoopLength is the shortest loop, in frames, that is left as is. Shorter
// forward loops are unrolled until they reach it.
const MinLoopLength = 2048

// NormalizeLoop rewrites s so that any loop it has is a forward loop of at
// least MinLoopLength frames. A ping-pong loop gets a reversed copy of its
// region appended and its loop length doubled. A short forward loop is
// repeated in place. Frames after the loop end are dropped because a forward
// loop never reaches them. Calling it again on the result does nothing.
//
// A ping-pong loop of L frames ends up exactly 2L long only when L is at
// least MinLoopLength/2. Shorter ones are mirrored and then repeated, giving
// a multiple of 2L of at least MinLoopLength.
func NormalizeLoop(s *Sample) {
	if s.Loop != LoopForward && s.Loop != LoopPingPong {
		return
	}
	if s.LoopLength <= 0 || s.LoopEnd() > len(s.PCM) {
		return
	}
	if s.Loop == LoopForward && s.LoopLength >= MinLoopLength {
		return
	}

	start, end := s.LoopStart, s.LoopEnd()
	region := s.PCM[start:end]

	if s.Loop == LoopPingPong {
		region = append(region[:len(region):len(region)], reversed(region)...)
	}

	repeats := 1
	if len(region) < MinLoopLength {
		repeats = (MinLoopLength + len(region) - 1) / len(region)
	}

	pcm := make([]int16, 0, start+len(region)*repeats)
	pcm = append(pcm, s.PCM[:start]...)
	for range repeats {
		pcm = append(pcm, region...)
	}

	s.PCM = pcm
	s.Length = len(pcm)
	s.LoopLength = len(region) * repeats
	s.Loop = LoopForward
}

func reversed(in []int16) []int16 {
	out := make([]int16, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
