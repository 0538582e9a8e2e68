package audition

import (
	"encoding/binary"
	"io"
	"slices"
	"testing"
)

// drain reads v to the end and returns the frames it produced.
func drain(t *testing.T, v *Voice) []int16 {
	t.Helper()
	var out []int16
	buf := make([]byte, 6) // Odd frame counts per read exercise the carry-over.
	for range 10000 {
		n, err := v.Read(buf)
		for i := 0; i+2 <= n; i += 2 {
			out = append(out, int16(binary.LittleEndian.Uint16(buf[i:])))
		}
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
	}
	t.Fatal("voice never ended")
	return nil
}

func TestVoiceOneShot(t *testing.T) {
	v := newVoice([]int16{1, 2, 3, 4, 5}, 0, 0, 3, 1)
	if got, want := drain(t, v), []int16{1, 2, 3, 4, 5}; !slices.Equal(got, want) {
		t.Fatalf("frames = %v, want %v", got, want)
	}
	if !v.Done() {
		t.Fatal("voice not done after EOF")
	}
}

func TestVoiceRepeatsLoop(t *testing.T) {
	v := newVoice([]int16{9, 1, 2, 3}, 1, 3, 2, 1)
	want := []int16{9, 1, 2, 3, 1, 2, 3, 1, 2, 3}
	if got := drain(t, v); !slices.Equal(got, want) {
		t.Fatalf("frames = %v, want %v", got, want)
	}
}

func TestVoicePlaysTailAfterLastRepeat(t *testing.T) {
	v := newVoice([]int16{10, 11, 12, 13, 14, 15}, 1, 2, 2, 1)
	want := []int16{10, 11, 12, 11, 12, 11, 12, 13, 14, 15}
	if got := drain(t, v); !slices.Equal(got, want) {
		t.Fatalf("frames = %v, want %v", got, want)
	}
}

func TestVoiceHalfSpeedWrapsAtLoopEnd(t *testing.T) {
	// The loop is frames 0..1 of 3; the interpolated midpoint after frame 1
	// heads back to frame 0 while a repeat is left.
	v := newVoice([]int16{0, 100, 900}, 0, 2, 1, 0.5)
	want := []int16{0, 50, 100, 50, 0, 50, 100, 500, 900, 900}
	if got := drain(t, v); !slices.Equal(got, want) {
		t.Fatalf("frames = %v, want %v", got, want)
	}
}

func TestVoiceHalfSpeedInterpolates(t *testing.T) {
	v := newVoice([]int16{0, 100, 200}, 0, 0, 0, 0.5)
	want := []int16{0, 50, 100, 150, 200, 200}
	if got := drain(t, v); !slices.Equal(got, want) {
		t.Fatalf("frames = %v, want %v", got, want)
	}
}

func TestVoiceIgnoresBadLoop(t *testing.T) {
	v := newVoice([]int16{1, 2}, 1, 5, 4, 1)
	if got := drain(t, v); len(got) != 2 {
		t.Fatalf("frames = %v, want the 2 sample frames once", got)
	}
}

func TestVoiceEmptySample(t *testing.T) {
	v := newVoice(nil, 0, 0, 0, 1)
	if n, err := v.Read(make([]byte, 8)); n != 0 || err != io.EOF {
		t.Fatalf("Read = %d, %v, want 0, EOF", n, err)
	}
}
