package xm

import (
	"errors"
	"testing"
)

func TestDecodeCell(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want Cell
		size int
	}{
		{
			name: "packed note and volume",
			data: []byte{0x85, 40, 60},
			want: Cell{Note: 39, Instrument: None, Volume: 60, Effect: EffectNone},
			size: 3,
		},
		{
			name: "legacy uncompressed",
			data: []byte{37, 2, 0, 0, 0},
			want: Cell{Note: 36, Instrument: 2, Volume: 0, Effect: 0, Param: 0},
			size: 5,
		},
		{
			name: "legacy without note",
			data: []byte{0, 1, 0x40, 0x0f, 0x06},
			want: Cell{Note: NoteNone, Instrument: 1, Volume: 0x40, Effect: 0x0f, Param: 0x06},
			size: 5,
		},
		{
			name: "packed empty",
			data: []byte{0x80},
			want: EmptyCell,
			size: 1,
		},
		{
			name: "packed all fields",
			data: []byte{0x9f, 49, 3, 0x20, 0x0a, 0x0f},
			want: Cell{Note: 48, Instrument: 3, Volume: 0x20, Effect: 0x0a, Param: 0x0f},
			size: 6,
		},
		{
			name: "packed effect param only",
			data: []byte{0x90, 0x33},
			want: Cell{Note: NoteNone, Instrument: None, Volume: None, Effect: EffectNone, Param: 0x33},
			size: 2,
		},
		{
			name: "key off",
			data: []byte{0x81, 97},
			want: Cell{Note: NoteKeyOff, Instrument: None, Volume: None, Effect: EffectNone},
			size: 2,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Trailing byte checks the returned offset does not overshoot.
			r := NewReader(append(append([]byte{}, tc.data...), 0xee))
			got, next, err := decodeCell(r, 0)
			if err != nil {
				t.Fatalf("decodeCell: %v", err)
			}
			if got != tc.want {
				t.Fatalf("cell = %+v, want %+v", got, tc.want)
			}
			if next != tc.size {
				t.Fatalf("next offset = %d, want %d", next, tc.size)
			}
		})
	}
}

func TestDecodeCellTruncated(t *testing.T) {
	for _, data := range [][]byte{{0x83, 12}, {37, 1, 2}} {
		_, _, err := decodeCell(NewReader(data), 0)
		if !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("decodeCell(%v) err = %v, want ErrOutOfBounds", data, err)
		}
	}
}

func TestNoteSentinels(t *testing.T) {
	if NoteNone.IsNote() || NoteKeyOff.IsNote() {
		t.Fatal("sentinels must not be playable notes")
	}
	if !Note(0).IsNote() || !Note(95).IsNote() {
		t.Fatal("0 and 95 must be playable notes")
	}
}

func TestPatternRowsMatchChannels(t *testing.T) {
	data := append([]byte{0x85, 40, 60}, emptyPatternData(1, 3)[:2]...)
	data = append(data, emptyPatternData(1, 3)...)
	m := testModule{
		channels: 3,
		patterns: []testPattern{
			{rows: 2, data: data},
			{rows: 5}, // No packed data.
		},
	}
	song := decodeOK(t, m.bytes()).Song

	if len(song.Patterns) != 2 {
		t.Fatalf("patterns = %d, want 2", len(song.Patterns))
	}
	for p, pat := range song.Patterns {
		for i, row := range pat.Rows {
			if len(row) != 3 {
				t.Fatalf("pattern %d row %d has %d cells, want 3", p, i, len(row))
			}
		}
	}
	if got := song.Patterns[0].Rows[0][0]; got.Note != 39 || got.Volume != 60 {
		t.Fatalf("first cell = %+v, want note 39 volume 60", got)
	}
	if got := len(song.Patterns[1].Rows); got != 5 {
		t.Fatalf("empty pattern rows = %d, want 5", got)
	}
	for _, row := range song.Patterns[1].Rows {
		for _, c := range row {
			if c != EmptyCell {
				t.Fatalf("synthesized cell = %+v, want empty", c)
			}
		}
	}
}

func TestPatternErrors(t *testing.T) {
	// The second cell wants a note byte that is not there.
	overrun := testModule{channels: 2, patterns: []testPattern{{rows: 1, data: []byte{0x80, 0x81}}}}
	badPacking := testModule{patterns: []testPattern{{rows: 1}}}.bytes()
	badPacking[336+4] = 1
	tooManyRows := testModule{patterns: []testPattern{{rows: 300}}}.bytes()
	shortHeader := testModule{patterns: []testPattern{{rows: 1}}}.bytes()
	shortHeader[336] = 5

	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"cells overrun packed size", overrun.bytes(), ErrInconsistentHeader},
		{"unknown packing type", badPacking, ErrFormat},
		{"too many rows", tooManyRows, ErrInconsistentHeader},
		{"short pattern header", shortHeader, ErrInconsistentHeader},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.data)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestPatternUnusedBytesWarn(t *testing.T) {
	m := testModule{channels: 1, patterns: []testPattern{{rows: 1, data: []byte{0x80, 0x80, 0x80}}}}
	res := decodeOK(t, m.bytes())
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one about unused bytes", res.Warnings)
	}
}
