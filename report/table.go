package report

import (
	"fmt"
	"strings"

	"github.com/QEStudios/XMDecoder/parser/xm"
)

var noteNames = [12]string{"C-", "C#", "D-", "D#", "E-", "F-", "F#", "G-", "G#", "A-", "A#", "B-"}

// effectDigits maps effect numbers to the single character trackers show.
const effectDigits = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// cellWidth is the printed width of one cell, e.g. "C-4 01 40 A0F".
const cellWidth = 13

// NoteName returns a note as a tracker shows it: "C-4", "===" for key-off
// and "---" for no note.
func NoteName(n xm.Note) string {
	switch {
	case n == xm.NoteKeyOff:
		return "==="
	case !n.IsNote():
		return "---"
	}
	return fmt.Sprintf("%s%d", noteNames[n%12], n/12)
}

// FormatCell formats a cell as note, instrument, volume column and effect.
func FormatCell(c xm.Cell) string {
	inst := ".."
	if c.Instrument != xm.None {
		inst = fmt.Sprintf("%02X", c.Instrument)
	}
	vol := ".."
	if c.Volume != xm.None {
		vol = fmt.Sprintf("%02X", c.Volume)
	}
	fx := "..."
	if c.Effect != xm.EffectNone || c.Param != 0 {
		digit := byte('0')
		if c.Effect >= 0 && int(c.Effect) < len(effectDigits) {
			digit = effectDigits[c.Effect]
		} else if c.Effect != xm.EffectNone {
			digit = '?'
		}
		fx = fmt.Sprintf("%c%02X", digit, c.Param)
	}
	return fmt.Sprintf("%s %s %s %s", NoteName(c.Note), inst, vol, fx)
}

// FormatPattern formats a pattern as a table with one column per channel.
// Channels that do not fit in width columns continue in further tables
// below; a width of zero or less fits everything in one table.
func FormatPattern(p xm.Pattern, channels int, width int, indent int) string {
	if channels <= 0 {
		return ""
	}

	// A 5 character row number column, "| " and " " around each cell and a closing "|".
	perTable := channels
	if width > 0 {
		perTable = max(1, (width-indent-5-1)/(cellWidth+3))
	}

	var b strings.Builder
	for first := 0; first < channels; first += perTable {
		last := min(first+perTable, channels)
		formatCellsByChannel(&b, p.Rows, first, last, indent)
	}
	return b.String()
}

// formatCellsByChannel writes the columns first..last-1 of rows as a table.
func formatCellsByChannel(b *strings.Builder, rows []xm.Row, first, last, indent int) {
	pad := strings.Repeat(" ", indent)
	separator := func() {
		b.WriteString(pad)
		b.WriteString("+----")
		for range last - first {
			b.WriteString("+")
			b.WriteString(strings.Repeat("-", cellWidth+2)) // +2 for the space padding either side
		}
		b.WriteString("+\n")
	}

	// Header row
	separator()
	b.WriteString(pad)
	b.WriteString("|    ")
	for ch := first; ch < last; ch++ {
		fmt.Fprintf(b, "| %-*s ", cellWidth, fmt.Sprintf("Channel %d", ch))
	}
	b.WriteString("|\n")
	separator()

	for i, row := range rows {
		b.WriteString(pad)
		fmt.Fprintf(b, "| %02X ", i)
		for ch := first; ch < last; ch++ {
			cell := xm.EmptyCell
			if ch < len(row) {
				cell = row[ch]
			}
			b.WriteString("| ")
			b.WriteString(FormatCell(cell))
			b.WriteString(" ")
		}
		b.WriteString("|\n")
	}
	separator()
}
