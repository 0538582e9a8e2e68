package xm

import "errors"

const (
	minPatternHeaderLen = 9
	maxPatternRows      = 256

	cellPacked      = 0x80
	cellHasNote     = 0x01
	cellHasInst     = 0x02
	cellHasVolume   = 0x04
	cellHasEffect   = 0x08
	cellHasParam    = 0x10
	storedNoteNone  = 0
	storedNoteOff   = 97
	legacyCellBytes = 4
)

// decodeCell decodes the cell whose lead byte is at off and returns the
// offset just past it.
//
// A lead byte with the high bit set is a presence mask; each present field
// follows as one byte in note, instrument, volume, effect, param order.
// Otherwise the lead byte is the note itself and the other four fields follow.
func decodeCell(r *Reader, off int) (Cell, int, error) {
	lead, err := r.U8(off)
	if err != nil {
		return Cell{}, off, err
	}
	off++

	cell := EmptyCell
	if lead&cellPacked == 0 {
		if err := r.Require(off, legacyCellBytes); err != nil {
			return Cell{}, off, err
		}
		fields, _ := r.slice(off, legacyCellBytes)
		cell.Note = storedNote(lead)
		cell.Instrument = int16(fields[0])
		cell.Volume = int16(fields[1])
		cell.Effect = int16(fields[2])
		cell.Param = fields[3]
		return cell, off + legacyCellBytes, nil
	}

	next := func() (uint8, error) {
		v, err := r.U8(off)
		off++
		return v, err
	}
	if lead&cellHasNote != 0 {
		v, err := next()
		if err != nil {
			return Cell{}, off, err
		}
		cell.Note = storedNote(v)
	}
	if lead&cellHasInst != 0 {
		v, err := next()
		if err != nil {
			return Cell{}, off, err
		}
		cell.Instrument = int16(v)
	}
	if lead&cellHasVolume != 0 {
		v, err := next()
		if err != nil {
			return Cell{}, off, err
		}
		cell.Volume = int16(v)
	}
	if lead&cellHasEffect != 0 {
		v, err := next()
		if err != nil {
			return Cell{}, off, err
		}
		cell.Effect = int16(v)
	}
	if lead&cellHasParam != 0 {
		v, err := next()
		if err != nil {
			return Cell{}, off, err
		}
		cell.Param = v
	}
	return cell, off, nil
}

// storedNote converts an on-disk note byte to a zero-based Note.
func storedNote(b uint8) Note {
	switch {
	case b == storedNoteNone:
		return NoteNone
	case b >= storedNoteOff:
		return NoteKeyOff
	default:
		return Note(b) - 1
	}
}

func emptyRows(rows, channels int) []Row {
	out := make([]Row, rows)
	for i := range out {
		row := make(Row, channels)
		for c := range row {
			row[c] = EmptyCell
		}
		out[i] = row
	}
	return out
}

// decodePattern decodes pattern index at off and returns the offset of the
// next pattern.
func (d *Decoder) decodePattern(index, off int) (Pattern, int, error) {
	r := d.reader
	headerLen, err := r.U32(off)
	if err != nil {
		return Pattern{}, off, truncated("pattern header", err)
	}
	if err := r.Require(off, minPatternHeaderLen); err != nil {
		return Pattern{}, off, truncated("pattern header", err)
	}
	if headerLen < minPatternHeaderLen {
		return Pattern{}, off, inconsistentf(off, "pattern header length %d is below %d", headerLen, minPatternHeaderLen)
	}
	if err := r.Require(off, int(headerLen)); err != nil {
		return Pattern{}, off, truncated("pattern header", err)
	}
	packing, _ := r.U8(off + 4)
	rows, _ := r.U16(off + 5)
	packedSize, _ := r.U16(off + 7)

	if packing != 0 {
		return Pattern{}, off, formatErrorf(off+4, "unknown pattern packing type %d", packing)
	}
	if int(rows) > maxPatternRows {
		return Pattern{}, off, inconsistentf(off+5, "pattern has %d rows, limit is %d", rows, maxPatternRows)
	}

	dataStart := off + int(headerLen)
	next := dataStart + int(packedSize)
	if err := r.Require(dataStart, int(packedSize)); err != nil {
		return Pattern{}, off, truncated("pattern data", err)
	}
	d.logger.Printf("pattern %d: %d bytes, %d rows", index, packedSize, rows)

	pat := Pattern{Rows: emptyRows(int(rows), d.song.Channels)}
	if packedSize == 0 {
		return pat, next, nil
	}

	// Cells may only use the declared packed data.
	data, _ := r.slice(dataStart, int(packedSize))
	pr := NewReader(data)
	pos := 0
	for _, row := range pat.Rows {
		for c := range row {
			cell, n, err := decodeCell(pr, pos)
			if err != nil {
				if errors.Is(err, ErrOutOfBounds) {
					return Pattern{}, off, inconsistentf(dataStart+pos, "pattern %d cells overrun the declared %d bytes", index, packedSize)
				}
				return Pattern{}, off, err
			}
			row[c] = cell
			pos = n
		}
	}
	if pos < int(packedSize) {
		d.warn(dataStart+pos, "pattern %d: %d packed bytes left unused", index, int(packedSize)-pos)
	}
	return pat, next, nil
}
