/*
NAME
  rle.go - run-length codec for PGS object data.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package rle implements the run-length encoding used by PGS object data
// segments: a palette-index raster is compressed one row at a time into a
// stream of two, three or four byte codewords, each row terminated by an
// explicit end-of-line marker.
package rle

import (
	"fmt"
	"io"
)

const (
	// shortRunMax is the largest transparent run length encodable in the
	// two-byte 00 0L form.
	shortRunMax = 63

	// longRunMax is the largest run length (transparent or opaque)
	// encodable in the 14-bit L field of the three/four byte forms.
	longRunMax = 16383

	// minColorRun is the smallest run length that is worth spending a
	// three-byte 00 8L CC codeword on; shorter opaque runs are cheaper to
	// emit as individual CC bytes.
	minColorRun = 3
)

// Encoder is used to encode a palette-index raster into PGS RLE data.
type Encoder struct {
	// dst is the destination for RLE-encoded data.
	dst io.Writer

	width int // Pixels per row; determines end-of-line placement.
	col   int // Current column within the row being encoded.
}

// NewEncoder returns a new Encoder for a raster of the given row width.
func NewEncoder(dst io.Writer, width int) *Encoder {
	return &Encoder{dst: dst, width: width}
}

// Write encodes consecutive palette indices from idx, which must represent
// one or more complete rows of Encoder's configured width (len(idx) must be
// a multiple of width). Every row is terminated by an end-of-line codeword.
// It returns the number of RLE bytes written and the first error
// encountered.
func (e *Encoder) Write(idx []byte) (int, error) {
	if e.width <= 0 {
		return 0, fmt.Errorf("rle: encoder width must be positive")
	}
	if len(idx)%e.width != 0 {
		return 0, fmt.Errorf("rle: input length %d is not a multiple of width %d", len(idx), e.width)
	}

	var n int
	for off := 0; off < len(idx); off += e.width {
		row := idx[off : off+e.width]
		written, err := e.writeRow(row)
		n += written
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// writeRow encodes one complete row, including its trailing end-of-line
// codeword.
func (e *Encoder) writeRow(row []byte) (int, error) {
	var n int
	for i := 0; i < len(row); {
		color := row[i]
		run := 1
		for i+run < len(row) && row[i+run] == color {
			run++
		}

		written, err := e.writeRun(color, run)
		n += written
		if err != nil {
			return n, err
		}
		i += run
	}

	written, err := e.dst.Write([]byte{0x00, 0x00})
	n += written
	return n, err
}

// writeRun emits one run of run identical pixels of the given color (which
// may be the transparent index 0), choosing the shortest valid codeword
// form(s).
func (e *Encoder) writeRun(color byte, run int) (int, error) {
	var n int
	for run > 0 {
		if color == 0 {
			chunk := run
			if chunk > longRunMax {
				chunk = longRunMax
			}
			written, err := e.writeTransparentRun(chunk)
			n += written
			if err != nil {
				return n, err
			}
			run -= chunk
			continue
		}

		if run < minColorRun {
			written, err := e.dst.Write([]byte{color})
			n += written
			if err != nil {
				return n, err
			}
			run--
			continue
		}

		chunk := run
		if chunk > longRunMax {
			chunk = longRunMax
		}
		written, err := e.writeColorRun(color, chunk)
		n += written
		if err != nil {
			return n, err
		}
		run -= chunk
	}
	return n, nil
}

// writeTransparentRun emits one run of l (1..longRunMax) transparent
// pixels, using the two-byte form when l fits and the three-byte form
// otherwise.
func (e *Encoder) writeTransparentRun(l int) (int, error) {
	if l <= shortRunMax {
		return e.dst.Write([]byte{0x00, byte(l)})
	}
	return e.dst.Write([]byte{0x00, 0x40 | byte(l>>8), byte(l)})
}

// writeColorRun emits one run of l (minColorRun..longRunMax) pixels of
// color, using the three-byte form when l fits in 6 bits and the
// four-byte form otherwise.
func (e *Encoder) writeColorRun(color byte, l int) (int, error) {
	if l <= 63 {
		return e.dst.Write([]byte{0x00, 0x80 | byte(l), color})
	}
	return e.dst.Write([]byte{0x00, 0xC0 | byte(l>>8), byte(l), color})
}

// Decoder is used to decode PGS RLE data back into a palette-index raster.
type Decoder struct {
	dst io.Writer

	width int
}

// NewDecoder returns a new Decoder that reconstructs rows of the given
// width.
func NewDecoder(dst io.Writer, width int) *Decoder {
	return &Decoder{dst: dst, width: width}
}

// Write decodes RLE-encoded data from b, writing the reconstructed
// palette-index rows to the Decoder's dst. Short rows are zero-padded
// (index 0, transparent) out to the configured width, matching a decoder
// that treats an early end-of-line as "rest of row transparent". It
// returns the number of raster bytes written and the first error
// encountered.
func (d *Decoder) Write(b []byte) (int, error) {
	if d.width <= 0 {
		return 0, fmt.Errorf("rle: decoder width must be positive")
	}

	row := make([]byte, 0, d.width)
	var n int
	i := 0
	for i < len(b) {
		if b[i] != 0x00 {
			row = append(row, b[i])
			i++
			continue
		}
		if i+1 >= len(b) {
			return n, fmt.Errorf("rle: truncated codeword at offset %d", i)
		}
		second := b[i+1]
		switch {
		case second == 0x00:
			// End of line.
			written, err := d.flushRow(&row)
			n += written
			if err != nil {
				return n, err
			}
			i += 2
		case second&0xC0 == 0x00:
			l := int(second & 0x3F)
			row = appendRun(row, 0, l)
			i += 2
		case second&0xC0 == 0x40:
			if i+2 >= len(b) {
				return n, fmt.Errorf("rle: truncated long transparent run at offset %d", i)
			}
			l := int(second&0x3F)<<8 | int(b[i+2])
			row = appendRun(row, 0, l)
			i += 3
		case second&0xC0 == 0x80:
			if i+2 >= len(b) {
				return n, fmt.Errorf("rle: truncated short color run at offset %d", i)
			}
			l := int(second & 0x3F)
			color := b[i+2]
			row = appendRun(row, color, l)
			i += 3
		default: // 0xC0
			if i+3 >= len(b) {
				return n, fmt.Errorf("rle: truncated long color run at offset %d", i)
			}
			l := int(second&0x3F)<<8 | int(b[i+2])
			color := b[i+3]
			row = appendRun(row, color, l)
			i += 4
		}
	}
	if len(row) > 0 {
		written, err := d.flushRow(&row)
		n += written
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func appendRun(row []byte, color byte, l int) []byte {
	for k := 0; k < l; k++ {
		row = append(row, color)
	}
	return row
}

// flushRow pads row to the Decoder's width with transparent pixels,
// writes it, and resets row to empty.
func (d *Decoder) flushRow(row *[]byte) (int, error) {
	for len(*row) < d.width {
		*row = append(*row, 0)
	}
	n, err := d.dst.Write((*row)[:d.width])
	*row = (*row)[:0]
	return n, err
}
