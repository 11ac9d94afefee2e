/*
NAME
  reader.go - PGS segment reader.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pgs

import (
	"encoding/binary"
	"fmt"
	"io"
)

// RawSegment is one decoded PGS segment header plus its raw payload,
// as read back off the wire by Decoder. It is exported for use by the
// debug stream inspector and by round-trip tests.
type RawSegment struct {
	PTS, DTS uint32
	Type     byte
	Payload  []byte
}

// Decoder reads successive segments from a PGS elementary stream.
type Decoder struct {
	r io.Reader
}

// NewDecoder returns a Decoder reading segments from r.
func NewDecoder(r io.Reader) *Decoder { return &Decoder{r: r} }

// Next reads and returns the next segment, or io.EOF once the stream is
// exhausted cleanly between segments.
func (d *Decoder) Next() (RawSegment, error) {
	var head [HeaderSize]byte
	_, err := io.ReadFull(d.r, head[:])
	if err == io.EOF {
		return RawSegment{}, io.EOF
	}
	if err != nil {
		return RawSegment{}, fmt.Errorf("pgs: read segment header: %w", err)
	}
	if head[0] != 'P' || head[1] != 'G' {
		return RawSegment{}, fmt.Errorf("pgs: bad segment magic %q", head[0:2])
	}

	s := RawSegment{
		PTS:  binary.BigEndian.Uint32(head[2:6]),
		DTS:  binary.BigEndian.Uint32(head[6:10]),
		Type: head[10],
	}
	length := binary.BigEndian.Uint16(head[11:13])
	if length > 0 {
		s.Payload = make([]byte, length)
		if _, err := io.ReadFull(d.r, s.Payload); err != nil {
			return RawSegment{}, fmt.Errorf("pgs: read segment payload: %w", err)
		}
	}
	return s, nil
}

// TypeName returns the human-readable name of a segment type byte, for
// use by the debug inspector.
func TypeName(t byte) string {
	switch t {
	case typePDS:
		return "PDS"
	case typeODS:
		return "ODS"
	case typePCS:
		return "PCS"
	case typeWDS:
		return "WDS"
	case typeEND:
		return "END"
	default:
		return fmt.Sprintf("0x%02x", t)
	}
}
