/*
NAME
  segment.go - PGS segment framing.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pgs implements the Presentation Graphic Stream container: the
// segment framing, composition/window/palette/object definition payloads
// and buffer-budget accounting used to mux subtitle events into a .sup
// elementary stream.
package pgs

import "encoding/binary"

// Segment types, identified by the single byte following a segment's PTS
// and DTS.
const (
	typePDS byte = 0x14
	typeODS byte = 0x15
	typePCS byte = 0x16
	typeWDS byte = 0x17
	typeEND byte = 0x80
)

// HeaderSize is the number of bytes preceding a segment's payload: the two
// magic bytes 'P','G', a 4-byte PTS, a 4-byte DTS, a 1-byte type and a
// 2-byte payload length.
const HeaderSize = 2 + 4 + 4 + 1 + 2

// segment is one length-prefixed unit of a PGS elementary stream.
type segment struct {
	pts, dts uint32
	typ      byte
	payload  []byte
}

// Bytes returns the wire encoding of s: 'P','G', PTS, DTS, type, payload
// length and the payload itself, all multi-byte fields big-endian.
func (s segment) Bytes() []byte {
	buf := make([]byte, HeaderSize+len(s.payload))
	buf[0], buf[1] = 'P', 'G'
	binary.BigEndian.PutUint32(buf[2:6], s.pts)
	binary.BigEndian.PutUint32(buf[6:10], s.dts)
	buf[10] = s.typ
	binary.BigEndian.PutUint16(buf[11:13], uint16(len(s.payload)))
	copy(buf[13:], s.payload)
	return buf
}
