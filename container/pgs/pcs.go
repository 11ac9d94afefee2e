/*
NAME
  pcs.go - presentation composition segment payloads.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pgs

import "encoding/binary"

// Composition states, carried in the byte pgsparse calls "follower": an
// epoch start begins a fresh decode of all windows and objects; a normal
// composition reuses the decoder state of the current epoch.
const (
	compositionEpochStart byte = 0x80
	compositionNormal     byte = 0x40
)

// Forced-flag values for a composition object.
const (
	notForced byte = 0x00
	forced    byte = 0x40
)

// CompositionObject places one decoded object into a window at (X, Y).
type CompositionObject struct {
	ObjectID uint16
	WindowID byte
	Forced   bool
	X, Y     int
}

// ClockHz is the frequency, in Hz, of the PTS/DTS clock PGS timestamps are
// expressed against.
const ClockHz = 90000

// PTS converts a frame number, at the given frame rate (num/den frames per
// second), to a 90 kHz clock tick count, rounding to the nearest tick using
// integer-only arithmetic.
func PTS(frame, num, den int) uint32 {
	n := int64(frame) * ClockHz * int64(den)
	d := int64(num)
	return uint32((n + d/2) / d)
}

// fpsID maps a (num, den) frame rate to the one-byte PGS frame rate
// identifier. Only the six rates PGS defines are supported.
func fpsID(num, den int) (byte, bool) {
	switch {
	case num == 24000 && den == 1001:
		return 0x10, true
	case num == 24 && den == 1:
		return 0x20, true
	case num == 25 && den == 1:
		return 0x30, true
	case num == 30000 && den == 1001:
		return 0x40, true
	case num == 50 && den == 1:
		return 0x60, true
	case num == 60000 && den == 1001:
		return 0x70, true
	default:
		return 0, false
	}
}

// pcsStartPayload builds the body of an epoch-start or normal composition
// segment: frame size, frame rate, composition number, composition state
// and the set of composition objects active in this window.
func pcsStartPayload(width, height int, fps byte, compNum uint16, state byte, objects []CompositionObject) []byte {
	buf := make([]byte, 11+8*len(objects))
	binary.BigEndian.PutUint16(buf[0:2], uint16(width))
	binary.BigEndian.PutUint16(buf[2:4], uint16(height))
	buf[4] = fps
	binary.BigEndian.PutUint16(buf[5:7], compNum)
	buf[7] = state
	binary.BigEndian.PutUint16(buf[8:10], 0) // reserved, always 0.
	buf[10] = byte(len(objects))

	off := 11
	for _, o := range objects {
		binary.BigEndian.PutUint16(buf[off:off+2], o.ObjectID)
		buf[off+2] = o.WindowID
		if o.Forced {
			buf[off+3] = forced
		} else {
			buf[off+3] = notForced
		}
		binary.BigEndian.PutUint16(buf[off+4:off+6], uint16(o.X))
		binary.BigEndian.PutUint16(buf[off+6:off+8], uint16(o.Y))
		off += 8
	}
	return buf
}

// pcsEndPayload builds the body of the empty composition that clears the
// screen at the end of an event: frame size, frame rate and composition
// number, with zero composition objects.
func pcsEndPayload(width, height int, fps byte, compNum uint16) []byte {
	buf := make([]byte, 11)
	binary.BigEndian.PutUint16(buf[0:2], uint16(width))
	binary.BigEndian.PutUint16(buf[2:4], uint16(height))
	buf[4] = fps
	binary.BigEndian.PutUint16(buf[5:7], compNum)
	binary.BigEndian.PutUint32(buf[7:11], 0) // reserved, always 0.
	return buf
}
