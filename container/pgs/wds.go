/*
NAME
  wds.go - window definition segment payloads.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pgs

import "encoding/binary"

// WindowDef is one decode window, the screen-space rectangle a composition
// object's decoded picture is placed into. PGS supports one or two
// windows per epoch.
type WindowDef struct {
	ID            byte
	X, Y, W, H int
}

// wdsPayload builds a window definition segment body: a count byte
// followed by one 9-byte record per window.
func wdsPayload(windows []WindowDef) []byte {
	buf := make([]byte, 1+9*len(windows))
	buf[0] = byte(len(windows))
	off := 1
	for _, w := range windows {
		buf[off] = w.ID
		binary.BigEndian.PutUint16(buf[off+1:off+3], uint16(w.X))
		binary.BigEndian.PutUint16(buf[off+3:off+5], uint16(w.Y))
		binary.BigEndian.PutUint16(buf[off+5:off+7], uint16(w.W))
		binary.BigEndian.PutUint16(buf[off+7:off+9], uint16(w.H))
		off += 9
	}
	return buf
}
