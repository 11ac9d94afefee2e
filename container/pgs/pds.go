/*
NAME
  pds.go - palette definition segment payloads.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pgs

import "github.com/ausocean/pgsmux/codec/palette"

// pdsPayload builds a palette definition segment body: a one-byte palette
// ID, a one-byte palette version, then one 5-byte (ID, Y, Cr, Cb, Alpha)
// record for every entry in [1, n] of pal. Index 0 (fully transparent) is
// included only if n == 0, i.e. the palette would otherwise be empty.
func pdsPayload(paletteID, version byte, pal palette.Palette, n int) []byte {
	entries := n
	if entries == 0 {
		entries = 1 // always describe at least the transparent entry.
	}
	buf := make([]byte, 2+5*entries)
	buf[0] = paletteID
	buf[1] = version

	off := 2
	if n == 0 {
		buf[off] = 0
		off += 5 // entry {0,0,0,0,0}: index 0, fully transparent.
		return buf
	}
	for i := 1; i <= n; i++ {
		e := pal[i]
		buf[off] = byte(i)
		buf[off+1] = e.Y
		buf[off+2] = e.Cr
		buf[off+3] = e.Cb
		buf[off+4] = e.Alpha
		off += 5
	}
	return buf
}
