/*
NAME
  png.go - PNG emission for BDN XML graphics.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bdnxml

import (
	"fmt"
	goimage "image"
	"image/color"
	"image/png"
	"io"

	"github.com/ausocean/pgsmux/codec/palette"
)

// WritePNG encodes a palettized crop as an 8-bit paletted PNG (with a
// tRNS chunk carrying each entry's alpha) to w.
func WritePNG(w io.Writer, pal palette.Palette, n int, img palette.Image) error {
	cpal := make(color.Palette, n+1)
	cpal[0] = color.NRGBA{}
	for i := 1; i <= n; i++ {
		e := pal[i]
		r, g, b := ycrcbToRGB(e.Y, e.Cr, e.Cb)
		cpal[i] = color.NRGBA{R: r, G: g, B: b, A: e.Alpha}
	}

	dst := goimage.NewPaletted(goimage.Rect(0, 0, img.W, img.H), cpal)
	copy(dst.Pix, img.Idx)

	if err := png.Encode(w, dst); err != nil {
		return fmt.Errorf("bdnxml: encode PNG: %w", err)
	}
	return nil
}

// ycrcbToRGB inverts the BT.601 full-range integer conversion performed
// by codec/palette, for graphics that must be re-expressed as RGB for a
// standard PNG palette.
func ycrcbToRGB(y, cr, cb byte) (r, g, b byte) {
	yi := int32(y)
	cri := int32(cr) - 128
	cbi := int32(cb) - 128

	rf := yi + (91881*cri)>>16
	gf := yi - (22554*cbi+46802*cri)>>16
	bf := yi + (116130*cbi)>>16

	return clamp8(rf), clamp8(gf), clamp8(bf)
}

func clamp8(v int32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
