/*
NAME
  rgba.go - provides a data structure intended to encapsulate the properties
  of a raw RGBA8 raster image and the pixel-level predicates the subtitle
  segmenter needs from it.

DESCRIPTION
  Defines Image, its 16-byte aligned allocator, and the emptiness,
  identity, transparency-zeroing and channel-swap primitives.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package rgba provides a minimal RGBA8 raster buffer plus the three
// pixel-level predicates (emptiness, identity, transparency normalization)
// that the subtitle segmenter needs from a frame source.
package rgba

import (
	"fmt"
	"unsafe"
)

// BytesPerPixel is the number of bytes each pixel occupies (R, G, B, A).
const BytesPerPixel = 4

// Image is an immutable-by-convention RGBA8 raster of known width and
// height, row-major, four bytes per pixel in channel order R, G, B, A.
// Alpha 0 denotes transparency.
type Image struct {
	W, H int
	Pix  []byte
}

// New allocates an Image of the given dimensions with a zeroed, 16-byte
// aligned backing buffer (see AlignedAlloc), so that a SIMD-accelerated
// Capabilities implementation can safely over-read/over-write up to 16
// bytes past the nominal end.
func New(w, h int) Image {
	return Image{W: w, H: h, Pix: AlignedAlloc(w * h * BytesPerPixel)}
}

// ErrSizeMismatch is returned by operations that require two images of
// identical dimensions.
var ErrSizeMismatch = fmt.Errorf("rgba: image dimensions do not match")

// AlignedAlloc returns a slice of length n whose backing array starts on a
// 16-byte boundary, with up to 16 bytes of slack appended past n so that a
// vectorized implementation may over-read or over-write the tail. Go's
// allocator does not guarantee 16-byte alignment for arbitrary slice
// lengths, so we over-allocate and slice from the first aligned offset.
func AlignedAlloc(n int) []byte {
	const align = 16
	buf := make([]byte, n+2*align)
	if n == 0 {
		return buf[:0:align]
	}
	off := int(-uintptr(unsafe.Pointer(&buf[0])) & (align - 1))
	return buf[off : off+n : off+n+align]
}

// IsEmpty returns true iff every pixel's alpha byte is zero.
func IsEmpty(img Image) bool {
	return caps.isEmpty(img)
}

// IsIdentical returns true iff img and prev are byte-equal after any pixel
// with alpha==0 in img is first rewritten to all-zero (R=G=B=A=0). The
// zeroing is a documented side effect: transparent pixels may carry
// arbitrary RGB from the source but must be normalized before equality,
// palettization, or encoding use them, or stale RGB under alpha 0 would
// waste palette slots and mislead deduplication. prev is assumed to already
// be normalized (the segmenter normalizes every frame it stores as a
// reference image, see segment.Driver).
func IsIdentical(img, prev Image) bool {
	if img.W != prev.W || img.H != prev.H {
		return false
	}
	return caps.isIdentical(img, prev)
}

// ZeroTransparent rewrites every pixel with alpha==0 to all-zero RGB, in
// place.
func ZeroTransparent(img Image) {
	caps.zeroTransparent(img)
}

// SwapChannels reorders each pixel's first and third bytes in place,
// converting a BGRA-ordered buffer to RGBA or vice-versa. Frame sources
// that hand out BGRA must be passed through this before any other
// operation in this package, per the channel-order contract of the
// pipeline.
func SwapChannels(img Image) {
	caps.swapChannels(img)
}
