/*
NAME
  source.go - frame source abstraction.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package source defines the frame-supplying interface segment.Driver
// consumes; producing frames from a decoder, a directory of images or a
// test fixture is an external collaborator's concern (see spec.md §1).
package source

import "github.com/ausocean/pgsmux/image/rgba"

// Source supplies a sequence of decoded RGBA frames at a fixed size and
// frame rate.
type Source interface {
	// Dimensions returns the pixel size common to every frame this
	// Source produces.
	Dimensions() (w, h int)

	// FrameRate returns the source's frame rate as a num/den ratio.
	FrameRate() (num, den int)

	// ReadFrame decodes the next frame into dst, which must already be
	// sized via rgba.New(w, h) with the Source's Dimensions. It returns
	// io.EOF once no frames remain.
	ReadFrame(dst rgba.Image) error

	// Close releases any resources held by the Source.
	Close() error
}
