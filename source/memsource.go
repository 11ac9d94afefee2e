/*
NAME
  memsource.go - in-memory frame source for tests and tooling.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package source

import (
	"fmt"
	"io"

	"github.com/ausocean/pgsmux/image/rgba"
)

// Mem is a Source backed by a fixed, pre-decoded slice of frames, for use
// by segment.Driver's tests and by tools that already hold frames in
// memory.
type Mem struct {
	w, h     int
	num, den int
	frames   []rgba.Image
	next     int
	closed   bool
}

// NewMem returns a Mem serving frames in order, all of which must share
// the given dimensions.
func NewMem(w, h, num, den int, frames []rgba.Image) (*Mem, error) {
	for i, f := range frames {
		if f.W != w || f.H != h {
			return nil, fmt.Errorf("source: frame %d is %dx%d, want %dx%d", i, f.W, f.H, w, h)
		}
	}
	return &Mem{w: w, h: h, num: num, den: den, frames: frames}, nil
}

func (m *Mem) Dimensions() (int, int) { return m.w, m.h }

func (m *Mem) FrameRate() (int, int) { return m.num, m.den }

// ReadFrame copies the next frame's pixels into dst, returning io.EOF
// once the frame slice is exhausted.
func (m *Mem) ReadFrame(dst rgba.Image) error {
	if m.closed {
		return fmt.Errorf("source: read from closed Mem source")
	}
	if m.next >= len(m.frames) {
		return io.EOF
	}
	if dst.W != m.w || dst.H != m.h {
		return fmt.Errorf("source: dst is %dx%d, want %dx%d", dst.W, dst.H, m.w, m.h)
	}
	copy(dst.Pix, m.frames[m.next].Pix)
	m.next++
	return nil
}

func (m *Mem) Close() error {
	m.closed = true
	return nil
}
