/*
NAME
  emit.go - renders a segmented Event list to PGS and BDN XML output.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package segment

import (
	"fmt"
	"io"

	"github.com/ausocean/pgsmux/container/bdnxml"
	"github.com/ausocean/pgsmux/container/pgs"
	"github.com/ausocean/utils/logging"
)

// WritePGS renders events as a PGS elementary stream to dst, one start and
// one end Display Set per event; consecutive events share an epoch until
// pgs.Writer starts a new one. width, height and the num/den frame rate describe the source
// video; tOffset shifts every emitted PTS by that many frames.
func WritePGS(dst io.Writer, log logging.Logger, width, height, num, den, tOffset int, strict bool, events []Event) error {
	if err := validateRLEWidths(events); err != nil {
		return err
	}

	w, err := pgs.NewWriter(dst, log, width, height, num, den, pgs.WithStrict(strict))
	if err != nil {
		return fmt.Errorf("segment: open pgs writer: %w", err)
	}

	for i, e := range events {
		windows := make([]pgs.WindowDef, len(e.Objects))
		objects := make([]pgs.Object, len(e.Objects))
		for j, o := range e.Objects {
			windows[j] = pgs.WindowDef{ID: byte(j), X: o.Rect.X, Y: o.Rect.Y, W: o.Rect.W, H: o.Rect.H}
			objects[j] = pgs.Object{
				ID:       uint16(j),
				WindowID: byte(j),
				Forced:   e.Forced,
				X:        o.Rect.X,
				Y:        o.Rect.Y,
				Width:    o.Rect.W,
				Height:   o.Rect.H,
				Index:    o.Index.Idx,
			}
		}

		startPTS := pgs.PTS(e.Start+tOffset, num, den)
		endPTS := pgs.PTS(e.End+tOffset, num, den)
		if err := w.WriteEvent(startPTS, endPTS, windows, e.Palette, e.PaletteSize, objects); err != nil {
			return fmt.Errorf("segment: write event %d: %w", i, err)
		}
	}

	return w.Close()
}

// WriteBDNXML renders events as a BDN XML document to dst, using desc for
// the document's <Description> block, tOffset to shift every timecode by
// that many frames, and autoCut to decide whether the final event's OutTC
// is extended by one frame (see bdnxml.Build). Graphic filenames are
// derived from each event's un-offset start frame, matching the names
// WriteGraphics writes to disk.
func WriteBDNXML(dst io.Writer, desc bdnxml.Description, events []Event, tOffset int, autoCut bool) error {
	xmlEvents := make([]bdnxml.Event, len(events))
	for i, e := range events {
		graphics := make([]bdnxml.Graphic, len(e.Objects))
		for j, o := range e.Objects {
			graphics[j] = bdnxml.Graphic{
				Width: o.Rect.W, Height: o.Rect.H, X: o.Rect.X, Y: o.Rect.Y,
				Filename: bdnxml.GraphicFilename(e.Start, j),
			}
		}
		xmlEvents[i] = bdnxml.Event{Forced: e.Forced, InFrame: e.Start + tOffset, OutFrame: e.End + tOffset, Graphics: graphics}
	}

	doc, err := bdnxml.Build(desc, xmlEvents, autoCut)
	if err != nil {
		return fmt.Errorf("segment: build bdn xml: %w", err)
	}
	return doc.Write(dst)
}

// WriteGraphics writes one PNG file per Object across all events, via
// open, which is given the conventional filename (see
// bdnxml.GraphicFilename) and must return a writer to receive the PNG
// bytes; WriteGraphics closes each writer once its PNG is written.
func WriteGraphics(events []Event, open func(filename string) (io.WriteCloser, error)) error {
	for _, e := range events {
		for j, o := range e.Objects {
			name := bdnxml.GraphicFilename(e.Start, j)
			f, err := open(name)
			if err != nil {
				return fmt.Errorf("segment: open %s: %w", name, err)
			}
			err = bdnxml.WritePNG(f, e.Palette, e.PaletteSize, o.Index)
			closeErr := f.Close()
			if err != nil {
				return fmt.Errorf("segment: write %s: %w", name, err)
			}
			if closeErr != nil {
				return fmt.Errorf("segment: close %s: %w", name, closeErr)
			}
		}
	}
	return nil
}

// validateRLEWidths guards against Object.Index buffers whose length isn't
// a multiple of their own Rect.W, which would otherwise surface as an
// opaque rle.Encoder error deep inside WritePGS; kept here so the
// higher-level error names the offending event.
func validateRLEWidths(events []Event) error {
	for i, e := range events {
		for j, o := range e.Objects {
			if o.Rect.W == 0 || len(o.Index.Idx)%o.Rect.W != 0 {
				return fmt.Errorf("segment: event %d object %d: index buffer length %d is not a multiple of width %d", i, j, len(o.Index.Idx), o.Rect.W)
			}
		}
	}
	return nil
}
