/*
NAME
  driver.go - frame-by-frame event segmentation.

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

	"github.com/ausocean/pgsmux/codec/palette"
	"github.com/ausocean/pgsmux/image/crop"
	"github.com/ausocean/pgsmux/image/rgba"
	"github.com/ausocean/pgsmux/source"
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

// Object is one cropped sub-image of an Event, ready to become a PGS
// composition object or a BDN XML Graphic. Its Index values are palette
// indices into the owning Event's Palette.
type Object struct {
	Rect  crop.Rect
	Index palette.Image
}

// Event is one subtitle's on-screen lifetime, frames [Start, End), with one
// or two Objects placing its visible content against a single shared
// Palette, per spec.
type Event struct {
	Start, End  int
	Forced      bool
	Palette     palette.Palette
	PaletteSize int
	Objects     []Object
}

// ErrNoEvents is returned by Run when the source contains no non-empty
// frames and the driver's Config does not set AllowEmpty; callers that do
// set AllowEmpty get an empty Event slice and a nil error instead.
var ErrNoEvents = errors.New("segment: no events detected")

// Driver owns the single piece of mutable state the pipeline shares across
// frames: the in-flight event's reference image. It consumes src's frames
// sequentially and produces a final, split Event list.
type Driver struct {
	src source.Source
	cfg Config
	log logging.Logger
}

// NewDriver returns a Driver reading frames from src under cfg.
func NewDriver(src source.Source, cfg Config, log logging.Logger) *Driver {
	return &Driver{src: src, cfg: cfg, log: log}
}

// rawEvent is an in-progress or just-closed event before long-event
// splitting: a frame range and the reference image it was detected from.
type rawEvent struct {
	start, end  int
	ref         rgba.Image
	palette     palette.Palette
	paletteSize int
	objects     []Object
}

// Run executes the main segmentation loop described in the segmenter's
// design: it seeks past d.cfg.Seek frames, then reads up to d.cfg.Count
// frames (or until the source is exhausted), opening and closing events as
// frame content starts, continues and stops matching. autoCut reports
// whether the stream ended while an event was still open, so callers
// building BDN XML know to extend the final OutTC by one frame.
func (d *Driver) Run() (events []Event, autoCut bool, err error) {
	w, h := d.src.Dimensions()
	cropOpts := crop.Options{EnforceEvenY: d.cfg.EvenY, Ugly: d.cfg.Ugly}

	scratch := rgba.New(w, h)
	for i := 0; i < d.cfg.Seek; i++ {
		if err := d.src.ReadFrame(scratch); err != nil {
			if err == io.EOF {
				return nil, false, d.finish(nil)
			}
			return nil, false, errors.Wrap(err, fmt.Sprintf("segment: seek past frame %d", i))
		}
	}

	var raw []rawEvent
	var open *rawEvent

	f := d.cfg.Seek
	cur := rgba.New(w, h)
	for processed := 0; d.cfg.Count == 0 || processed < d.cfg.Count; processed++ {
		readErr := d.src.ReadFrame(cur)
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, false, errors.Wrap(readErr, fmt.Sprintf("segment: read frame %d", f))
		}

		if open == nil {
			if !rgba.IsEmpty(cur) {
				ev, beginErr := d.beginEvent(f, cur, cropOpts)
				if beginErr != nil {
					return nil, false, beginErr
				}
				open = ev
			}
		} else if !rgba.IsIdentical(cur, open.ref) {
			open.end = f
			raw = append(raw, *open)
			open = nil
			if !rgba.IsEmpty(cur) {
				ev, beginErr := d.beginEvent(f, cur, cropOpts)
				if beginErr != nil {
					return nil, false, beginErr
				}
				open = ev
			}
		}
		f++
	}

	if open != nil {
		autoCut = true
		open.end = f
		raw = append(raw, *open)
	}

	events = splitLongEvents(raw, d.cfg.SplitAt, d.cfg.MinSplit)
	if d.cfg.MarkForced {
		for i := range events {
			events[i].Forced = true
		}
	}
	return events, autoCut, d.finish(events)
}

// finish enforces AllowEmpty: an empty event list is only an error when the
// caller did not opt into allowing it.
func (d *Driver) finish(events []Event) error {
	if len(events) == 0 && !d.cfg.AllowEmpty {
		return ErrNoEvents
	}
	return nil
}

// beginEvent normalizes cur's transparent pixels, crops or splits it per
// d.cfg, palettizes the whole frame once and slices each resulting object's
// indices out of that one index buffer, and stores the normalized frame
// as the new reference image future frames are compared against.
func (d *Driver) beginEvent(f int, cur rgba.Image, cropOpts crop.Options) (*rawEvent, error) {
	ref := rgba.New(cur.W, cur.H)
	copy(ref.Pix, cur.Pix)
	rgba.ZeroTransparent(ref)

	var rects []crop.Rect
	switch {
	case d.cfg.BufferOpt:
		rects = crop.AutoSplit(ref, cropOpts)
	case d.cfg.AutoCrop:
		rects = []crop.Rect{crop.AutoCrop(ref, cropOpts)}
	default:
		rects = []crop.Rect{{X: 0, Y: 0, W: ref.W, H: ref.H}}
	}

	// The whole reference image is palettized once, per spec.md's "one
	// palette per event" data model, so every crop of this event references
	// a single shared PDS instead of colliding palette_id=0 redefinitions.
	pal, idx, n := palette.Quantize(ref)

	objects := make([]Object, len(rects))
	for i, r := range rects {
		sub, err := subPalette(idx, r)
		if err != nil {
			return nil, err
		}
		objects[i] = Object{Rect: r, Index: sub}
	}

	d.log.Debug("segment: event opened", "frame", f, "objects", len(objects))
	return &rawEvent{start: f, ref: ref, palette: pal, paletteSize: n, objects: objects}, nil
}

// subPalette copies the palette indices of r out of idx into a freshly
// allocated palette.Image the size of r.
func subPalette(idx palette.Image, r crop.Rect) (palette.Image, error) {
	if r.X < 0 || r.Y < 0 || r.X+r.W > idx.W || r.Y+r.H > idx.H {
		return palette.Image{}, fmt.Errorf("segment: crop %+v out of bounds for %dx%d image", r, idx.W, idx.H)
	}
	out := palette.Image{W: r.W, H: r.H, Idx: make([]byte, r.W*r.H)}
	for y := 0; y < r.H; y++ {
		srcOff := (r.Y+y)*idx.W + r.X
		dstOff := y * r.W
		copy(out.Idx[dstOff:dstOff+r.W], idx.Idx[srcOff:srcOff+r.W])
	}
	return out, nil
}

// splitLongEvents replaces any event longer than splitAt frames with
// ceil(len/splitAt) consecutive events of length splitAt, absorbing a
// final residue shorter than minSplit into its predecessor. splitAt <= 0
// disables splitting.
func splitLongEvents(raw []rawEvent, splitAt, minSplit int) []Event {
	var out []Event
	for _, r := range raw {
		length := r.end - r.start
		if splitAt <= 0 || length <= splitAt {
			out = append(out, Event{Start: r.start, End: r.end, Palette: r.palette, PaletteSize: r.paletteSize, Objects: r.objects})
			continue
		}

		start := r.start
		for start < r.end {
			segEnd := start + splitAt
			if segEnd > r.end {
				segEnd = r.end
			}
			if r.end-segEnd > 0 && r.end-segEnd < minSplit {
				// Remaining residue is too short to stand alone: absorb it
				// into this segment instead of starting a new one.
				segEnd = r.end
			}
			out = append(out, Event{Start: start, End: segEnd, Palette: r.palette, PaletteSize: r.paletteSize, Objects: r.objects})
			start = segEnd
		}
	}
	return out
}
