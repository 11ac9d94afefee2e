package segment

import (
	"testing"

	"github.com/ausocean/pgsmux/image/rgba"
	"github.com/ausocean/pgsmux/source"
	"github.com/ausocean/utils/logging"
)

func testLogger(t *testing.T) *logging.TestLogger { return (*logging.TestLogger)(t) }

func emptyFrame(w, h int) rgba.Image { return rgba.New(w, h) }

func paintedFrame(w, h int, r, g, b, a byte) rgba.Image {
	img := rgba.New(w, h)
	for p := 0; p < w*h; p++ {
		off := p * rgba.BytesPerPixel
		img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3] = r, g, b, a
	}
	return img
}

func mustSource(t *testing.T, w, h, num, den int, frames []rgba.Image) *source.Mem {
	t.Helper()
	src, err := source.NewMem(w, h, num, den, frames)
	if err != nil {
		t.Fatalf("NewMem: %v", err)
	}
	return src
}

func TestRunEmptyStreamRejectedWithoutAllowEmpty(t *testing.T) {
	frames := make([]rgba.Image, 24)
	for i := range frames {
		frames[i] = emptyFrame(16, 16)
	}
	src := mustSource(t, 16, 16, 24, 1, frames)
	d := NewDriver(src, Config{Count: 24}, testLogger(t))

	events, autoCut, err := d.Run()
	if err != ErrNoEvents {
		t.Fatalf("err = %v, want ErrNoEvents", err)
	}
	if len(events) != 0 || autoCut {
		t.Fatalf("events = %+v, autoCut = %v, want empty/false", events, autoCut)
	}
}

func TestRunEmptyStreamAllowed(t *testing.T) {
	frames := make([]rgba.Image, 24)
	for i := range frames {
		frames[i] = emptyFrame(16, 16)
	}
	src := mustSource(t, 16, 16, 24, 1, frames)
	d := NewDriver(src, Config{Count: 24, AllowEmpty: true}, testLogger(t))

	events, _, err := d.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("events = %+v, want none", events)
	}
}

func TestRunSingleEventFrames5To14(t *testing.T) {
	frames := make([]rgba.Image, 24)
	for i := range frames {
		if i >= 5 && i < 15 {
			frames[i] = paintedFrame(16, 16, 255, 255, 255, 255)
		} else {
			frames[i] = emptyFrame(16, 16)
		}
	}
	src := mustSource(t, 16, 16, 24000, 1001, frames)
	d := NewDriver(src, Config{Count: 24}, testLogger(t))

	events, autoCut, err := d.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if autoCut {
		t.Fatal("autoCut should be false: stream ends with empty frames")
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Start != 5 || events[0].End != 15 {
		t.Fatalf("event range = [%d,%d), want [5,15)", events[0].Start, events[0].End)
	}
}

func TestRunAdjacentEventsDifferByOnePixelDoNotMerge(t *testing.T) {
	a := paintedFrame(16, 16, 255, 0, 0, 255)
	b := paintedFrame(16, 16, 255, 0, 0, 255)
	off := 0 // pixel (0,0)
	b.Pix[off] = 254 // one channel differs by one pixel's worth of color.

	frames := []rgba.Image{a, b, emptyFrame(16, 16)}
	src := mustSource(t, 16, 16, 25, 1, frames)
	d := NewDriver(src, Config{Count: 3}, testLogger(t))

	events, _, err := d.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (no merge across a one-pixel difference)", len(events))
	}
	if events[0].Start != 0 || events[0].End != 1 {
		t.Fatalf("event 0 = [%d,%d), want [0,1)", events[0].Start, events[0].End)
	}
	if events[1].Start != 1 || events[1].End != 2 {
		t.Fatalf("event 1 = [%d,%d), want [1,2)", events[1].Start, events[1].End)
	}
}

func TestRunOversizedEventSplits(t *testing.T) {
	frames := make([]rgba.Image, 100)
	for i := range frames {
		frames[i] = paintedFrame(16, 16, 0, 255, 0, 255)
	}
	src := mustSource(t, 16, 16, 25, 1, frames)
	d := NewDriver(src, Config{Count: 100, SplitAt: 30, MinSplit: 3}, testLogger(t))

	events, autoCut, err := d.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !autoCut {
		t.Fatal("autoCut should be true: the single event runs to stream end")
	}
	wantLens := []int{30, 30, 30, 10}
	if len(events) != len(wantLens) {
		t.Fatalf("got %d events, want %d", len(events), len(wantLens))
	}
	for i, want := range wantLens {
		got := events[i].End - events[i].Start
		if got != want {
			t.Fatalf("event %d length = %d, want %d", i, got, want)
		}
	}
}

func TestRunOversizedEventAbsorbsShortResidue(t *testing.T) {
	frames := make([]rgba.Image, 100)
	for i := range frames {
		frames[i] = paintedFrame(16, 16, 0, 255, 0, 255)
	}
	src := mustSource(t, 16, 16, 25, 1, frames)
	d := NewDriver(src, Config{Count: 100, SplitAt: 30, MinSplit: 15}, testLogger(t))

	events, _, err := d.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	wantLens := []int{30, 30, 40}
	if len(events) != len(wantLens) {
		t.Fatalf("got %d events, want %d", len(events), len(wantLens))
	}
	for i, want := range wantLens {
		got := events[i].End - events[i].Start
		if got != want {
			t.Fatalf("event %d length = %d, want %d", i, got, want)
		}
	}
}

func TestRunMarkForcedSetsEveryEvent(t *testing.T) {
	frames := []rgba.Image{paintedFrame(16, 16, 1, 2, 3, 255), emptyFrame(16, 16)}
	src := mustSource(t, 16, 16, 25, 1, frames)
	d := NewDriver(src, Config{Count: 2, MarkForced: true}, testLogger(t))

	events, _, err := d.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, e := range events {
		if !e.Forced {
			t.Fatalf("event %d not forced", i)
		}
	}
}

func TestRunBufferOptProducesTwoObjectsForLShape(t *testing.T) {
	img := emptyFrame(40, 40)
	paint := func(x0, y0, w, h int) {
		for y := y0; y < y0+h; y++ {
			for x := x0; x < x0+w; x++ {
				off := (y*40 + x) * rgba.BytesPerPixel
				img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3] = 200, 50, 50, 255
			}
		}
	}
	// An L-shape: a wide top bar and a narrow left column, far enough
	// apart on both axes that splitting saves substantial area.
	paint(0, 0, 40, 8)
	paint(0, 32, 8, 8)

	frames := []rgba.Image{img, emptyFrame(40, 40)}
	src := mustSource(t, 40, 40, 25, 1, frames)
	d := NewDriver(src, Config{Count: 2, BufferOpt: true}, testLogger(t))

	events, _, err := d.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if len(events[0].Objects) != 2 {
		t.Fatalf("got %d objects, want 2 for an L-shaped frame under BufferOpt", len(events[0].Objects))
	}
}

func TestRunBufferOptObjectsShareOneEventPalette(t *testing.T) {
	img := emptyFrame(40, 40)
	paint := func(x0, y0, w, h int, r, g, b byte) {
		for y := y0; y < y0+h; y++ {
			for x := x0; x < x0+w; x++ {
				off := (y*40 + x) * rgba.BytesPerPixel
				img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3] = r, g, b, 255
			}
		}
	}
	// Two distinct colors, one per arm of the L-shape, so a per-object
	// palette (rather than one shared per event) would place each color at
	// a different index in conflicting, colliding palettes.
	paint(0, 0, 40, 8, 200, 50, 50)
	paint(0, 32, 8, 8, 50, 200, 50)

	frames := []rgba.Image{img, emptyFrame(40, 40)}
	src := mustSource(t, 40, 40, 25, 1, frames)
	d := NewDriver(src, Config{Count: 2, BufferOpt: true}, testLogger(t))

	events, _, err := d.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	e := events[0]
	if len(e.Objects) != 2 {
		t.Fatalf("got %d objects, want 2", len(e.Objects))
	}
	if e.PaletteSize < 2 {
		t.Fatalf("event palette has %d entries, want at least 2 for two distinct colors", e.PaletteSize)
	}
	// Every object's indices must resolve within the one shared palette.
	for i, o := range e.Objects {
		for _, idx := range o.Index.Idx {
			if int(idx) > e.PaletteSize {
				t.Fatalf("object %d has index %d outside shared palette of size %d", i, idx, e.PaletteSize)
			}
		}
	}
}

func TestConfigValidateAggregatesErrors(t *testing.T) {
	c := Config{Seek: -1, Count: -1, SplitAt: 10, MinSplit: 10}
	err := c.Validate()
	if err == nil {
		t.Fatal("expected aggregate validation error")
	}
}

func TestConfigValidateAcceptsZeroValue(t *testing.T) {
	if err := (Config{}).Validate(); err != nil {
		t.Fatalf("zero-value Config should validate, got %v", err)
	}
}
