package crop

import (
	"testing"

	"github.com/ausocean/pgsmux/image/rgba"
)

func setPixel(img rgba.Image, x, y int, alpha byte) {
	off := (y*img.W + x) * rgba.BytesPerPixel
	img.Pix[off+3] = alpha
}

func TestAutoCropTightness(t *testing.T) {
	img := rgba.New(20, 20)
	setPixel(img, 5, 6, 255)
	setPixel(img, 10, 12, 255)

	r := AutoCrop(img, Options{})
	if r.X > 5 || r.Y > 6 || r.X+r.W < 11 || r.Y+r.H < 13 {
		t.Fatalf("crop %+v does not enclose both opaque pixels", r)
	}
	if r.W < MinSize || r.H < MinSize {
		t.Fatalf("crop %+v smaller than minimum size", r)
	}
}

func TestAutoCropEmpty(t *testing.T) {
	img := rgba.New(20, 20)
	r := AutoCrop(img, Options{})
	if r != (Rect{}) {
		t.Fatalf("expected zero rect for fully transparent image, got %+v", r)
	}
}

func TestAutoSplitOptimality(t *testing.T) {
	// An "L" shape: a block in the top-left and a block in the bottom-right,
	// far enough apart that splitting clearly wins.
	img := rgba.New(100, 100)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			setPixel(img, x, y, 255)
		}
	}
	for y := 80; y < 90; y++ {
		for x := 80; x < 90; x++ {
			setPixel(img, x, y, 255)
		}
	}

	full := AutoCrop(img, Options{})
	crops := AutoSplit(img, Options{Ugly: true})

	if len(crops) != 2 {
		t.Fatalf("expected a 2-way split for disjoint corners, got %d crops: %+v", len(crops), crops)
	}
	total := crops[0].Area() + crops[1].Area()
	if total >= full.Area() {
		t.Fatalf("split area %d not smaller than single-crop area %d", total, full.Area())
	}
	for _, c := range crops {
		if c.W < MinSize || c.H < MinSize {
			t.Fatalf("split crop %+v smaller than minimum size", c)
		}
	}
}

func TestAutoSplitSingleWhenNotWorthwhile(t *testing.T) {
	img := rgba.New(20, 20)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			setPixel(img, x, y, 255)
		}
	}
	crops := AutoSplit(img, Options{})
	if len(crops) != 1 {
		t.Fatalf("expected no split for a solid rectangle, got %+v", crops)
	}
}

func overlap(a, b Rect) bool {
	return a.X < b.X+b.W && b.X < a.X+a.W && a.Y < b.Y+b.H && b.Y < a.Y+a.H
}

func TestAutoSplitCropsNeverOverlap(t *testing.T) {
	// A narrow sliver beside a short, wider block: the best split leaves
	// the lower part of the sliver on its own, thinner than MinSize, so it
	// must grow before it is a valid crop, and neither crop may extend
	// into the other's side of the seam.
	img := rgba.New(100, 40)
	for y := 10; y < 30; y++ {
		setPixel(img, 40, y, 255)
		setPixel(img, 41, y, 255)
	}
	for y := 10; y < 14; y++ {
		for x := 45; x < 60; x++ {
			setPixel(img, x, y, 255)
		}
	}

	crops := AutoSplit(img, Options{Ugly: true})
	if len(crops) != 2 {
		t.Fatalf("expected a 2-way split, got %d crops: %+v", len(crops), crops)
	}
	if overlap(crops[0], crops[1]) {
		t.Fatalf("split crops overlap: %+v and %+v", crops[0], crops[1])
	}
}

func TestEnforceEvenY(t *testing.T) {
	img := rgba.New(20, 20)
	setPixel(img, 5, 5, 255)
	setPixel(img, 8, 9, 255)
	r := AutoCrop(img, Options{EnforceEvenY: true})
	if r.Y%2 != 0 || (r.Y+r.H)%2 != 0 {
		t.Fatalf("expected even Y and Y+H, got Y=%d H=%d", r.Y, r.H)
	}
}
