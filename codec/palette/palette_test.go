package palette

import (
	"testing"

	"github.com/ausocean/pgsmux/image/rgba"
)

func setPixel(img rgba.Image, x, y int, r, g, b, a byte) {
	off := (y*img.W + x) * rgba.BytesPerPixel
	img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3] = r, g, b, a
}

func TestQuantizeTransparentIsIndexZero(t *testing.T) {
	img := rgba.New(2, 2)
	pal, out, _ := Quantize(img)
	for _, idx := range out.Idx {
		if idx != 0 {
			t.Fatalf("expected index 0 for fully transparent image, got %d", idx)
		}
	}
	if pal[0] != (Entry{}) {
		t.Fatalf("expected reserved transparent entry to be zero, got %+v", pal[0])
	}
}

func TestQuantizeFewColorsIsLossless(t *testing.T) {
	img := rgba.New(2, 2)
	setPixel(img, 0, 0, 255, 0, 0, 255)
	setPixel(img, 1, 0, 0, 255, 0, 255)
	setPixel(img, 0, 1, 0, 0, 255, 255)
	setPixel(img, 1, 1, 0, 0, 0, 0)

	pal, out, _ := Quantize(img)

	idxAt := func(x, y int) byte { return out.Idx[y*img.W+x] }
	if idxAt(1, 1) != 0 {
		t.Fatalf("transparent pixel must map to index 0")
	}
	red, green, blue := idxAt(0, 0), idxAt(1, 0), idxAt(0, 1)
	if red == 0 || green == 0 || blue == 0 {
		t.Fatalf("opaque pixels must not map to index 0")
	}
	if red == green || green == blue || red == blue {
		t.Fatalf("distinct opaque colors must map to distinct indices: %d %d %d", red, green, blue)
	}
	for _, idx := range []byte{red, green, blue} {
		if pal[idx].Alpha != 255 {
			t.Fatalf("index %d has alpha %d, want 255", idx, pal[idx].Alpha)
		}
	}
}

func TestQuantizeDeterministic(t *testing.T) {
	img := rgba.New(16, 16)
	n := byte(0)
	for y := 0; y < img.H; y++ {
		for x := 0; x < img.W; x++ {
			setPixel(img, x, y, n, n*3, n*7, 255)
			n++
		}
	}

	pal1, out1, _ := Quantize(img)
	pal2, out2, _ := Quantize(img)

	if pal1 != pal2 {
		t.Fatal("Quantize must be deterministic across runs on identical input")
	}
	for i := range out1.Idx {
		if out1.Idx[i] != out2.Idx[i] {
			t.Fatalf("index buffers diverge at pixel %d: %d vs %d", i, out1.Idx[i], out2.Idx[i])
		}
	}
}

func TestQuantizeReducesOverflowToMaxEntries(t *testing.T) {
	img := rgba.New(20, 20) // 400 pixels; n wraps at 256, giving 256 distinct colors.
	n := byte(0)
	for y := 0; y < img.H; y++ {
		for x := 0; x < img.W; x++ {
			setPixel(img, x, y, n, byte(int(n)*53%256), byte(int(n)*97%256), 255)
			n++
		}
	}

	pal, out, _ := Quantize(img)

	used := make(map[byte]bool)
	for _, idx := range out.Idx {
		used[idx] = true
	}
	delete(used, 0)
	if len(used) > MaxEntries {
		t.Fatalf("used %d non-transparent indices, want <= %d", len(used), MaxEntries)
	}
	for idx := range used {
		if pal[idx].Alpha == 0 {
			t.Fatalf("index %d is used by an opaque pixel but has alpha 0", idx)
		}
	}
}

func TestToYCrCbWhiteAndBlack(t *testing.T) {
	white := toYCrCb(255, 255, 255, 255)
	if white.Y != 255 {
		t.Fatalf("white luma = %d, want 255", white.Y)
	}
	black := toYCrCb(0, 0, 0, 255)
	if black.Y != 0 {
		t.Fatalf("black luma = %d, want 0", black.Y)
	}
}
