/*
NAME
  palette.go - reduces an RGBA8 raster to a PGS-compatible palette of up to
  254 colors plus transparency.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package palette quantizes an RGBA8 image down to at most 254 opaque or
// semi-transparent colors plus a reserved fully-transparent index 0,
// producing the palette and index buffer a PGS ODS/PDS pair is built from.
package palette

import (
	"sort"

	"github.com/ausocean/pgsmux/image/rgba"
	"gonum.org/v1/gonum/stat"
)

// MaxEntries is the largest number of non-transparent palette entries this
// package will ever produce (indices 1..254, with index 0 reserved for
// transparency and index 255 available but unused by Quantize).
const MaxEntries = 254

// Entry is one palette slot: a BT.601 full-range YCrCb triple plus alpha.
type Entry struct {
	Y, Cr, Cb, Alpha byte
}

// Palette is an ordered set of up to 256 entries. Index 0 is always
// {0,0,0,0} (fully transparent).
type Palette [256]Entry

// Image is a palettized raster: the same W x H as the source, each pixel
// replaced by an index into a Palette.
type Image struct {
	W, H int
	Idx  []byte
}

// rgbaKey packs one source RGBA pixel into a comparable map key.
type rgbaKey uint32

func keyOf(r, g, b, a byte) rgbaKey {
	return rgbaKey(r)<<24 | rgbaKey(g)<<16 | rgbaKey(b)<<8 | rgbaKey(a)
}

// Quantize reduces img to a Palette of at most MaxEntries non-transparent entries
// (plus the reserved transparent index 0) and an Image of the same
// dimensions holding one palette index per pixel. img is assumed to already
// have had rgba.ZeroTransparent applied, so every alpha==0 pixel is exactly
// {0,0,0,0} and maps to index 0.
//
// When at most MaxEntries distinct non-transparent colors are present,
// they are assigned indices in first-seen, row-major order. Otherwise the
// full set of source pixels is reduced via median-cut (reduce) to exactly
// MaxEntries representative colors, indexed in median-cut bucket order.
// Either way the result is deterministic, so that two
// invocations over identical input always produce a byte-identical
// palette and index buffer. The third return value is the number of
// non-transparent entries written into Palette (indices 1..n).
func Quantize(img rgba.Image) (Palette, Image, int) {
	colors, counts := collect(img)

	var chosen []rgbaKey
	var assign map[rgbaKey]rgbaKey // source color -> representative color
	if len(colors) <= MaxEntries {
		chosen = colors
		assign = nil
	} else {
		chosen, assign = reduce(colors, counts, MaxEntries)
	}

	var pal Palette
	index := make(map[rgbaKey]byte, len(chosen))
	for i, c := range chosen {
		r, g, b, a := unpack(c)
		pal[i+1] = toYCrCb(r, g, b, a)
		index[c] = byte(i + 1)
	}

	out := Image{W: img.W, H: img.H, Idx: make([]byte, img.W*img.H)}
	for p := 0; p < img.W*img.H; p++ {
		off := p * rgba.BytesPerPixel
		r, g, b, a := img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3]
		if a == 0 {
			continue // index 0, already zero-valued.
		}
		c := keyOf(r, g, b, a)
		if assign != nil {
			c = assign[c]
		}
		out.Idx[p] = index[c]
	}
	return pal, out, len(chosen)
}

// collect walks img in row-major order and returns the distinct
// non-transparent colors in first-seen order, plus a parallel slice of
// pixel counts for each.
func collect(img rgba.Image) (colors []rgbaKey, counts []int) {
	seen := make(map[rgbaKey]int)
	for p := 0; p < img.W*img.H; p++ {
		off := p * rgba.BytesPerPixel
		a := img.Pix[off+3]
		if a == 0 {
			continue
		}
		c := keyOf(img.Pix[off], img.Pix[off+1], img.Pix[off+2], a)
		if i, ok := seen[c]; ok {
			counts[i]++
			continue
		}
		seen[c] = len(colors)
		colors = append(colors, c)
		counts = append(counts, 1)
	}
	return
}

func unpack(c rgbaKey) (r, g, b, a byte) {
	return byte(c >> 24), byte(c >> 16), byte(c >> 8), byte(c)
}

// toYCrCb converts one RGBA pixel to the PGS palette entry layout using
// BT.601 full-range integer coefficients, with rounded (not truncated)
// integer arithmetic so repeated conversions of the same input are
// bit-exact.
func toYCrCb(r, g, b, a byte) Entry {
	ri, gi, bi := int32(r), int32(g), int32(b)
	// BT.601 full-range, scaled by 65536 and rounded.
	y := (19595*ri + 38470*gi + 7471*bi + 32768) >> 16
	cr := (32768*ri - 27460*gi - 5328*bi + 8388608 + 32768) >> 16
	cb := (-11056*ri - 21712*gi + 32768*bi + 8388608 + 32768) >> 16
	return Entry{Y: clamp8(y), Cr: clamp8(cr), Cb: clamp8(cb), Alpha: a}
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

// bucket is one median-cut working set: a list of colors plus the pixel
// count of each, used to choose a split axis and pivot.
type bucket struct {
	colors []rgbaKey
	counts []int
}

func (b bucket) population() int {
	total := 0
	for _, c := range b.counts {
		total += c
	}
	return total
}

// reduce performs deterministic median-cut quantization of colors (with
// per-color pixel counts) down to exactly n representative colors,
// returning the chosen representatives and a map from every original color
// to the representative of the bucket it landed in.
func reduce(colors []rgbaKey, counts []int, n int) (chosen []rgbaKey, assign map[rgbaKey]rgbaKey) {
	buckets := []bucket{{colors: colors, counts: counts}}

	for len(buckets) < n {
		// Split the most populous bucket with more than one color.
		splitIdx := -1
		best := -1
		for i, b := range buckets {
			if len(b.colors) < 2 {
				continue
			}
			pop := b.population()
			if pop > best {
				best = pop
				splitIdx = i
			}
		}
		if splitIdx < 0 {
			break // every remaining bucket is a single color.
		}
		a, c := splitBucket(buckets[splitIdx])
		buckets[splitIdx] = a
		buckets = append(buckets, c)
	}

	assign = make(map[rgbaKey]rgbaKey, len(colors))
	chosen = make([]rgbaKey, len(buckets))
	for i, b := range buckets {
		rep := representative(b)
		chosen[i] = rep
		for _, c := range b.colors {
			assign[c] = rep
		}
	}
	return chosen, assign
}

// splitBucket partitions b's colors along the channel (R, G or B) with the
// greatest range, at the population-weighted median, and returns the two
// halves.
func splitBucket(b bucket) (lo, hi bucket) {
	type idxVal struct {
		idx int
		val byte
	}
	channel := func(c rgbaKey, ch int) byte {
		r, g, bl, _ := unpack(c)
		switch ch {
		case 0:
			return r
		case 1:
			return g
		default:
			return bl
		}
	}

	var ranges [3][2]byte // min, max per channel
	for ch := 0; ch < 3; ch++ {
		ranges[ch][0] = 255
	}
	for _, c := range b.colors {
		for ch := 0; ch < 3; ch++ {
			v := channel(c, ch)
			if v < ranges[ch][0] {
				ranges[ch][0] = v
			}
			if v > ranges[ch][1] {
				ranges[ch][1] = v
			}
		}
	}
	splitCh := 0
	bestRange := -1
	for ch := 0; ch < 3; ch++ {
		r := int(ranges[ch][1]) - int(ranges[ch][0])
		if r > bestRange {
			bestRange = r
			splitCh = ch
		}
	}

	order := make([]idxVal, len(b.colors))
	for i, c := range b.colors {
		order[i] = idxVal{i, channel(c, splitCh)}
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].val != order[j].val {
			return order[i].val < order[j].val
		}
		return order[i].idx < order[j].idx
	})

	total := b.population()
	half := total / 2
	running := 0
	cut := len(order) - 1
	for i, ov := range order {
		running += b.counts[ov.idx]
		if running >= half {
			cut = i
			break
		}
	}
	if cut == len(order)-1 && cut > 0 {
		cut = len(order) / 2 // ensure both halves are non-empty for uniform counts.
	}
	if cut < 0 {
		cut = 0
	}

	loColors := make([]rgbaKey, 0, cut+1)
	loCounts := make([]int, 0, cut+1)
	hiColors := make([]rgbaKey, 0, len(order)-cut-1)
	hiCounts := make([]int, 0, len(order)-cut-1)
	for i, ov := range order {
		if i <= cut {
			loColors = append(loColors, b.colors[ov.idx])
			loCounts = append(loCounts, b.counts[ov.idx])
		} else {
			hiColors = append(hiColors, b.colors[ov.idx])
			hiCounts = append(hiCounts, b.counts[ov.idx])
		}
	}
	if len(hiColors) == 0 && len(loColors) > 1 {
		hiColors = append(hiColors, loColors[len(loColors)-1])
		hiCounts = append(hiCounts, loCounts[len(loCounts)-1])
		loColors = loColors[:len(loColors)-1]
		loCounts = loCounts[:len(loCounts)-1]
	}
	return bucket{colors: loColors, counts: loCounts}, bucket{colors: hiColors, counts: hiCounts}
}

// representative returns the population-weighted average color of b, using
// stat.Mean over each channel so the pixel counts act as sample weights.
// Weighted-mean arithmetic over a fixed slice of float64s is deterministic,
// so repeated calls on identical buckets agree bit-for-bit.
func representative(b bucket) rgbaKey {
	n := len(b.colors)
	r := make([]float64, n)
	g := make([]float64, n)
	bl := make([]float64, n)
	a := make([]float64, n)
	w := make([]float64, n)
	for i, c := range b.colors {
		cr, cg, cb, ca := unpack(c)
		r[i], g[i], bl[i], a[i] = float64(cr), float64(cg), float64(cb), float64(ca)
		w[i] = float64(b.counts[i])
	}
	round := func(mean float64) byte { return clamp8(int32(mean + 0.5)) }
	return keyOf(round(stat.Mean(r, w)), round(stat.Mean(g, w)), round(stat.Mean(bl, w)), round(stat.Mean(a, w)))
}
