/*
NAME
  crop.go - computes the tight bounding rectangle(s) enclosing the
  non-transparent pixels of a frame.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package crop computes the one or two rectangular composition objects a
// PGS decoder needs to cover a frame's visible pixels, trading decode
// buffer area for composition object count.
package crop

import "github.com/ausocean/pgsmux/image/rgba"

// MinSize is the minimum width and height a crop rectangle may have, per
// the PGS composition object constraint.
const MinSize = 8

// Rect is an axis-aligned crop rectangle. 0 <= X, X+W <= image width;
// 0 <= Y, Y+H <= image height.
type Rect struct {
	X, Y, W, H int
}

// Area returns W*H.
func (r Rect) Area() int { return r.W * r.H }

// Options controls the crop/split heuristics.
type Options struct {
	// EnforceEvenY rounds Y and Y+H so both are even, for compatibility
	// with interlaced-video authoring pipelines.
	EnforceEvenY bool

	// Ugly permits any area-reducing split, even one that isolates a
	// small "ugly" fragment (e.g. a lone descender). When false (the
	// default), a split is only taken when it does not isolate a
	// fragment narrower or shorter than uglyFragmentMin on the seam axis.
	Ugly bool

	// AreaMargin is the fraction by which the two-rectangle total area
	// must be smaller than the single-rectangle area before a split is
	// preferred. Default (zero value) is resolved to defaultAreaMargin.
	AreaMargin float64
}

// defaultAreaMargin requires the split to save at least 5% of the
// single-rectangle area before it is taken, avoiding churn from
// near-equal-area splits that would only add a second composition object
// for no real buffer benefit.
const defaultAreaMargin = 0.05

// uglyFragmentMin is the minimum seam-axis extent a split-off fragment
// must have before it is considered "ugly" and rejected unless
// Options.Ugly is set.
const uglyFragmentMin = 6

func (o Options) areaMargin() float64 {
	if o.AreaMargin > 0 {
		return o.AreaMargin
	}
	return defaultAreaMargin
}

// AutoCrop finds the smallest axis-aligned rectangle enclosing all
// alpha>0 pixels of img. If img is entirely transparent, it returns a 0x0
// rectangle at (0,0). The result is expanded, toward the image interior,
// up to a minimum of MinSize x MinSize, and (if opts.EnforceEvenY) Y and
// Y+H are rounded so both are even.
func AutoCrop(img rgba.Image, opts Options) Rect {
	minX, minY, maxX, maxY, found := boundingBox(img, 0, img.W, 0, img.H)
	if !found {
		return Rect{}
	}
	r := Rect{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1}
	r = expandToMin(r, img.W, img.H)
	if opts.EnforceEvenY {
		r = enforceEvenY(r, img.H)
	}
	return r
}

// boundingBox scans the alpha channel of img restricted to columns
// [x0,x1) and rows [y0,y1) and returns the tightest box containing every
// alpha>0 pixel found, or found=false if none exist.
func boundingBox(img rgba.Image, x0, x1, y0, y1 int) (minX, minY, maxX, maxY int, found bool) {
	minX, minY = x1, y1
	maxX, maxY = x0-1, y0-1
	for y := y0; y < y1; y++ {
		row := y * img.W * rgba.BytesPerPixel
		for x := x0; x < x1; x++ {
			if img.Pix[row+x*rgba.BytesPerPixel+3] == 0 {
				continue
			}
			found = true
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	return
}

// expandToMin grows r, preferring to expand toward the image interior, so
// that both dimensions are at least MinSize, clamped to the image bounds.
func expandToMin(r Rect, imgW, imgH int) Rect {
	return expandToMinBounds(r, 0, imgW, 0, imgH)
}

// expandToMinBounds grows r the same way expandToMin does, but clamps each
// axis to [xMin,xMax) and [yMin,yMax) rather than the whole image. A split
// rectangle passes the seam coordinate as the bound on its own side so
// expansion never crosses into the other half.
func expandToMinBounds(r Rect, xMin, xMax, yMin, yMax int) Rect {
	r.X, r.W = expandAxis(r.X, r.W, xMin, xMax)
	r.Y, r.H = expandAxis(r.Y, r.H, yMin, yMax)
	return r
}

func expandAxis(pos, length, lowBound, highBound int) (int, int) {
	bound := highBound - lowBound
	if length >= MinSize {
		return pos, length
	}
	need := MinSize - length
	before := need / 2
	after := need - before
	pos -= before
	length = MinSize
	if pos < lowBound {
		length += lowBound - pos
		pos = lowBound
	}
	if pos+length > highBound {
		over := pos + length - highBound
		pos -= over
		if pos < lowBound {
			length += lowBound - pos
			pos = lowBound
		}
	}
	_ = after
	if length > bound {
		length = bound
	}
	return pos, length
}

func enforceEvenY(r Rect, imgH int) Rect {
	if r.Y%2 != 0 {
		if r.Y > 0 {
			r.Y--
			r.H++
		} else {
			r.Y++
			if r.H > 0 {
				r.H--
			}
		}
	}
	if r.H%2 != 0 {
		if r.Y+r.H < imgH {
			r.H++
		} else if r.H > 0 {
			r.H--
		}
	}
	return r
}

// AutoSplit produces one or two crops whose union covers every
// non-transparent pixel of img, splitting into two only when doing so
// reduces total composition-object area by at least opts.areaMargin() and
// (unless opts.Ugly) does not isolate a thin "ugly" fragment.
func AutoSplit(img rgba.Image, opts Options) []Rect {
	full := AutoCrop(img, opts)
	if full.W == 0 || full.H == 0 {
		return []Rect{full}
	}

	best := bestSplit(img, full, opts)
	if best == nil {
		return []Rect{full}
	}
	return best
}

// bestSplit looks for a horizontal or vertical seam within full that
// separates the non-transparent pixels into two groups whose individually
// tightened crops beat full's area by opts.areaMargin(). It returns nil if
// no qualifying split exists.
func bestSplit(img rgba.Image, full Rect, opts Options) []Rect {
	var bestPair []Rect
	bestArea := full.Area()

	tryHorizontal := func(seam int) {
		top := cropSub(img, full.X, full.X+full.W, full.Y, seam)
		bot := cropSub(img, full.X, full.X+full.W, seam, full.Y+full.H)
		if top.W == 0 || bot.W == 0 {
			return // one side empty: not a real split.
		}
		topSpan, botSpan := top.H, bot.H
		top = expandToMinBounds(top, 0, img.W, full.Y, seam)
		bot = expandToMinBounds(bot, 0, img.W, seam, full.Y+full.H)
		considerPair(opts, top, bot, topSpan, botSpan, &bestPair, &bestArea)
	}
	tryVertical := func(seam int) {
		left := cropSub(img, full.X, seam, full.Y, full.Y+full.H)
		right := cropSub(img, seam, full.X+full.W, full.Y, full.Y+full.H)
		if left.W == 0 || right.W == 0 {
			return // one side empty: not a real split.
		}
		leftSpan, rightSpan := left.W, right.W
		left = expandToMinBounds(left, full.X, seam, 0, img.H)
		right = expandToMinBounds(right, seam, full.X+full.W, 0, img.H)
		considerPair(opts, left, right, leftSpan, rightSpan, &bestPair, &bestArea)
	}

	for seam := full.Y + MinSize; seam <= full.Y+full.H-MinSize; seam++ {
		tryHorizontal(seam)
	}
	for seam := full.X + MinSize; seam <= full.X+full.W-MinSize; seam++ {
		tryVertical(seam)
	}

	if bestPair == nil {
		return nil
	}
	margin := opts.areaMargin()
	if float64(bestArea) > float64(full.Area())*(1-margin) {
		return nil
	}
	return bestPair
}

// cropSub computes the tight bounding box within the given sub-region, or
// the zero Rect if the sub-region has no non-transparent pixels.
func cropSub(img rgba.Image, x0, x1, y0, y1 int) Rect {
	minX, minY, maxX, maxY, found := boundingBox(img, x0, x1, y0, y1)
	if !found {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1}
}

// considerPair scores an already seam-bounded-and-expanded candidate split
// (a, b) against the current best, rejecting it if either side is still
// under MinSize (the seam left no room to expand within its own half) or,
// unless opts.Ugly, if either side's pre-expansion seam-axis extent was
// thinner than uglyFragmentMin.
func considerPair(opts Options, a, b Rect, aSpan, bSpan int, bestPair *[]Rect, bestArea *int) {
	if a.W < MinSize || a.H < MinSize || b.W < MinSize || b.H < MinSize {
		return
	}
	if !opts.Ugly && (aSpan < uglyFragmentMin || bSpan < uglyFragmentMin) {
		return
	}
	total := a.Area() + b.Area()
	if total >= *bestArea {
		return
	}
	*bestArea = total
	*bestPair = []Rect{a, b}
}
