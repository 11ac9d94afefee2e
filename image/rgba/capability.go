/*
NAME
  capability.go - process-wide selection of scalar vs accelerated image
  primitives.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rgba

import (
	"runtime"

	"github.com/ausocean/utils/logging"
	"golang.org/x/sys/cpu"
)

// Capabilities is the set of image primitives polymorphic over channel
// order and instruction set. A process selects one Capabilities value at
// startup (via Detect) and every Image operation in this package is
// dispatched through it; no other part of the pipeline observes which
// variant is in use. The selected value is held in the package-level
// variable caps, which this package's functions consult; it is not passed
// to them as an argument.
type Capabilities struct {
	isEmpty         func(Image) bool
	isIdentical     func(img, prev Image) bool
	zeroTransparent func(Image)
	swapChannels    func(Image)
}

// caps is the process-wide Capabilities, selected by Detect at package
// initialization and replaceable by SetCapabilities for testing.
var caps = Detect(nil)

// Detect inspects the running CPU and returns the best Capabilities
// available, logging a warning via log (if non-nil) when falling back to
// the scalar implementation. Detect never panics: scalar primitives are
// always correct, just slower.
func Detect(log logging.Logger) Capabilities {
	if (runtime.GOARCH == "amd64" || runtime.GOARCH == "386") && cpu.X86.HasSSE2 {
		return Capabilities{
			isEmpty:         isEmptySSE2,
			isIdentical:     isIdenticalSSE2,
			zeroTransparent: zeroTransparentSSE2,
			swapChannels:    swapChannelsScalar,
		}
	}
	if log != nil {
		log.Warning("SSE2 not available, using scalar image primitives")
	}
	return Capabilities{
		isEmpty:         isEmptyScalar,
		isIdentical:     isIdenticalScalar,
		zeroTransparent: zeroTransparentScalar,
		swapChannels:    swapChannelsScalar,
	}
}

// SetCapabilities overrides the process-wide Capabilities. It is intended
// for tests that need to force the scalar path regardless of the host CPU.
func SetCapabilities(c Capabilities) { caps = c }

func isEmptyScalar(img Image) bool {
	for i := 3; i < len(img.Pix); i += BytesPerPixel {
		if img.Pix[i] != 0 {
			return false
		}
	}
	return true
}

func isIdenticalScalar(img, prev Image) bool {
	ZeroTransparent(img)
	return bytesEqual(img.Pix, prev.Pix)
}

func zeroTransparentScalar(img Image) {
	for i := 0; i+3 < len(img.Pix); i += BytesPerPixel {
		if img.Pix[i+3] == 0 {
			img.Pix[i] = 0
			img.Pix[i+1] = 0
			img.Pix[i+2] = 0
		}
	}
}

func swapChannelsScalar(img Image) {
	for i := 0; i+2 < len(img.Pix); i += BytesPerPixel {
		img.Pix[i], img.Pix[i+2] = img.Pix[i+2], img.Pix[i]
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// isEmptySSE2, isIdenticalSSE2 and zeroTransparentSSE2 are placeholders for
// a vectorized implementation operating on the 16-byte-aligned buffers
// AlignedAlloc produces, four pixels at a time. No assembly is provided in
// this tree (see DESIGN.md); they currently alias the scalar versions so
// that Detect's SSE2 branch remains correct on machines that report
// cpu.X86.HasSSE2 until that assembly lands.
var (
	isEmptySSE2         = isEmptyScalar
	isIdenticalSSE2     = isIdenticalScalar
	zeroTransparentSSE2 = zeroTransparentScalar
)
