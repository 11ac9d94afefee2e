/*
NAME
  writer.go - PGS epoch assembly and buffer budget accounting.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pgs

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ausocean/pgsmux/codec/palette"
	"github.com/ausocean/pgsmux/codec/rle"
	"github.com/ausocean/utils/logging"
)

// Buffer budgets a PGS decoder is assumed to offer: the decoded object
// buffer holds fully expanded (one byte per pixel) pictures, the coded
// data buffer holds the RLE bitstream for objects not yet decoded.
const (
	decodedBufferBudget = 4 * 1024 * 1024
	codedBufferBudget   = 1 * 1024 * 1024

	// maxObjectsPerEpoch is the largest number of composition objects a
	// single epoch may reference before a new epoch_start is forced.
	maxObjectsPerEpoch = 64
)

var (
	// ErrTooManyObjects is returned when a single event places more
	// composition objects than fit under maxObjectsPerEpoch even in a
	// fresh epoch.
	ErrTooManyObjects = errors.New("pgs: event has more than the maximum composition objects per epoch")

	// ErrUnsupportedFrameRate is returned, wrapped with the offending
	// num/den, when NewWriter is given a frame rate PGS has no identifier
	// for.
	ErrUnsupportedFrameRate = errors.New("pgs: unsupported frame rate")
)

// Object is one decoded picture placed by a composition: its window
// placement and palette-indexed pixels. All objects in a single WriteEvent
// call share one palette, defined by a single PDS per spec.
type Object struct {
	ID       uint16
	WindowID byte
	Forced   bool
	X, Y     int // placement of the object within its window's screen space.

	Width, Height int
	Index         []byte
}

// Writer assembles PGS segments for a sequence of subtitle events into a
// single elementary stream, tracking decoder buffer budgets and forcing a
// new epoch whenever the running composition object count or either
// buffer budget would otherwise be exceeded.
type Writer struct {
	dst io.Writer
	log logging.Logger

	width, height int
	fps           byte

	compNum        uint16
	paletteVersion byte
	objectVersion  byte

	decodedUsed    int
	codedUsed      int
	objectsInEpoch int
	epochOpen      bool

	lastPTS uint32 // PTS of the most recently written segment.

	strict bool
}

// Option configures a Writer at construction.
type Option func(*Writer) error

// WithStrict causes WriteEvent to return an error when the combined pixel
// count of an event's objects exceeds the decoded buffer budget. Without
// it, such an event is written anyway, in a fresh epoch.
func WithStrict(strict bool) Option {
	return func(w *Writer) error {
		w.strict = strict
		return nil
	}
}

// NewWriter returns a Writer for frames of the given size and frame rate
// (num/den), writing to dst.
func NewWriter(dst io.Writer, log logging.Logger, width, height, num, den int, options ...Option) (*Writer, error) {
	id, ok := fpsID(num, den)
	if !ok {
		return nil, fmt.Errorf("%w: %d/%d", ErrUnsupportedFrameRate, num, den)
	}
	w := &Writer{dst: dst, log: log, width: width, height: height, fps: id}
	for _, opt := range options {
		if err := opt(w); err != nil {
			return nil, fmt.Errorf("pgs: option failed: %w", err)
		}
	}
	return w, nil
}

// WriteEvent emits one subtitle event as two Display Sets: PCS-start, WDS,
// PDS, ODS* and END at startPTS showing windows and objects sharing one
// palette (pal, with paletteSize non-transparent entries), followed by
// PCS-end, WDS and END at endPTS clearing the screen. A new epoch is
// started automatically whenever the epoch is not yet open, the object
// count would exceed maxObjectsPerEpoch, or either buffer budget would be
// exceeded by this event's objects.
func (w *Writer) WriteEvent(startPTS, endPTS uint32, windows []WindowDef, pal palette.Palette, paletteSize int, objects []Object) error {
	if len(objects) > maxObjectsPerEpoch {
		return ErrTooManyObjects
	}

	decodedNeed, codedNeed := 0, 0
	for _, o := range objects {
		decodedNeed += o.Width * o.Height
		codedNeed += estimatedCodedSize(o)
	}
	if w.strict && decodedNeed > decodedBufferBudget {
		return fmt.Errorf("pgs: event requires %d decoded bytes, exceeds budget of %d", decodedNeed, decodedBufferBudget)
	}

	epochStart := !w.epochOpen ||
		w.objectsInEpoch+len(objects) > maxObjectsPerEpoch ||
		w.decodedUsed+decodedNeed > decodedBufferBudget ||
		w.codedUsed+codedNeed > codedBufferBudget

	if epochStart {
		w.log.Debug("pgs: starting new epoch", "pts", startPTS, "objects", len(objects))
		w.decodedUsed, w.codedUsed, w.objectsInEpoch = 0, 0, 0
		w.epochOpen = true
	}

	state := compositionNormal
	if epochStart {
		state = compositionEpochStart
	}

	comps := make([]CompositionObject, len(objects))
	for i, o := range objects {
		comps[i] = CompositionObject{ObjectID: o.ID, WindowID: o.WindowID, Forced: o.Forced, X: o.X, Y: o.Y}
	}

	delay := decodeDelay(decodedNeed)
	if delay > startPTS {
		delay = startPTS // DTS cannot precede the start of the stream.
	}
	startDTS := startPTS - delay
	w.compNum++
	if err := w.write(segment{pts: startPTS, dts: startDTS, typ: typePCS,
		payload: pcsStartPayload(w.width, w.height, w.fps, w.compNum, state, comps)}); err != nil {
		return err
	}

	if len(windows) > 0 {
		if err := w.write(segment{pts: startPTS, dts: startPTS, typ: typeWDS, payload: wdsPayload(windows)}); err != nil {
			return err
		}
	}

	if len(objects) > 0 {
		w.paletteVersion++
		if err := w.write(segment{pts: startPTS, dts: startPTS, typ: typePDS,
			payload: pdsPayload(0, w.paletteVersion, pal, paletteSize)}); err != nil {
			return err
		}
	}

	for _, o := range objects {
		encoded, err := encodeObjectRLE(o)
		if err != nil {
			return err
		}
		w.objectVersion++
		for _, payload := range odsPayloads(o.ID, w.objectVersion, o.Width, o.Height, encoded) {
			if err := w.write(segment{pts: startPTS, dts: startPTS, typ: typeODS, payload: payload}); err != nil {
				return err
			}
		}

		w.decodedUsed += o.Width * o.Height
		w.codedUsed += len(encoded)
	}
	w.objectsInEpoch += len(objects)

	if err := w.write(segment{pts: startPTS, dts: startPTS, typ: typeEND}); err != nil {
		return err
	}

	w.compNum++
	if err := w.write(segment{pts: endPTS, dts: endPTS, typ: typePCS,
		payload: pcsEndPayload(w.width, w.height, w.fps, w.compNum)}); err != nil {
		return err
	}

	if len(windows) > 0 {
		if err := w.write(segment{pts: endPTS, dts: endPTS, typ: typeWDS, payload: wdsPayload(windows)}); err != nil {
			return err
		}
	}

	return w.write(segment{pts: endPTS, dts: endPTS, typ: typeEND})
}

// Close writes the final end-of-stream marker segment, stamped with the
// PTS of the last segment written so timestamps never go backwards.
func (w *Writer) Close() error {
	return w.write(segment{pts: w.lastPTS, dts: w.lastPTS, typ: typeEND})
}

func (w *Writer) write(s segment) error {
	_, err := w.dst.Write(s.Bytes())
	if err != nil {
		return fmt.Errorf("pgs: write segment type 0x%02x: %w", s.typ, err)
	}
	w.lastPTS = s.pts
	return nil
}

// encodeObjectRLE run-length encodes o's palette-index raster.
func encodeObjectRLE(o Object) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := rle.NewEncoder(&buf, o.Width).Write(o.Index); err != nil {
		return nil, fmt.Errorf("pgs: rle encode object %d: %w", o.ID, err)
	}
	return buf.Bytes(), nil
}

// decodeBitrate is the conservative decoder throughput spec.md's DTS rule
// is expressed against: 256 Mbit/s.
const decodeBitrate = 256_000_000

// decodeDelay returns the conservative minimum decode time, in 90 kHz
// ticks, for decodedBytes worth of palettized picture data. WriteEvent caps
// it at the event's PTS so the DTS never underflows near stream start.
func decodeDelay(decodedBytes int) uint32 {
	ticks := (int64(decodedBytes) * 8 * 90000) / decodeBitrate
	if ticks < 0 {
		ticks = 0
	}
	return uint32(ticks)
}

// estimatedCodedSize approximates the RLE-coded size of o for budget
// accounting purposes, ahead of actually encoding it: two bytes per row
// (the mandatory end-of-line marker) plus one byte per pixel. This
// over-counts compressible runs; rows with many isolated transparent
// pixels, each coded in two bytes, can code larger than the estimate.
func estimatedCodedSize(o Object) int {
	return o.Height*2 + o.Width*o.Height
}
