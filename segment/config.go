/*
NAME
  config.go - segmenter configuration and validation.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package segment drives the subtitle pipeline: it reads frames from a
// source.Source, detects event boundaries, crops and palettizes each
// event, and emits PGS and/or BDN XML output.
package segment

import "fmt"

// Config holds the segmenter's orthogonal run options.
type Config struct {
	// Seek is the first frame index to read.
	Seek int

	// Count is the maximum number of frames to process. Zero means no
	// limit beyond the source's own length.
	Count int

	// TOffset is added, in frames, to every emitted PTS.
	TOffset int

	// SplitAt, if > 0, chops any event longer than this many frames into
	// consecutive segments.
	SplitAt int

	// MinSplit is the minimum residue length after a split; a trailing
	// segment shorter than this is absorbed into its predecessor.
	MinSplit int

	// AutoCrop applies image/crop.AutoCrop to every event.
	AutoCrop bool

	// BufferOpt applies image/crop.AutoSplit to every event.
	BufferOpt bool

	// EvenY forces even Y and height on every crop.
	EvenY bool

	// Palette, when true, emits palettized PNG/PDS output. Always
	// effectively true for PGS output, since PGS has no other picture
	// format.
	Palette bool

	// Ugly permits aesthetically poor splits when they reduce area.
	Ugly bool

	// AllowEmpty emits output even when no events were found.
	AllowEmpty bool

	// Strict enables strict decoder buffer checks in the PGS writer.
	Strict bool

	// MarkForced sets every event's forced flag.
	MarkForced bool
}

// multiError aggregates every validation failure found in a single Config,
// so a caller sees all of them at once instead of stopping at the first.
type multiError []error

func (me multiError) Error() string {
	if len(me) == 0 {
		panic("segment: invalid use of multiError")
	}
	return fmt.Sprintf("%v", []error(me))
}

// Validate reports every malformed field of c as a single aggregate error,
// or nil if c is usable.
func (c Config) Validate() error {
	var errs multiError
	if c.Seek < 0 {
		errs = append(errs, fmt.Errorf("segment: seek must be >= 0, got %d", c.Seek))
	}
	if c.Count < 0 {
		errs = append(errs, fmt.Errorf("segment: count must be >= 0, got %d", c.Count))
	}
	if c.SplitAt < 0 {
		errs = append(errs, fmt.Errorf("segment: split_at must be >= 0, got %d", c.SplitAt))
	}
	if c.MinSplit < 0 {
		errs = append(errs, fmt.Errorf("segment: min_split must be >= 0, got %d", c.MinSplit))
	}
	if c.SplitAt > 0 && c.MinSplit >= c.SplitAt {
		errs = append(errs, fmt.Errorf("segment: min_split (%d) must be less than split_at (%d)", c.MinSplit, c.SplitAt))
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
