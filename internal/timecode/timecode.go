/*
NAME
  timecode.go - SMPTE-style frame timecode formatting.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package timecode formats frame numbers as non-drop-frame HH:MM:SS:FF
// timecodes against an integer frame rate, as used in BDN XML event
// tables.
package timecode

import "fmt"

// ErrHoursOverflow is returned by Format when a frame number corresponds
// to 100 or more hours, which does not fit the two-digit HH field.
type ErrHoursOverflow struct {
	Hours int
}

func (e ErrHoursOverflow) Error() string {
	return fmt.Sprintf("timecode: %d hours does not fit a two-digit field", e.Hours)
}

// Format returns the HH:MM:SS:FF timecode for frame number frame at the
// given integer frame rate fps, counting frames from 0.
func Format(frame, fps int) (string, error) {
	if fps <= 0 {
		return "", fmt.Errorf("timecode: frame rate must be positive, got %d", fps)
	}
	totalSeconds := frame / fps
	ff := frame % fps
	ss := totalSeconds % 60
	mm := (totalSeconds / 60) % 60
	hh := totalSeconds / 3600
	if hh > 99 {
		return "", ErrHoursOverflow{Hours: hh}
	}
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hh, mm, ss, ff), nil
}
