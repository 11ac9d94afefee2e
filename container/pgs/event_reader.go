/*
NAME
  event_reader.go - minimal structured PGS segment reader for round-trip
  verification.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pgs

import (
	"encoding/binary"
	"fmt"
	"io"
)

// DecodedObject is one composition object's placement and dimensions, as
// reconstructed from a PCS's composition_object entry and its matching
// ODS.
type DecodedObject struct {
	ID            uint16
	Forced        bool
	Width, Height int
}

// DecodedEvent is one subtitle event reconstructed from a PGS elementary
// stream: the Display Set that shows it and the PCS that clears it.
type DecodedEvent struct {
	StartPTS, EndPTS uint32
	Objects          []DecodedObject
}

// ReadEvents decodes every event in a PGS elementary stream read from r.
// It tracks just enough structure — composition objects and their
// forced flags from each PCS-start, and widths/heights from the ODS
// fragments that follow — to support round-trip verification; it does
// not decode palette or RLE picture data. Display Sets that carry no
// composition objects (ends-of-event, and Close's stream-terminating
// END) are not returned as events.
func ReadEvents(r io.Reader) ([]DecodedEvent, error) {
	dec := NewDecoder(r)

	var events []DecodedEvent
	var cur *DecodedEvent
	var awaitingContinuation bool
	var pendingID uint16

	for {
		seg, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch seg.Type {
		case typePCS:
			objects, err := parseCompositionObjects(seg.Payload)
			if err != nil {
				return nil, err
			}
			if len(objects) > 0 {
				cur = &DecodedEvent{StartPTS: seg.PTS}
				for _, o := range objects {
					cur.Objects = append(cur.Objects, DecodedObject{ID: o.ObjectID, Forced: o.Forced})
				}
			} else if cur != nil {
				cur.EndPTS = seg.PTS
				events = append(events, *cur)
				cur = nil
			}

		case typeODS:
			if cur == nil {
				continue
			}
			if !awaitingContinuation {
				id, width, height, multiFragment, err := parseFirstODSFragment(seg.Payload)
				if err != nil {
					return nil, err
				}
				setObjectDims(cur, id, width, height)
				if multiFragment {
					awaitingContinuation, pendingID = true, id
				}
				continue
			}
			last, err := parseContinuationODSFragment(seg.Payload)
			if err != nil {
				return nil, err
			}
			if last {
				awaitingContinuation, pendingID = false, 0
			}
			_ = pendingID
		}
	}
	return events, nil
}

func setObjectDims(e *DecodedEvent, id uint16, width, height int) {
	for i := range e.Objects {
		if e.Objects[i].ID == id {
			e.Objects[i].Width, e.Objects[i].Height = width, height
			return
		}
	}
}

// parseCompositionObjects reads the composition_object array out of a PCS
// payload, whether it is an epoch-start/normal composition (with objects)
// or the empty end-of-event composition pcsEndPayload writes.
func parseCompositionObjects(payload []byte) ([]CompositionObject, error) {
	if len(payload) < 11 {
		return nil, fmt.Errorf("pgs: PCS payload too short: %d bytes", len(payload))
	}
	count := int(payload[10])
	objects := make([]CompositionObject, 0, count)
	off := 11
	for i := 0; i < count; i++ {
		if off+8 > len(payload) {
			return nil, fmt.Errorf("pgs: PCS payload truncated at composition object %d", i)
		}
		objects = append(objects, CompositionObject{
			ObjectID: binary.BigEndian.Uint16(payload[off : off+2]),
			WindowID: payload[off+2],
			Forced:   payload[off+3]&forced != 0,
			X:        int(binary.BigEndian.Uint16(payload[off+4 : off+6])),
			Y:        int(binary.BigEndian.Uint16(payload[off+6 : off+8])),
		})
		off += 8
	}
	return objects, nil
}

// parseFirstODSFragment reads the id, width and height out of a first (or
// single) ODS fragment, and reports whether more continuation fragments
// follow.
func parseFirstODSFragment(payload []byte) (id uint16, width, height int, multiFragment bool, err error) {
	if len(payload) < odsFirstHeaderSize {
		return 0, 0, 0, false, fmt.Errorf("pgs: ODS first fragment too short: %d bytes", len(payload))
	}
	id = binary.BigEndian.Uint16(payload[0:2])
	flags := binary.BigEndian.Uint32(payload[3:7])
	width = int(binary.BigEndian.Uint16(payload[7:9]))
	height = int(binary.BigEndian.Uint16(payload[9:11]))
	return id, width, height, flags&magicSingle != magicSingle, nil
}

// parseContinuationODSFragment reports whether a continuation ODS fragment
// is the last one in its object's sequence.
func parseContinuationODSFragment(payload []byte) (last bool, err error) {
	if len(payload) < odsContHeaderSize {
		return false, fmt.Errorf("pgs: ODS continuation fragment too short: %d bytes", len(payload))
	}
	return payload[3] == fragmentLast, nil
}
