/*
NAME
  ods.go - object definition segment payloads and fragmentation.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pgs

import "encoding/binary"

// objectDataFragmentLimit is the largest object_data_length (RLE payload
// plus the 4-byte width/height counted within it) that fits in a single
// ODS segment. RLE data longer than this is split across a first fragment
// and one or more continuation fragments of at most this many bytes each.
const objectDataFragmentLimit = 65515

// odsFirstHeaderSize is the size of the fixed part of a first (or single)
// ODS fragment: object_id, object_version, magic_len, width, height.
const odsFirstHeaderSize = 2 + 1 + 4 + 2 + 2

// odsContHeaderSize is the size of the fixed part of a continuation ODS
// fragment: object_id, a reserved zero byte, and the last-fragment flag.
const odsContHeaderSize = 2 + 1 + 1

// Last-in-sequence flag values for continuation fragments.
const (
	fragmentMiddle byte = 0x00
	fragmentLast   byte = 0x40
)

// magic_len flag bits: set in the first fragment's length field to mark
// whether it is the first of several, or the only fragment.
const (
	magicFirst  uint32 = 0x80000000
	magicSingle uint32 = 0xC0000000
)

// odsPayloads splits rle into one or more ODS segment payloads describing
// an object of the given id, version, width and height.
func odsPayloads(objectID uint16, version byte, width, height int, rle []byte) [][]byte {
	total := len(rle) + 4 // width + height are counted within object_data_length.

	if total <= objectDataFragmentLimit {
		buf := make([]byte, odsFirstHeaderSize+len(rle))
		binary.BigEndian.PutUint16(buf[0:2], objectID)
		buf[2] = version
		binary.BigEndian.PutUint32(buf[3:7], magicSingle|uint32(total))
		binary.BigEndian.PutUint16(buf[7:9], uint16(width))
		binary.BigEndian.PutUint16(buf[9:11], uint16(height))
		copy(buf[11:], rle)
		return [][]byte{buf}
	}

	firstDataLen := objectDataFragmentLimit - 4
	first := make([]byte, odsFirstHeaderSize+firstDataLen)
	binary.BigEndian.PutUint16(first[0:2], objectID)
	first[2] = version
	binary.BigEndian.PutUint32(first[3:7], magicFirst|uint32(objectDataFragmentLimit))
	binary.BigEndian.PutUint16(first[7:9], uint16(width))
	binary.BigEndian.PutUint16(first[9:11], uint16(height))
	copy(first[11:], rle[:firstDataLen])

	payloads := [][]byte{first}
	rest := rle[firstDataLen:]
	for len(rest) > 0 {
		chunk := len(rest)
		flag := fragmentLast
		if chunk > objectDataFragmentLimit {
			chunk = objectDataFragmentLimit
			flag = fragmentMiddle
		}
		frag := make([]byte, odsContHeaderSize+chunk)
		binary.BigEndian.PutUint16(frag[0:2], objectID)
		frag[2] = 0
		frag[3] = flag
		copy(frag[4:], rest[:chunk])
		payloads = append(payloads, frag)
		rest = rest[chunk:]
	}
	return payloads
}
