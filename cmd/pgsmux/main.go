/*
NAME
  main.go - pgsmux command-line driver: reads a sequence of PNG frames and
  emits either a PGS elementary stream or a BDN XML event list with PNG
  graphics.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Command pgsmux segments a sequence of RGBA frames into subtitle events
// and writes them as a PGS (.sup) elementary stream or a BDN XML (.xml)
// document with accompanying PNG graphics.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/ausocean/pgsmux/container/bdnxml"
	"github.com/ausocean/pgsmux/segment"
	"github.com/ausocean/pgsmux/source"
	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logging related constants, mirroring the teacher CLI's lumberjack setup.
const (
	logPath      = "pgsmux.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logVerbosity = logging.Debug
	logSuppress  = false
)

func main() {
	framesDir := flag.String("frames", "", "directory of numbered PNG frames to read")
	out := flag.String("out", "", "output path; .sup writes PGS, .xml writes BDN XML + PNG graphics")
	fpsNum := flag.Int("fps-num", 25, "frame rate numerator")
	fpsDen := flag.Int("fps-den", 1, "frame rate denominator")
	videoFormat := flag.String("format", "1080p", "BDN XML VideoFormat attribute (480i, 480p, 576i, 720p, 1080i, 1080p)")
	name := flag.String("name", "", "BDN XML Description/Name/@Title")
	language := flag.String("language", "eng", "BDN XML Description/Language/@Code")

	seek := flag.Int("seek", 0, "first frame index to read")
	count := flag.Int("count", 0, "maximum number of frames to process (0 = all)")
	tOffset := flag.Int("t-offset", 0, "frames added to every emitted PTS/timecode")
	splitAt := flag.Int("split-at", 0, "chop events longer than this many frames")
	minSplit := flag.Int("min-split", 0, "absorb a trailing split residue shorter than this into its predecessor")
	autoCrop := flag.Bool("autocrop", true, "tighten each event to its non-transparent bounding box")
	bufferOpt := flag.Bool("buffer-opt", false, "allow splitting an event into two composition objects")
	evenY := flag.Bool("even-y", false, "force even Y and height on every crop")
	ugly := flag.Bool("ugly", false, "permit aesthetically poor splits that still reduce area")
	allowEmpty := flag.Bool("allow-empty", false, "emit output even if no events were found")
	strict := flag.Bool("strict", false, "fail on events that exceed the PGS decoder buffer budget")
	markForced := flag.Bool("mark-forced", false, "mark every event's forced flag")

	flag.Parse()

	fileLog := &lumberjack.Logger{Filename: logPath, MaxSize: logMaxSize, MaxBackups: logMaxBackup, MaxAge: logMaxAge}
	l := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)

	if *framesDir == "" || *out == "" {
		l.Fatal("both -frames and -out are required")
	}

	cfg := segment.Config{
		Seek: *seek, Count: *count, TOffset: *tOffset,
		SplitAt: *splitAt, MinSplit: *minSplit,
		AutoCrop: *autoCrop, BufferOpt: *bufferOpt, EvenY: *evenY,
		Palette: true, Ugly: *ugly, AllowEmpty: *allowEmpty,
		Strict: *strict, MarkForced: *markForced,
	}
	if err := cfg.Validate(); err != nil {
		l.Fatal("invalid configuration", "error", err)
	}

	names, err := framePaths(*framesDir)
	if err != nil {
		l.Fatal("could not list frames directory", "path", *framesDir, "error", err)
	}

	src, err := source.NewPNGDir(names, *fpsNum, *fpsDen)
	if err != nil {
		l.Fatal("could not open frame source", "error", err)
	}
	defer src.Close()

	driver := segment.NewDriver(src, cfg, l)
	events, autoCut, err := driver.Run()
	if err == segment.ErrNoEvents {
		fmt.Fprintln(os.Stderr, "No events detected")
		os.Exit(0)
	}
	if err != nil {
		l.Fatal("segmentation failed", "error", err)
	}

	w, h := src.Dimensions()
	switch filepath.Ext(*out) {
	case ".sup":
		if err := writeSUP(*out, l, w, h, *fpsNum, *fpsDen, *tOffset, *strict, events); err != nil {
			l.Fatal("could not write PGS output", "path", *out, "error", err)
		}
	case ".xml":
		if err := writeXML(*out, *name, *language, *videoFormat, *fpsNum, *fpsDen, *tOffset, events, autoCut); err != nil {
			l.Fatal("could not write BDN XML output", "path", *out, "error", err)
		}
	default:
		l.Fatal("unrecognized output extension, want .sup or .xml", "path", *out)
	}
}

// framePaths returns the PNG files directly inside dir, sorted by name so
// lexical and numeric frame ordering agree for zero-padded filenames.
func framePaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".png" {
			continue
		}
		names = append(names, filepath.Join(dir, e.Name()))
	}
	sort.Strings(names)
	return names, nil
}

func writeSUP(path string, l logging.Logger, w, h, num, den, tOffset int, strict bool, events []segment.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return segment.WritePGS(f, l, w, h, num, den, tOffset, strict, events)
}

func writeXML(path, name, language, videoFormat string, num, den, tOffset int, events []segment.Event, autoCut bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	desc := bdnxml.Description{Name: name, Language: language, VideoFormat: videoFormat, FrameRateNum: num, FrameRateDen: den}
	if err := segment.WriteBDNXML(f, desc, events, tOffset, autoCut); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	return segment.WriteGraphics(events, func(filename string) (io.WriteCloser, error) {
		return os.Create(filepath.Join(dir, filename))
	})
}
