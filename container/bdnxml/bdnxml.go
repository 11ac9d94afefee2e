/*
NAME
  bdnxml.go - BDN XML event list construction and emission.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bdnxml builds and emits the BDN XML sidecar document and PNG
// graphics that accompany it, the non-PGS deliverable of the subtitle
// encoding pipeline.
package bdnxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"

	"github.com/ausocean/pgsmux/internal/timecode"
)

// Graphic is one PNG image placed within an Event, at (X, Y) in frame
// pixel coordinates.
type Graphic struct {
	Width, Height, X, Y int
	Filename            string
}

// Event is one subtitle display interval, spanning InFrame (inclusive)
// to OutFrame (exclusive) frame numbers, with one or two Graphics.
type Event struct {
	Forced            bool
	InFrame, OutFrame int
	Graphics          []Graphic
}

// Description carries the metadata a BDN XML document's <Description>
// block reports about the source video.
type Description struct {
	Name, Language        string
	VideoFormat           string
	FrameRateNum, FrameRateDen int
	DropFrame             bool
}

// GraphicFilename returns the conventional PNG filename for the index'th
// graphic of the event starting at frame.
func GraphicFilename(frame, index int) string {
	return fmt.Sprintf("%08d_%d.png", frame, index)
}

// frameRate returns the decimal frame rate BDN XML expects in its
// Format/@FrameRate attribute: truncated to two decimal places for
// non-integer rates (e.g. 23.976, 29.97), exact for integer rates.
func frameRate(num, den int) float64 {
	if num%den == 0 {
		return float64(num / den)
	}
	return math.Trunc(float64(num)/float64(den)*100) / 100
}

// Build assembles a Document from events shot at the given frame rate.
// If autoCut is set (the input stream ended while the final event was
// still open), the final event's OutTC, and the document's
// LastEventOutTC, are reported one frame later than OutFrame — see
// DESIGN.md for why this applies only to the XML path.
func Build(desc Description, events []Event, autoCut bool) (*Document, error) {
	fps := (desc.FrameRateNum + desc.FrameRateDen/2) / desc.FrameRateDen

	doc := &Document{
		Version: "0.93",
		Description: xmlDescription{
			Name:     xmlName{Title: desc.Name},
			Language: xmlLanguage{Code: desc.Language},
			Format: xmlFormat{
				VideoFormat: desc.VideoFormat,
				FrameRate:   frameRate(desc.FrameRateNum, desc.FrameRateDen),
				DropFrame:   desc.DropFrame,
			},
		},
	}

	doc.Events.Type = "Graphic"
	doc.Events.NumberOfEvents = len(events)

	for i, e := range events {
		inTC, err := timecode.Format(e.InFrame, fps)
		if err != nil {
			return nil, fmt.Errorf("bdnxml: event %d InTC: %w", i, err)
		}
		outFrame := e.OutFrame
		if autoCut && i == len(events)-1 {
			outFrame++
		}
		outTC, err := timecode.Format(outFrame, fps)
		if err != nil {
			return nil, fmt.Errorf("bdnxml: event %d OutTC: %w", i, err)
		}

		xe := xmlEvent{Forced: forcedAttr(e.Forced), InTC: inTC, OutTC: outTC}
		for j, g := range e.Graphics {
			xe.Graphics = append(xe.Graphics, xmlGraphic{
				Width: g.Width, Height: g.Height, X: g.X, Y: g.Y,
				Filename: filenameOrDefault(g.Filename, e.InFrame, j),
			})
		}
		doc.Events.Events = append(doc.Events.Events, xe)

		if i == 0 {
			doc.Events.FirstEventInTC = inTC
			doc.Events.ContentInTC = inTC
		}
		if i == len(events)-1 {
			doc.Events.LastEventOutTC = outTC
			doc.Events.ContentOutTC = outTC
		}
	}

	return doc, nil
}

func filenameOrDefault(name string, frame, index int) string {
	if name != "" {
		return name
	}
	return GraphicFilename(frame, index)
}

// Document is the root <BDN> element.
type Document struct {
	XMLName     xml.Name       `xml:"BDN"`
	Version     string         `xml:"Version,attr"`
	Description xmlDescription `xml:"Description"`
	Events      xmlEventList   `xml:"Events"`
}

type xmlDescription struct {
	Name     xmlName     `xml:"Name"`
	Language xmlLanguage `xml:"Language"`
	Format   xmlFormat   `xml:"Format"`
}

type xmlName struct {
	Title string `xml:"Title,attr"`
}

type xmlLanguage struct {
	Code string `xml:"Code,attr"`
}

type xmlFormat struct {
	VideoFormat string  `xml:"VideoFormat,attr"`
	FrameRate   float64 `xml:"FrameRate,attr"`
	DropFrame   bool    `xml:"DropFrame,attr"`
}

type xmlEventList struct {
	Type           string     `xml:"Type,attr"`
	FirstEventInTC string     `xml:"FirstEventInTC,attr"`
	LastEventOutTC string     `xml:"LastEventOutTC,attr"`
	ContentInTC    string     `xml:"ContentInTC,attr"`
	ContentOutTC   string     `xml:"ContentOutTC,attr"`
	NumberOfEvents int        `xml:"NumberofEvents,attr"`
	Events         []xmlEvent `xml:"Event"`
}

type xmlEvent struct {
	Forced   forcedAttr   `xml:"Forced,attr"`
	InTC     string       `xml:"InTC,attr"`
	OutTC    string       `xml:"OutTC,attr"`
	Graphics []xmlGraphic `xml:"Graphic"`
}

// forcedAttr renders as "True" or "False", the capitalization BDN XML
// readers expect for Event/@Forced, rather than encoding/xml's default
// lowercase bool rendering.
type forcedAttr bool

func (f forcedAttr) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	v := "False"
	if f {
		v = "True"
	}
	return xml.Attr{Name: name, Value: v}, nil
}

type xmlGraphic struct {
	Width    int    `xml:"Width,attr"`
	Height   int    `xml:"Height,attr"`
	X        int    `xml:"X,attr"`
	Y        int    `xml:"Y,attr"`
	Filename string `xml:",chardata"`
}

// Write marshals doc as an indented XML document, preceded by the
// standard XML declaration, to w.
func (doc *Document) Write(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("bdnxml: write XML header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("bdnxml: encode document: %w", err)
	}
	return nil
}
