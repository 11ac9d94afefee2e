package bdnxml

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ausocean/pgsmux/codec/palette"
)

func TestBuildSingleEvent(t *testing.T) {
	events := []Event{
		{InFrame: 10, OutFrame: 35, Graphics: []Graphic{{Width: 16, Height: 16, X: 100, Y: 200}}},
	}
	doc, err := Build(Description{VideoFormat: "1080p", FrameRateNum: 25, FrameRateDen: 1}, events, false)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if doc.Events.NumberOfEvents != 1 {
		t.Fatalf("NumberOfEvents = %d, want 1", doc.Events.NumberOfEvents)
	}
	if doc.Events.FirstEventInTC != "00:00:00:10" {
		t.Fatalf("FirstEventInTC = %q, want 00:00:00:10", doc.Events.FirstEventInTC)
	}
	if doc.Events.LastEventOutTC != "00:00:01:10" {
		t.Fatalf("LastEventOutTC = %q, want 00:00:01:10", doc.Events.LastEventOutTC)
	}
	if len(doc.Events.Events[0].Graphics) != 1 {
		t.Fatalf("expected 1 graphic, got %d", len(doc.Events.Events[0].Graphics))
	}
	if doc.Events.Events[0].Graphics[0].Filename != GraphicFilename(10, 0) {
		t.Fatalf("filename = %q, want %q", doc.Events.Events[0].Graphics[0].Filename, GraphicFilename(10, 0))
	}
}

func TestBuildAutoCutExtendsFinalOutTCOnly(t *testing.T) {
	events := []Event{
		{InFrame: 0, OutFrame: 10, Graphics: []Graphic{{Width: 8, Height: 8}}},
		{InFrame: 20, OutFrame: 30, Graphics: []Graphic{{Width: 8, Height: 8}}},
	}
	doc, err := Build(Description{FrameRateNum: 25, FrameRateDen: 1}, events, true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if doc.Events.Events[0].OutTC != "00:00:00:10" {
		t.Fatalf("non-final event OutTC = %q, want unextended 00:00:00:10", doc.Events.Events[0].OutTC)
	}
	if doc.Events.Events[1].OutTC != "00:00:01:06" {
		t.Fatalf("final event OutTC = %q, want extended 00:00:01:06", doc.Events.Events[1].OutTC)
	}
	if doc.Events.LastEventOutTC != doc.Events.Events[1].OutTC {
		t.Fatalf("LastEventOutTC = %q, want %q", doc.Events.LastEventOutTC, doc.Events.Events[1].OutTC)
	}
}

func TestBuildForcedEventRendersCapitalizedAttribute(t *testing.T) {
	events := []Event{
		{Forced: true, InFrame: 0, OutFrame: 10, Graphics: []Graphic{{Width: 8, Height: 8}}},
		{Forced: false, InFrame: 20, OutFrame: 30, Graphics: []Graphic{{Width: 8, Height: 8}}},
	}
	doc, err := Build(Description{FrameRateNum: 25, FrameRateDen: 1}, events, false)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `Forced="True"`) {
		t.Fatalf("missing capitalized Forced=\"True\": %s", out)
	}
	if !strings.Contains(out, `Forced="False"`) {
		t.Fatalf("missing capitalized Forced=\"False\": %s", out)
	}
	if strings.Contains(out, `Forced="true"`) || strings.Contains(out, `Forced="false"`) {
		t.Fatalf("Forced attribute rendered lowercase: %s", out)
	}
}

func TestFrameRateTruncatesNonIntegerRates(t *testing.T) {
	if got := frameRate(25, 1); got != 25 {
		t.Fatalf("frameRate(25, 1) = %v, want 25", got)
	}
	if got := frameRate(24000, 1001); got != 23.97 {
		t.Fatalf("frameRate(24000, 1001) = %v, want 23.97", got)
	}
	if got := frameRate(30000, 1001); got != 29.97 {
		t.Fatalf("frameRate(30000, 1001) = %v, want 29.97", got)
	}
}

func TestDocumentWriteIsValidXML(t *testing.T) {
	doc, err := Build(Description{Name: "Example", Language: "en", FrameRateNum: 24000, FrameRateDen: 1001},
		[]Event{{InFrame: 0, OutFrame: 5, Graphics: []Graphic{{Width: 8, Height: 8}}}}, false)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<BDN Version=\"0.93\">") {
		t.Fatalf("missing BDN root element: %s", out)
	}
	if !strings.Contains(out, "Title=\"Example\"") {
		t.Fatalf("missing Name/@Title: %s", out)
	}
}

func TestWritePNGProducesValidHeader(t *testing.T) {
	var pal palette.Palette
	pal[1] = palette.Entry{Y: 200, Cr: 128, Cb: 128, Alpha: 255}
	img := palette.Image{W: 2, H: 2, Idx: []byte{0, 1, 1, 0}}

	var buf bytes.Buffer
	if err := WritePNG(&buf, pal, 1, img); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Fatalf("output does not start with PNG magic")
	}
}
