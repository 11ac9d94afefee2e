package rle

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func encode(t *testing.T, width int, idx []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	if _, err := NewEncoder(&buf, width).Write(idx); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func decode(t *testing.T, width int, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	if _, err := NewDecoder(&buf, width).Write(data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return buf.Bytes()
}

func TestRoundTripAllTransparent(t *testing.T) {
	idx := make([]byte, 8*4) // 4 rows of 8 transparent pixels.
	enc := encode(t, 8, idx)
	got := decode(t, 8, enc)
	if diff := cmp.Diff(idx, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripMixedRun(t *testing.T) {
	row := append(append(append(
		bytesOf(0, 5),
		bytesOf(7, 10)...),
		bytesOf(0, 2)...),
		bytesOf(9, 1)...)
	if len(row) != 18 {
		t.Fatalf("test setup: row length = %d, want 18", len(row))
	}
	enc := encode(t, 18, row)
	got := decode(t, 18, enc)
	if diff := cmp.Diff(row, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripLongRuns(t *testing.T) {
	row := append(bytesOf(0, 100), bytesOf(5, 200)...)
	enc := encode(t, len(row), row)
	got := decode(t, len(row), enc)
	if diff := cmp.Diff(row, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripMultipleRows(t *testing.T) {
	width := 10
	idx := make([]byte, 0, width*3)
	idx = append(idx, bytesOf(1, width)...)
	idx = append(idx, bytesOf(0, width)...)
	idx = append(idx, bytesOf(2, width)...)

	enc := encode(t, width, idx)
	got := decode(t, width, enc)
	if diff := cmp.Diff(idx, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeEachRowTerminated(t *testing.T) {
	width := 4
	idx := append(bytesOf(1, width), bytesOf(2, width)...)
	enc := encode(t, width, idx)

	var eolCount int
	for i := 0; i+1 < len(enc); i++ {
		if enc[i] == 0x00 && enc[i+1] == 0x00 {
			eolCount++
			i++
		}
	}
	if eolCount != 2 {
		t.Fatalf("expected 2 end-of-line markers, found %d in %x", eolCount, enc)
	}
}

func TestEncodeShortOpaqueRunUsesLiteralBytes(t *testing.T) {
	// A run shorter than minColorRun should be emitted as literal CC
	// bytes rather than a 00 8L CC codeword.
	idx := bytesOf(9, 2)
	enc := encode(t, 2, idx)
	want := []byte{9, 9, 0x00, 0x00}
	if diff := cmp.Diff(want, enc); diff != "" {
		t.Fatalf("encoding mismatch (-want +got):\n%s", diff)
	}
}

func bytesOf(v byte, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = v
	}
	return b
}
