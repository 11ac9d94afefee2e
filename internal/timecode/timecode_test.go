package timecode

import "testing"

func TestFormat(t *testing.T) {
	cases := []struct {
		frame, fps int
		want       string
	}{
		{0, 25, "00:00:00:00"},
		{24, 25, "00:00:00:24"},
		{25, 25, "00:00:01:00"},
		{25 * 60, 25, "00:01:00:00"},
		{25 * 3600, 25, "01:00:00:00"},
		{25*3600*2 + 25*61 + 3, 25, "02:01:01:03"},
	}
	for _, c := range cases {
		got, err := Format(c.frame, c.fps)
		if err != nil {
			t.Fatalf("Format(%d, %d): %v", c.frame, c.fps, err)
		}
		if got != c.want {
			t.Fatalf("Format(%d, %d) = %q, want %q", c.frame, c.fps, got, c.want)
		}
	}
}

func TestFormatHoursOverflow(t *testing.T) {
	_, err := Format(25*3600*100, 25)
	if _, ok := err.(ErrHoursOverflow); !ok {
		t.Fatalf("Format: err = %v, want ErrHoursOverflow", err)
	}
}

func TestFormatInvalidFPS(t *testing.T) {
	if _, err := Format(10, 0); err == nil {
		t.Fatal("Format with fps=0: expected error")
	}
}
