package core

import (
	"strings"
	"testing"

	"golang.org/x/text/transform"
)

func TestLineEndings(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"a,b\nc,d\n", "a,b\nc,d\n"},
		{"a,b\r\nc,d\r\n", "a,b\nc,d\n"},
		{"a,b\rc,d\r", "a,b\nc,d\n"},
		{"a\r\r\nb", "a\n\nb"},
		{"\r", "\n"},
	}

	for _, tt := range tests {
		got, _, err := transform.String(lineEndings{}, tt.in)
		if err != nil {
			t.Fatalf("transform %q error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("transform %q = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// A CRLF split across reads must still yield a single LF.
func TestLineEndingsSplitCRLF(t *testing.T) {
	in := strings.Repeat("x", 4095) + "\r\n" + "y"
	got, _, err := transform.String(lineEndings{}, in)
	if err != nil {
		t.Fatalf("transform error = %v", err)
	}
	if want := strings.Repeat("x", 4095) + "\ny"; got != want {
		t.Errorf("transform produced %d bytes, want %d", len(got), len(want))
	}
}

func TestParseRecordsCSV(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantRecs    int
		wantSkipped int
	}{
		{"header discarded", "name,email\na,b\n", 1, 0},
		{"blank first line is the header", "\na,b\nc,d\n", 2, 0},
		{"only a blank header", "\n", 0, 0},
		{"short rows skipped", "h\nsolo\na,b\n", 1, 1},
		{"old mac line endings", "h\ra,b\rc,d", 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, skipped, err := parseRecordsCSV([]byte(tt.data))
			if err != nil {
				t.Fatalf("parseRecordsCSV() error = %v", err)
			}
			if len(recs) != tt.wantRecs || skipped != tt.wantSkipped {
				t.Errorf("got %d records, %d skipped; want %d, %d", len(recs), skipped, tt.wantRecs, tt.wantSkipped)
			}
		})
	}
}
