package audit

import (
	"strings"
	"testing"
)

func TestTruncatePreview(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exactly at limit", "hello", 5, "hello"},
		{"truncated", "hello world", 5, "hello"},
		{"empty", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncatePreview(tt.text, tt.maxLen); got != tt.want {
				t.Errorf("TruncatePreview(%q, %d) = %q, want %q", tt.text, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncatePreview_MultiByte(t *testing.T) {
	text := strings.Repeat("é", 600)
	got := TruncatePreview(text, PreviewLength)
	if len([]rune(got)) != PreviewLength {
		t.Errorf("rune length = %d, want %d", len([]rune(got)), PreviewLength)
	}
	// Every rune must still be intact.
	for _, r := range got {
		if r != 'é' {
			t.Errorf("multi-byte character split: found %q", r)
		}
	}
}
