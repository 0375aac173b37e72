package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "  Plain Name  ", want: "Plain Name"},
		{in: "AC/DC: Live?", want: "AC-DC- Live"},
		{in: `a\b*c"d<e>f|g`, want: "a-b-cdefg"},
		{in: "Café", want: "Café"},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitleFromPath(t *testing.T) {
	if got := TitleFromPath("/books/01 - Prologue.mp3"); got != "01 - Prologue" {
		t.Fatalf("TitleFromPath = %q", got)
	}
	if got := TitleFromPath("Résumé.m4a"); got != "Résumé" {
		t.Fatalf("TitleFromPath did not normalize: %q", got)
	}
	if got := TitleFromPath("noext"); got != "noext" {
		t.Fatalf("TitleFromPath = %q", got)
	}
}
