package textnorm

import "testing"

func TestFoldStripsDiacriticsAndLowercases(t *testing.T) {
	cases := map[string]string{
		"Café":     "cafe",
		"NIÑO":     "nino",
		"ALREADY":  "already",
		"Montréal": "montreal",
	}
	for in, want := range cases {
		if got := Fold(in); got != want {
			t.Errorf("Fold(%q) = %q, want %q", in, got, want)
		}
	}
}
