package render

import (
	"strings"
	"testing"
)

// charMeasurer gives every rune a fixed advance so wrap points are exact.
type charMeasurer struct {
	perRune float64
}

func (m charMeasurer) TextWidth(s string) float64 {
	return float64(len([]rune(s))) * m.perRune
}

func TestWrapLines(t *testing.T) {
	m := charMeasurer{perRune: 10}

	cases := []struct {
		name     string
		text     string
		maxWidth float64
		want     []string
	}{
		{"empty", "", 100, nil},
		{"whitespace only", "   \t ", 100, nil},
		{"single short line", "one two", 100, []string{"one two"}},
		{"wraps at width", "aaaa bbbb cccc", 90, []string{"aaaa bbbb", "cccc"}},
		{"word per line", "aaaa bbbb", 50, []string{"aaaa", "bbbb"}},
		{"overlong word keeps its line", "aaaaaaaaaaaa bb", 50, []string{"aaaaaaaaaaaa", "bb"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := WrapLines(m, c.text, c.maxWidth)
			if len(got) != len(c.want) {
				t.Fatalf("WrapLines(%q) = %v; want %v", c.text, got, c.want)
			}
			for i := range got {
				if got[i] != c.want[i] {
					t.Fatalf("line %d = %q; want %q", i, got[i], c.want[i])
				}
			}
		})
	}
}

func TestWrapLinesIdempotent(t *testing.T) {
	m := charMeasurer{perRune: 7}
	text := "the quick brown fox jumps over the lazy dog again and again"

	first := WrapLines(m, text, 120)
	second := WrapLines(m, text, 120)
	if strings.Join(first, "\n") != strings.Join(second, "\n") {
		t.Fatalf("wrapping is not deterministic: %v vs %v", first, second)
	}

	h1 := BlockHeight(m, text, 120, 24)
	h2 := BlockHeight(m, text, 120, 24)
	if h1 != h2 {
		t.Fatalf("BlockHeight not deterministic: %v vs %v", h1, h2)
	}
	if want := float64(len(first)) * 24; h1 != want {
		t.Fatalf("BlockHeight = %v; want lineCount*lineHeight = %v", h1, want)
	}
}

func TestBlockHeightEmpty(t *testing.T) {
	if h := BlockHeight(charMeasurer{perRune: 10}, "", 100, 30); h != 0 {
		t.Fatalf("empty text height = %v; want 0", h)
	}
}

func TestCaptionBlockStacking(t *testing.T) {
	const (
		canvasH     = 1080.0
		marginFrac  = 0.05
		padding     = 8.0
		nativeH     = 67.2 // two 28px lines at 1.2 line height
		translatedH = 26.4 // one 22px line
	)

	nativeTop, translatedTop := captionBlockTops(canvasH, marginFrac, padding, nativeH, translatedH)

	// Translated block bottom respects the configured bottom margin.
	if got, want := translatedTop+translatedH, canvasH-canvasH*marginFrac; got != want {
		t.Fatalf("translated bottom = %v; want %v", got, want)
	}
	// Native block bottom sits exactly padding above the translated top.
	if got, want := nativeTop+nativeH, translatedTop-padding; got != want {
		t.Fatalf("native bottom = %v; want translatedTop-padding = %v", got, want)
	}
}
