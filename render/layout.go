package render

import "strings"

// TextMeasurer reports the advance width, in pixels, of a single line of
// text under some fixed font metrics. Layout depends only on this interface
// so it can be exercised with synthetic metrics in tests.
type TextMeasurer interface {
	TextWidth(s string) float64
}

// WrapLines greedily wraps whitespace-delimited words into lines no wider
// than maxWidth. A word is only pushed to the next line when the current
// line already holds at least one word, so a single overlong word still
// occupies a line of its own. Empty text yields no lines.
func WrapLines(m TextMeasurer, text string, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		test := line + " " + word
		if m.TextWidth(test) > maxWidth {
			lines = append(lines, line)
			line = word
		} else {
			line = test
		}
	}
	return append(lines, line)
}

// BlockHeight is the height of the wrapped text block: line count times the
// line advance. It performs no drawing, so callers can position a block
// before rendering it. Empty text has zero height.
func BlockHeight(m TextMeasurer, text string, maxWidth, lineHeight float64) float64 {
	return float64(len(WrapLines(m, text, maxWidth))) * lineHeight
}

// captionBlockTops computes the top Y coordinates of the two caption blocks.
// The translated block sits just above the bottom margin; the native block
// stacks directly above it separated by padding. Layout is bottom-up, which
// is why both heights must be known before anything is drawn.
func captionBlockTops(canvasH, bottomMarginFrac, padding, nativeH, translatedH float64) (nativeTop, translatedTop float64) {
	translatedTop = canvasH - canvasH*bottomMarginFrac - translatedH
	nativeTop = translatedTop - padding - nativeH
	return nativeTop, translatedTop
}
