package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// FontFamily is one of the five supported caption typefaces.
type FontFamily string

const (
	FontArial      FontFamily = "Arial"
	FontVerdana    FontFamily = "Verdana"
	FontGeorgia    FontFamily = "Georgia"
	FontTimes      FontFamily = "Times New Roman"
	FontCourierNew FontFamily = "Courier New"
)

// Valid reports whether f names a supported family.
func (f FontFamily) Valid() bool {
	switch f {
	case FontArial, FontVerdana, FontGeorgia, FontTimes, FontCourierNew:
		return true
	}
	return false
}

// CaptionStyle describes how one caption block is rendered. Styles are
// mutable while a session is idle and frozen for the duration of a render.
type CaptionStyle struct {
	Color      color.RGBA
	FontSizePx int
	Family     FontFamily
	Bold       bool
	Italic     bool
}

// Validate checks the style before a render starts.
func (s CaptionStyle) Validate() error {
	if s.FontSizePx <= 0 {
		return fmt.Errorf("font size must be positive, got %d", s.FontSizePx)
	}
	if !s.Family.Valid() {
		return fmt.Errorf("unsupported font family %q", s.Family)
	}
	return nil
}

// LineHeight is the vertical advance between wrapped caption lines.
func (s CaptionStyle) LineHeight(factor float64) float64 {
	return float64(s.FontSizePx) * factor
}

// DefaultNativeStyle matches the reference styling for the native-language
// caption block.
func DefaultNativeStyle() CaptionStyle {
	return CaptionStyle{Color: color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}, FontSizePx: 28, Family: FontArial, Bold: true}
}

// DefaultTranslatedStyle matches the reference styling for the translated
// caption block.
func DefaultTranslatedStyle() CaptionStyle {
	return CaptionStyle{Color: color.RGBA{0xE5, 0xE7, 0xEB, 0xFF}, FontSizePx: 22, Family: FontArial, Italic: true}
}

// ParseHexColor parses "#RRGGBB" (case-insensitive, leading # optional)
// into an opaque RGBA color.
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
}
