package render

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// fontVariants is the weight/slant set for one family. Variants the bundled
// Go fonts do not ship are nil and fall back toward the regular face.
type fontVariants struct {
	regular    *opentype.Font
	bold       *opentype.Font
	italic     *opentype.Font
	boldItalic *opentype.Font
}

func (v fontVariants) pick(bold, italic bool) *opentype.Font {
	switch {
	case bold && italic:
		for _, f := range []*opentype.Font{v.boldItalic, v.bold, v.italic} {
			if f != nil {
				return f
			}
		}
	case bold:
		if v.bold != nil {
			return v.bold
		}
	case italic:
		if v.italic != nil {
			return v.italic
		}
	}
	return v.regular
}

// The five web-safe family names map onto the bundled Go faces so renders
// stay self-contained and reproducible without system font lookup.
var familyFonts = map[FontFamily]fontVariants{
	FontArial: {
		regular:    mustParseFont(goregular.TTF),
		bold:       mustParseFont(gobold.TTF),
		italic:     mustParseFont(goitalic.TTF),
		boldItalic: mustParseFont(gobolditalic.TTF),
	},
	FontVerdana: {
		regular: mustParseFont(gomedium.TTF),
		italic:  mustParseFont(gomediumitalic.TTF),
	},
	FontGeorgia: {
		regular: mustParseFont(gosmallcaps.TTF),
		italic:  mustParseFont(gosmallcapsitalic.TTF),
	},
	FontTimes: {
		regular: mustParseFont(goitalic.TTF),
	},
	FontCourierNew: {
		regular:    mustParseFont(gomono.TTF),
		bold:       mustParseFont(gomonobold.TTF),
		italic:     mustParseFont(gomonoitalic.TTF),
		boldItalic: mustParseFont(gomonobolditalic.TTF),
	},
}

func mustParseFont(ttf []byte) *opentype.Font {
	f, err := opentype.Parse(ttf)
	if err != nil {
		panic(fmt.Sprintf("parse bundled font: %v", err))
	}
	return f
}

// newFace builds a sized face for the family and the requested weight and
// slant. With DPI 72 the size is in pixels.
func newFace(family FontFamily, bold, italic bool, sizePx float64) (font.Face, error) {
	v, ok := familyFonts[family]
	if !ok {
		return nil, fmt.Errorf("unsupported font family %q", family)
	}
	face, err := opentype.NewFace(v.pick(bold, italic), &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("size face %q at %.0fpx: %w", family, sizePx, err)
	}
	return face, nil
}

// faceMeasurer adapts a font.Face to the TextMeasurer interface used by the
// layout engine.
type faceMeasurer struct {
	face font.Face
}

func (m faceMeasurer) TextWidth(s string) float64 {
	return fixedToFloat(font.MeasureString(m.face, s))
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
