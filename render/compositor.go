package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"storyreel/config"
)

// Compositor draws one output frame at a time onto a reused RGBA surface.
// Backgrounds (cover, slides, end card) are letterboxed once up front; per
// frame only the caption overlay is rasterized on top of the cached plate.
// The surface is exclusively owned by the active render invocation.
type Compositor struct {
	width  int
	height int
	cfg    *Config

	nativeFace     font.Face
	translatedFace font.Face
	nativeMeasure  TextMeasurer
	translatedMeas TextMeasurer

	coverPlate   []uint8
	endCardPlate []uint8
	slidePlates  [][]uint8

	frame *image.RGBA
}

// NewCompositor prepares faces and background plates for the given canvas.
func NewCompositor(width, height int, cfg *Config) (*Compositor, error) {
	ns, ts := cfg.NativeStyle, cfg.TranslatedStyle
	nativeFace, err := newFace(ns.Family, ns.Bold, ns.Italic, float64(ns.FontSizePx))
	if err != nil {
		return nil, err
	}
	translatedFace, err := newFace(ts.Family, ts.Bold, ts.Italic, float64(ts.FontSizePx))
	if err != nil {
		return nil, err
	}

	c := &Compositor{
		width:          width,
		height:         height,
		cfg:            cfg,
		nativeFace:     nativeFace,
		translatedFace: translatedFace,
		nativeMeasure:  faceMeasurer{nativeFace},
		translatedMeas: faceMeasurer{translatedFace},
		frame:          image.NewRGBA(image.Rect(0, 0, width, height)),
	}

	c.coverPlate = c.buildPlate(cfg.CoverImage)
	c.slidePlates = make([][]uint8, len(cfg.Slides))
	for i, s := range cfg.Slides {
		c.slidePlates[i] = c.buildPlate(s.Image)
	}
	if cfg.EndCardImage != nil {
		c.endCardPlate = c.buildPlate(cfg.EndCardImage)
	} else {
		plate, err := c.buildDefaultEndCard()
		if err != nil {
			return nil, fmt.Errorf("build end card: %w", err)
		}
		c.endCardPlate = plate
	}
	return c, nil
}

// DrawFrame renders the frame for the resolved stage, intra-stage offset and
// slide index. The returned image is reused across calls; the caller must
// consume its pixels before the next invocation.
func (c *Compositor) DrawFrame(stage Stage, offsetSec float64, slideIndex int) *image.RGBA {
	switch stage {
	case StageCover:
		copy(c.frame.Pix, c.coverPlate)
	case StageContent:
		copy(c.frame.Pix, c.slidePlates[slideIndex])
		s := c.cfg.Slides[slideIndex]
		c.drawCaptions(s.NativeCaption, s.TranslatedCaption)
	case StageEndCard:
		copy(c.frame.Pix, c.endCardPlate)
	}
	return c.frame
}

// buildPlate letterboxes img onto a black canvas-sized plate. A nil image
// yields a plain black plate.
func (c *Compositor) buildPlate(img image.Image) []uint8 {
	dst := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	if img != nil {
		rect := containRect(c.width, c.height, img.Bounds().Dx(), img.Bounds().Dy())
		xdraw.ApproxBiLinear.Scale(dst, rect, img, img.Bounds(), xdraw.Over, nil)
	}
	return dst.Pix
}

// containRect is the centered destination rectangle for an aspect-preserving
// "contain" fit: the image is scaled uniformly to fit entirely inside the
// canvas, letterboxed on the shorter axis, never cropped.
func containRect(canvasW, canvasH, imgW, imgH int) image.Rectangle {
	hRatio := float64(canvasW) / float64(imgW)
	vRatio := float64(canvasH) / float64(imgH)
	ratio := hRatio
	if vRatio < ratio {
		ratio = vRatio
	}
	w := int(float64(imgW)*ratio + 0.5)
	h := int(float64(imgH)*ratio + 0.5)
	x := (canvasW - w) / 2
	y := (canvasH - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

// drawCaptions overlays the two caption blocks, translated nearest the
// bottom margin and native stacked directly above. Both block heights are
// measured first because the blocks are anchored bottom-up.
func (c *Compositor) drawCaptions(native, translated string) {
	maxWidth := float64(c.width) * config.CaptionMaxWidthFrac

	nativeLH := c.cfg.NativeStyle.LineHeight(config.CaptionLineHeightFactor)
	translatedLH := c.cfg.TranslatedStyle.LineHeight(config.CaptionLineHeightFactor)

	nativeH := BlockHeight(c.nativeMeasure, native, maxWidth, nativeLH)
	translatedH := BlockHeight(c.translatedMeas, translated, maxWidth, translatedLH)

	nativeTop, translatedTop := captionBlockTops(
		float64(c.height), config.CaptionBottomMarginFrac, config.CaptionBlockPaddingPx,
		nativeH, translatedH)

	c.drawWrapped(c.translatedFace, c.translatedMeas, c.cfg.TranslatedStyle.Color, translated, translatedTop, maxWidth, translatedLH)
	c.drawWrapped(c.nativeFace, c.nativeMeasure, c.cfg.NativeStyle.Color, native, nativeTop, maxWidth, nativeLH)
}

// drawWrapped draws wrapped text centered on the canvas midline, top-down
// from topY. Each line gets a shadow under the colored pass: a ring of
// translucent black draws around the glyphs whose overlap in the middle
// reads as a soft blurred edge. Shadow state is per line, nothing leaks
// into later draws.
func (c *Compositor) drawWrapped(face font.Face, m TextMeasurer, col color.Color, text string, topY, maxWidth, lineHeight float64) {
	lines := WrapLines(m, text, maxWidth)
	if len(lines) == 0 {
		return
	}
	shadow := color.NRGBA{A: 0x60}
	r := float64(config.CaptionShadowOffsetPx)
	ascent := fixedToFloat(face.Metrics().Ascent)
	y := topY
	for _, line := range lines {
		x := (float64(c.width) - m.TextWidth(line)) / 2
		baseline := y + ascent
		for dy := -r; dy <= r; dy += r {
			for dx := -r; dx <= r; dx += r {
				if dx == 0 && dy == 0 {
					continue
				}
				c.drawLine(c.frame, face, line, x+dx, baseline+dy, shadow)
			}
		}
		c.drawLine(c.frame, face, line, x, baseline, col)
		y += lineHeight
	}
}

func (c *Compositor) drawLine(dst *image.RGBA, face font.Face, line string, x, baseline float64, col color.Color) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: floatToFixed(x), Y: floatToFixed(baseline)},
	}
	d.DrawString(line)
}

// buildDefaultEndCard rasterizes the fallback call-to-action: channel title,
// subscribe prompt and handle, stacked at fixed fractional offsets with
// progressively smaller sizes.
func (c *Compositor) buildDefaultEndCard() ([]uint8, error) {
	dst := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.RGBA{0x11, 0x18, 0x27, 0xFF}), image.Point{}, draw.Src)

	h := float64(c.height)
	lines := []struct {
		text   string
		yFrac  float64
		szFrac float64
		col    color.Color
	}{
		{c.cfg.Channel.Title, 0.40, 0.10, color.White},
		{c.cfg.Channel.Tagline, 0.55, 0.05, color.White},
		{c.cfg.Channel.Handle, 0.65, 0.04, color.RGBA{0xA0, 0xA0, 0xA0, 0xFF}},
	}
	for _, l := range lines {
		if l.text == "" {
			continue
		}
		face, err := newFace(FontArial, false, false, h*l.szFrac)
		if err != nil {
			return nil, err
		}
		m := faceMeasurer{face}
		x := (float64(c.width) - m.TextWidth(l.text)) / 2
		// The fractional offset marks the vertical middle of the line.
		metrics := face.Metrics()
		mid := (fixedToFloat(metrics.Ascent) - fixedToFloat(metrics.Descent)) / 2
		c.drawLine(dst, face, l.text, x, h*l.yFrac+mid, l.col)
	}
	return dst.Pix, nil
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
