package render

import (
	"errors"
	"fmt"
	"image"

	"storyreel/config"
)

// Resolution selects the output canvas size.
type Resolution string

const (
	// ResolutionSource sizes the canvas to the first slide's pixel dimensions.
	ResolutionSource Resolution = "source"
	Resolution1080p  Resolution = "1080p"
	Resolution720p   Resolution = "720p"
)

// Dimensions returns the fixed canvas size for the resolution, or ok=false
// for ResolutionSource.
func (r Resolution) Dimensions() (w, h int, ok bool) {
	switch r {
	case Resolution1080p:
		return 1920, 1080, true
	case Resolution720p:
		return 1280, 720, true
	}
	return 0, 0, false
}

// Valid reports whether r is a known resolution.
func (r Resolution) Valid() bool {
	return r == ResolutionSource || r == Resolution1080p || r == Resolution720p
}

// Slide pairs one generated illustration with its bilingual captions.
type Slide struct {
	Image             image.Image
	NativeCaption     string
	TranslatedCaption string
}

// Channel carries the text drawn on the fallback end card.
type Channel struct {
	Title   string
	Tagline string
	Handle  string
}

// DefaultChannel returns the reference channel branding.
func DefaultChannel() Channel {
	return Channel{
		Title:   config.DefaultChannelTitle,
		Tagline: config.DefaultChannelTagline,
		Handle:  config.DefaultChannelHandle,
	}
}

// Config is the frozen input of one render: slides, optional cover and
// end-card images, optional audio tracks (file paths, probed for duration),
// caption styles and target resolution. Decoded images are read-only once
// supplied and shared by reference for the whole render.
type Config struct {
	Slides []Slide

	CoverImage   image.Image // optional
	EndCardImage image.Image // optional

	BackgroundAudio string // optional path; at least one audio track required
	VoiceoverAudio  string // optional path

	NativeStyle     CaptionStyle
	TranslatedStyle CaptionStyle

	Resolution Resolution
	Channel    Channel
}

// ErrNoAudio is returned when a render is requested without any audio track;
// audio presence defines the content duration.
var ErrNoAudio = errors.New("at least one audio track is required to set the video duration")

// ErrNoSlides is returned when a render is requested with an empty slide sequence.
var ErrNoSlides = errors.New("render requires at least one slide")

// Validate checks the invariants that must hold before any frame is drawn.
func (c *Config) Validate() error {
	if len(c.Slides) == 0 {
		return ErrNoSlides
	}
	for i, s := range c.Slides {
		if s.Image == nil {
			return fmt.Errorf("slide %d has no image", i)
		}
	}
	if c.BackgroundAudio == "" && c.VoiceoverAudio == "" {
		return ErrNoAudio
	}
	if err := c.NativeStyle.Validate(); err != nil {
		return fmt.Errorf("native caption style: %w", err)
	}
	if err := c.TranslatedStyle.Validate(); err != nil {
		return fmt.Errorf("translated caption style: %w", err)
	}
	if !c.Resolution.Valid() {
		return fmt.Errorf("unsupported resolution %q", c.Resolution)
	}
	return nil
}

// CanvasSize resolves the output dimensions for this config.
func (c *Config) CanvasSize() (w, h int) {
	if w, h, ok := c.Resolution.Dimensions(); ok {
		return w, h
	}
	b := c.Slides[0].Image.Bounds()
	return b.Dx(), b.Dy()
}
