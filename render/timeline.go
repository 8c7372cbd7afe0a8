package render

import (
	"fmt"
	"math"

	"storyreel/config"
)

// Stage is one of the three ordered temporal segments of the output video.
type Stage int

const (
	StageCover Stage = iota
	StageContent
	StageEndCard
)

func (s Stage) String() string {
	switch s {
	case StageCover:
		return "cover"
	case StageContent:
		return "content"
	case StageEndCard:
		return "end_card"
	}
	return "unknown"
}

// Timeline partitions the total render duration into cover, content and
// end-card stages. It is derived once from the probed audio durations and the
// slide count, and holds no mutable state: stage resolution is a pure
// function of the clock position.
type Timeline struct {
	CoverSec   float64
	ContentSec float64
	EndCardSec float64
	SlideCount int
}

// NewTimeline builds a timeline for contentSec seconds of slide content.
// contentSec must be positive (audio presence defines it) and slideCount
// must be at least one.
func NewTimeline(contentSec float64, slideCount int) (Timeline, error) {
	if contentSec <= 0 {
		return Timeline{}, fmt.Errorf("content duration must be positive, got %.3f", contentSec)
	}
	if slideCount < 1 {
		return Timeline{}, fmt.Errorf("timeline needs at least one slide, got %d", slideCount)
	}
	return Timeline{
		CoverSec:   config.CoverDurationSec,
		ContentSec: contentSec,
		EndCardSec: config.EndCardDurationSec,
		SlideCount: slideCount,
	}, nil
}

// TotalSec is the full output duration.
func (tl Timeline) TotalSec() float64 {
	return tl.CoverSec + tl.ContentSec + tl.EndCardSec
}

// PerSlideSec is how long each slide stays on screen during the content stage.
func (tl Timeline) PerSlideSec() float64 {
	return tl.ContentSec / float64(tl.SlideCount)
}

// At resolves an absolute clock position to its stage and intra-stage offset.
// Times at or beyond the total duration resolve to the end-card stage.
func (tl Timeline) At(t float64) (Stage, float64) {
	if t < tl.CoverSec {
		return StageCover, t
	}
	if t < tl.CoverSec+tl.ContentSec {
		return StageContent, t - tl.CoverSec
	}
	return StageEndCard, t - tl.CoverSec - tl.ContentSec
}

// SlideAt maps a content-stage offset to the active slide index. The clamp
// keeps floating-point drift at the stage boundary from indexing past the
// last slide.
func (tl Timeline) SlideAt(offset float64) int {
	idx := int(math.Floor(offset / tl.PerSlideSec()))
	if idx > tl.SlideCount-1 {
		idx = tl.SlideCount - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// TotalFrames is the number of frames the capture loop draws at the given
// frame rate.
func (tl Timeline) TotalFrames(fps int) int {
	return int(math.Ceil(tl.TotalSec() * float64(fps)))
}
