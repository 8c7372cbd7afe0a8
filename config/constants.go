package config

import "time"

// Render Timing Constants
const (
	// CoverDurationSec is the fixed length of the opening cover stage
	CoverDurationSec = 3.0

	// EndCardDurationSec is the fixed length of the closing end-card stage
	EndCardDurationSec = 4.0

	// FrameRate is the output frame rate of rendered videos
	FrameRate = 30
)

// Caption Layout Constants
const (
	// CaptionMaxWidthFrac limits caption line width to this fraction of the canvas width
	CaptionMaxWidthFrac = 0.9

	// CaptionBottomMarginFrac is the gap between the lowest caption block and the
	// bottom edge, as a fraction of canvas height
	CaptionBottomMarginFrac = 0.05

	// CaptionBlockPaddingPx separates the two stacked caption blocks
	CaptionBlockPaddingPx = 8.0

	// CaptionLineHeightFactor converts a font size into a line advance
	CaptionLineHeightFactor = 1.2

	// CaptionShadowOffsetPx is the radius of the translucent shadow ring
	// drawn under caption text
	CaptionShadowOffsetPx = 2
)

// Video Output Constants
const (
	// VideoCodec is the video encoding codec (webm container)
	VideoCodec = "libvpx-vp9"

	// AudioCodec is the audio encoding codec
	AudioCodec = "libopus"

	// AudioBitrate is the audio quality bitrate
	AudioBitrate = "192k"

	// VideoBitrate is the target video bitrate
	VideoBitrate = "2M"
)

// Remote Call Constants
const (
	// MaxImageAttempts is how many times a rate-limited image generation is tried
	MaxImageAttempts = 3

	// ImageRetryBaseDelay is the first backoff delay; it doubles per attempt and is
	// also the cooldown between successive items in a batch
	ImageRetryBaseDelay = 2500 * time.Millisecond

	// StoryAssetCount is the number of StoryAsset triples the asset call must return
	StoryAssetCount = 10
)

// Directory Constants
const (
	// OutputDir is the directory for rendered videos
	OutputDir = "output"
)

// Channel Defaults
const (
	// DefaultChannelTitle is drawn on the fallback end card
	DefaultChannelTitle = "Echo Tales"

	// DefaultChannelHandle is the channel line on the fallback end card
	DefaultChannelHandle = "youtube.com/@EchoTales-rich86"

	// DefaultChannelTagline is the subscribe prompt on the fallback end card
	DefaultChannelTagline = "Like & Subscribe"
)
