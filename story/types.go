package story

// StoryAsset is one narrative beat: an image-generation prompt plus the
// matching bilingual captions. Assets are immutable once produced; their
// order defines the slide sequence.
type StoryAsset struct {
	ImagePrompt       string `json:"prompt"`
	NativeCaption     string `json:"native_caption"`
	TranslatedCaption string `json:"translated_caption"`
}

// GeneratedSlide pairs a prompt with the raw images the service returned for
// it. One prompt may yield multiple variants; the render pipeline picks one
// per slide index.
type GeneratedSlide struct {
	Prompt string
	Images [][]byte
}

// AspectRatio is the closed set of supported image shapes.
type AspectRatio string

const (
	AspectSquare         AspectRatio = "1:1"
	AspectWide           AspectRatio = "16:9"
	AspectPortrait       AspectRatio = "9:16"
	AspectClassic        AspectRatio = "4:3"
	AspectClassicUpright AspectRatio = "3:4"
)

// Valid reports whether r is a supported aspect ratio.
func (r AspectRatio) Valid() bool {
	switch r {
	case AspectSquare, AspectWide, AspectPortrait, AspectClassic, AspectClassicUpright:
		return true
	}
	return false
}

// Dimensions maps the ratio onto concrete pixel sizes for generation.
func (r AspectRatio) Dimensions() (w, h int) {
	switch r {
	case AspectWide:
		return 1920, 1080
	case AspectPortrait:
		return 1080, 1920
	case AspectClassic:
		return 1440, 1080
	case AspectClassicUpright:
		return 1080, 1440
	default:
		return 1024, 1024
	}
}
