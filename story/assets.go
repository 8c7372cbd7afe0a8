package story

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"storyreel/config"
)

// ErrBadAssetFormat means the model's reply could not be parsed into the
// required asset triples.
var ErrBadAssetFormat = errors.New("could not generate story assets")

const assetPromptTemplate = `Analyze the following story and produce a JSON array of exactly %d objects.
Character consistency is the single most important rule.

Required procedure:
1. Identify the main character.
2. Build a Character ID: one highly detailed, immutable description string of the form
   (Character ID: [detailed description]).
3. Produce %d scenes. Each object must have exactly three properties:
   - "prompt": an English image-generation prompt. It MUST begin with the exact
     Character ID string, character for character, followed by the action and setting.
   - "native_caption": the corresponding narrative segment from the original story,
     in the story's own language.
   - "translated_caption": the English translation of "native_caption".

The Character ID must be byte-identical across all %d prompts.
Return ONLY the JSON array, no prose and no code fences.

Story: %q`

// GenerateStoryAssets asks the chat model for exactly ten scene triples
// derived from the story text. Any malformed reply, wrong count, or missing
// field yields ErrBadAssetFormat.
func GenerateStoryAssets(ctx context.Context, chat ChatClient, storyText string) ([]StoryAsset, error) {
	if strings.TrimSpace(storyText) == "" {
		return nil, errors.New("story text is empty")
	}

	n := config.StoryAssetCount
	prompt := fmt.Sprintf(assetPromptTemplate, n, n, n, storyText)

	raw, err := chat.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("story asset generation: %w", err)
	}

	assets, err := parseAssets(raw, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadAssetFormat, err)
	}
	return assets, nil
}

func parseAssets(raw string, want int) ([]StoryAsset, error) {
	cleaned := extractJSONArray(stripCodeFences(raw))

	var assets []StoryAsset
	if err := json.Unmarshal([]byte(cleaned), &assets); err != nil {
		return nil, fmt.Errorf("response is not a JSON array: %v", err)
	}
	if len(assets) != want {
		return nil, fmt.Errorf("expected %d assets, got %d", want, len(assets))
	}
	for i, a := range assets {
		if a.ImagePrompt == "" || a.NativeCaption == "" || a.TranslatedCaption == "" {
			return nil, fmt.Errorf("asset %d is missing a required field", i)
		}
	}
	return assets, nil
}

// stripCodeFences removes a surrounding markdown code fence, if present.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}

// extractJSONArray trims to the outermost JSON array so surrounding prose
// does not break parsing.
func extractJSONArray(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
