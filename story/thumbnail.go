package story

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const thumbnailPromptTemplate = `Analyze the following story and write a single English image-generation
prompt for a YouTube video thumbnail.

Requirements for the prompt:
1. Evocative: capture the story's core emotion or theme without giving away the ending.
2. On brand: the thumbnail is for the YouTube channel %q, which publishes emotional,
   reflective narrated stories.
3. Character focused: center the main character in a pivotal or expressive moment.
4. High quality: ask for cinematic quality, striking lighting, and vivid color.

Story: %q

Return only the prompt string, nothing else.`

// GenerateThumbnailPrompt asks the chat model for one English thumbnail
// prompt tuned to the channel's audience.
func GenerateThumbnailPrompt(ctx context.Context, chat ChatClient, storyText, channelName string) (string, error) {
	if strings.TrimSpace(storyText) == "" {
		return "", errors.New("story text is empty")
	}

	raw, err := chat.Generate(ctx, fmt.Sprintf(thumbnailPromptTemplate, channelName, storyText))
	if err != nil {
		return "", fmt.Errorf("thumbnail prompt generation: %w", err)
	}

	prompt := strings.TrimSpace(stripCodeFences(raw))
	if prompt == "" {
		return "", errors.New("thumbnail prompt generation: empty response")
	}
	return prompt, nil
}
