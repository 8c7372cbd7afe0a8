package story

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"storyreel/config"
	"storyreel/retry"
)

// ClassifyImageError maps image-service failures onto retry kinds. Only
// rate-limit conditions wrapped with ErrRateLimited are retryable.
func ClassifyImageError(err error) retry.Kind {
	if errors.Is(err, ErrRateLimited) {
		return retry.KindRateLimited
	}
	return retry.KindPermanent
}

// BatchGenerator generates one image set per story asset, in order, with a
// per-call retry policy and a fixed cooldown between successive successful
// calls to stay under the service's steady-state rate limit.
type BatchGenerator struct {
	Client   ImageClient
	Policy   retry.Policy
	Cooldown time.Duration

	// OnProgress, if non-nil, is called with (done, total) after each slide.
	OnProgress func(done, total int)
}

// NewBatchGenerator returns a generator with the default retry policy.
func NewBatchGenerator(client ImageClient) *BatchGenerator {
	return &BatchGenerator{
		Client: client,
		Policy: retry.Policy{
			MaxAttempts: config.MaxImageAttempts,
			BaseDelay:   config.ImageRetryBaseDelay,
			Classify:    ClassifyImageError,
		},
		Cooldown: config.ImageRetryBaseDelay,
	}
}

// GenerateAll generates images for every asset in order. One failing prompt
// aborts the whole batch; no partial result is returned.
func (g *BatchGenerator) GenerateAll(ctx context.Context, assets []StoryAsset, ratio AspectRatio) ([]GeneratedSlide, error) {
	if len(assets) == 0 {
		return nil, errors.New("no story assets to generate images for")
	}
	if !ratio.Valid() {
		return nil, fmt.Errorf("unsupported aspect ratio %q", ratio)
	}

	slides := make([]GeneratedSlide, 0, len(assets))
	for i, asset := range assets {
		unit := fmt.Sprintf("image generation for prompt %q", asset.ImagePrompt)
		images, err := retry.DoValue(ctx, g.Policy, unit, func(ctx context.Context) ([][]byte, error) {
			return g.Client.GenerateImages(ctx, asset.ImagePrompt, ratio)
		})
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", i, err)
		}

		slides = append(slides, GeneratedSlide{Prompt: asset.ImagePrompt, Images: images})
		log.Printf("🖼️ generated images for slide %d of %d", i+1, len(assets))
		if g.OnProgress != nil {
			g.OnProgress(i+1, len(assets))
		}

		if i < len(assets)-1 && g.Cooldown > 0 {
			if err := retry.Cooldown(ctx, g.Cooldown); err != nil {
				return nil, err
			}
		}
	}
	return slides, nil
}
