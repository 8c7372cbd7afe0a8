// Package worker turns queued render jobs into uploaded videos: it
// generates story assets and images, renders the video, pushes the artifact
// to the store and publishes progress to the status store.
package worker

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"storyreel/render"
	"storyreel/status"
	"storyreel/story"
	"storyreel/upload"
)

// JobMessage is the wire format of one queued render job. Audio fields are
// either local file paths or http(s) URLs.
type JobMessage struct {
	ID              string `json:"id"`
	Story           string `json:"story"`
	AspectRatio     string `json:"aspect_ratio"`
	Resolution      string `json:"resolution"`
	BackgroundAudio string `json:"background_audio"`
	VoiceoverAudio  string `json:"voiceover_audio"`
}

// Valid reports whether the message carries enough to render.
func (m *JobMessage) Valid() bool {
	return m.ID != "" && strings.TrimSpace(m.Story) != "" &&
		(m.BackgroundAudio != "" || m.VoiceoverAudio != "")
}

// StatusWriter publishes job status snapshots.
type StatusWriter interface {
	Set(ctx context.Context, jobID string, st render.Status, artifact string) error
}

// ArtifactUploader persists a finished video and returns its storage key.
type ArtifactUploader interface {
	UploadArtifact(ctx context.Context, jobID, filePath string) (string, error)
}

// VideoPublisher pushes a finished video to a public platform and returns
// its platform ID.
type VideoPublisher interface {
	UploadVideo(videoPath string, metadata upload.VideoMetadata) (string, error)
}

// Processor executes render jobs end to end.
type Processor struct {
	chat     story.ChatClient
	images   *story.BatchGenerator
	statuses StatusWriter
	store    ArtifactUploader

	httpClient *http.Client

	// Publisher, when set, pushes each finished video to YouTube after it
	// lands in the artifact store. Publish failures are logged but do not
	// fail the job.
	Publisher VideoPublisher

	// Channel brands published videos.
	Channel render.Channel

	// runRender performs the actual render and returns the artifact path.
	// Swappable so tests run without ffmpeg.
	runRender func(ctx context.Context, cfg *render.Config, dir string, onProgress func(float64)) (string, error)
}

// NewProcessor wires a processor from its collaborators.
func NewProcessor(chat story.ChatClient, images *story.BatchGenerator, statuses StatusWriter, store ArtifactUploader) *Processor {
	return &Processor{
		chat:       chat,
		images:     images,
		statuses:   statuses,
		store:      store,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		Channel:    render.DefaultChannel(),
		runRender:  runSessionRender,
	}
}

func runSessionRender(ctx context.Context, cfg *render.Config, dir string, onProgress func(float64)) (string, error) {
	session := render.NewSession(dir)
	session.OnProgress = onProgress
	if err := session.Configure(*cfg); err != nil {
		return "", err
	}
	if err := session.Start(ctx); err != nil {
		return "", err
	}
	return session.Snapshot().Artifact, nil
}

// Process runs one job to completion. The returned error leaves the message
// unmarked for redelivery only when the failure is infrastructural; content
// failures are published to the status store and the message is consumed.
func (p *Processor) Process(ctx context.Context, msg *JobMessage) error {
	log.Printf("🎬 processing render job %s", msg.ID)
	p.publish(ctx, msg.ID, render.Status{State: render.StateRendering}, "")

	dir, err := os.MkdirTemp("", "storyreel-worker-*")
	if err != nil {
		return fmt.Errorf("job %s: scratch dir: %w", msg.ID, err)
	}
	defer os.RemoveAll(dir)

	artifact, assets, err := p.run(ctx, msg, dir)
	if err != nil {
		log.Printf("❌ render job %s failed: %v", msg.ID, err)
		p.publish(ctx, msg.ID, render.Status{State: render.StateFailed, Error: err.Error()}, "")
		// Content and render failures are deterministic; re-delivery
		// would fail identically.
		return nil
	}

	key, err := p.store.UploadArtifact(ctx, msg.ID, artifact)
	if err != nil {
		p.publish(ctx, msg.ID, render.Status{State: render.StateFailed, Error: err.Error()}, "")
		return fmt.Errorf("job %s: upload: %w", msg.ID, err)
	}

	if p.Publisher != nil {
		md := upload.GenerateMetadata(assets, p.Channel.Title, p.Channel.Handle)
		if videoID, err := p.Publisher.UploadVideo(artifact, md); err != nil {
			// The artifact is already stored; publishing can be retried
			// by hand without re-rendering.
			log.Printf("⚠️ job %s rendered but publish failed: %v", msg.ID, err)
		} else {
			log.Printf("📤 job %s published as video %s", msg.ID, videoID)
		}
	}

	log.Printf("✅ render job %s complete: %s", msg.ID, key)
	p.publish(ctx, msg.ID, render.Status{State: render.StateComplete, Progress: 1}, key)
	return nil
}

func (p *Processor) run(ctx context.Context, msg *JobMessage, dir string) (string, []story.StoryAsset, error) {
	assets, err := story.GenerateStoryAssets(ctx, p.chat, msg.Story)
	if err != nil {
		return "", nil, err
	}

	ratio := story.AspectRatio(msg.AspectRatio)
	if ratio == "" {
		ratio = story.AspectWide
	}
	slides, err := p.images.GenerateAll(ctx, assets, ratio)
	if err != nil {
		return "", nil, err
	}

	cfg, err := p.buildConfig(ctx, msg, assets, slides, dir)
	if err != nil {
		return "", nil, err
	}

	var lastTenth int
	artifact, err := p.runRender(ctx, cfg, dir, func(frac float64) {
		// Redis writes once per 10% step, not per frame.
		if tenth := int(frac * 10); tenth > lastTenth {
			lastTenth = tenth
			p.publish(ctx, msg.ID, render.Status{State: render.StateRendering, Progress: frac}, "")
		}
	})
	if err != nil {
		return "", nil, err
	}
	return artifact, assets, nil
}

func (p *Processor) buildConfig(ctx context.Context, msg *JobMessage, assets []story.StoryAsset, slides []story.GeneratedSlide, dir string) (*render.Config, error) {
	if len(slides) != len(assets) {
		return nil, fmt.Errorf("got %d slide image sets for %d assets", len(slides), len(assets))
	}

	cfg := &render.Config{
		NativeStyle:     render.DefaultNativeStyle(),
		TranslatedStyle: render.DefaultTranslatedStyle(),
		Resolution:      render.ResolutionSource,
		Channel:         render.DefaultChannel(),
	}
	if msg.Resolution != "" {
		cfg.Resolution = render.Resolution(msg.Resolution)
	}

	for i, asset := range assets {
		if len(slides[i].Images) == 0 {
			return nil, fmt.Errorf("slide %d has no generated image", i)
		}
		img, _, err := image.Decode(bytes.NewReader(slides[i].Images[0]))
		if err != nil {
			return nil, fmt.Errorf("decode slide %d image: %w", i, err)
		}
		cfg.Slides = append(cfg.Slides, render.Slide{
			Image:             img,
			NativeCaption:     asset.NativeCaption,
			TranslatedCaption: asset.TranslatedCaption,
		})
	}

	var err error
	if cfg.BackgroundAudio, err = p.localAudio(ctx, msg.BackgroundAudio, dir, "background"); err != nil {
		return nil, err
	}
	if cfg.VoiceoverAudio, err = p.localAudio(ctx, msg.VoiceoverAudio, dir, "voiceover"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// localAudio resolves an audio reference to a local file, downloading it
// when the reference is a URL.
func (p *Processor) localAudio(ctx context.Context, ref, dir, name string) (string, error) {
	if ref == "" {
		return "", nil
	}
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return ref, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return "", fmt.Errorf("%s audio: %w", name, err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s audio: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s audio: HTTP %d from %s", name, resp.StatusCode, ref)
	}

	path := dir + "/" + name + ".audio"
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", fmt.Errorf("%s audio: %w", name, err)
	}
	return path, nil
}

func (p *Processor) publish(ctx context.Context, jobID string, st render.Status, artifact string) {
	if p.statuses == nil {
		return
	}
	if err := p.statuses.Set(ctx, jobID, st, artifact); err != nil {
		log.Printf("⚠️ failed to publish status for job %s: %v", jobID, err)
	}
}

var _ StatusWriter = (*status.Store)(nil)
var _ VideoPublisher = (*upload.Uploader)(nil)
