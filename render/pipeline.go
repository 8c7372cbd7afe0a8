package render

import (
	"context"
	"fmt"
	"io"
	"os"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"storyreel/config"
)

// frameSink receives raw RGBA frames in strictly increasing frame order.
// The real sink is an ffmpeg stdin pipe; tests substitute an in-memory one.
type frameSink interface {
	io.WriteCloser
	CloseWithError(err error) error
}

type audioTrack struct {
	path    string
	delayMs int
}

// encoderStarter launches the encode/mux process and returns the sink the
// draw loop writes frames into, plus a channel that yields the terminal
// encoder error (nil on success) once the sink is closed.
type encoderStarter func(width, height int, tracks []audioTrack, outPath string) (frameSink, <-chan error, error)

// Pipeline drives the fixed-rate draw loop: it probes audio to fix the
// timeline, composites every frame in order, streams them into the encoder
// and reports progress. Probe and encoder are injectable so the loop can be
// stepped synchronously in tests.
type Pipeline struct {
	cfg          *Config
	probe        func(path string) (float64, error)
	startEncoder encoderStarter

	// OnProgress, when set, observes the completed frame count after each
	// frame. Callbacks are best-effort; a nil observer detaches cleanly.
	OnProgress func(frame, totalFrames int)
}

// NewPipeline builds a pipeline around the frozen config.
func NewPipeline(cfg *Config) *Pipeline {
	return &Pipeline{
		cfg:          cfg,
		probe:        ProbeDuration,
		startEncoder: startFFmpegEncoder,
	}
}

// Run renders the whole video into outPath. Any failure - probe, compositor
// setup, encode - aborts the render and removes partial output; no corrupt
// artifact is ever left behind. Cancellation is checked once per frame.
func (p *Pipeline) Run(ctx context.Context, outPath string) error {
	if err := p.cfg.Validate(); err != nil {
		return err
	}

	contentSec, err := p.contentDuration()
	if err != nil {
		return err
	}
	tl, err := NewTimeline(contentSec, len(p.cfg.Slides))
	if err != nil {
		return err
	}

	width, height := p.cfg.CanvasSize()
	comp, err := NewCompositor(width, height, p.cfg)
	if err != nil {
		return fmt.Errorf("prepare compositor: %w", err)
	}

	sink, encodeErr, err := p.startEncoder(width, height, p.audioTracks(), outPath)
	if err != nil {
		return fmt.Errorf("start encoder: %w", err)
	}

	totalFrames := tl.TotalFrames(config.FrameRate)
	for frame := 0; frame < totalFrames; frame++ {
		select {
		case <-ctx.Done():
			sink.CloseWithError(ctx.Err())
			<-encodeErr
			os.Remove(outPath)
			return fmt.Errorf("render canceled: %w", ctx.Err())
		default:
		}

		t := float64(frame) / config.FrameRate
		stage, offset := tl.At(t)
		slide := 0
		if stage == StageContent {
			slide = tl.SlideAt(offset)
		}
		img := comp.DrawFrame(stage, offset, slide)
		if _, err := sink.Write(img.Pix); err != nil {
			// The encoder died; surface its error rather than the pipe's.
			if encErr := <-encodeErr; encErr != nil {
				err = encErr
			}
			os.Remove(outPath)
			return fmt.Errorf("encode video: %w", err)
		}
		if p.OnProgress != nil {
			p.OnProgress(frame+1, totalFrames)
		}
	}

	sink.Close()
	if err := <-encodeErr; err != nil {
		os.Remove(outPath)
		return fmt.Errorf("finalize video: %w", err)
	}
	return nil
}

// contentDuration probes the supplied audio tracks and returns the longer
// duration. An unreadable track fails the render before any frame is drawn.
func (p *Pipeline) contentDuration() (float64, error) {
	var content float64
	for _, path := range []string{p.cfg.BackgroundAudio, p.cfg.VoiceoverAudio} {
		if path == "" {
			continue
		}
		d, err := p.probe(path)
		if err != nil {
			return 0, fmt.Errorf("decode audio: %w", err)
		}
		if d > content {
			content = d
		}
	}
	if content <= 0 {
		return 0, ErrNoAudio
	}
	return content, nil
}

// audioTracks schedules every present track to start when the cover stage
// ends, so the video opens silent and audio runs out naturally at or before
// the end of the content stage.
func (p *Pipeline) audioTracks() []audioTrack {
	delayMs := int(config.CoverDurationSec * 1000)
	var tracks []audioTrack
	if p.cfg.BackgroundAudio != "" {
		tracks = append(tracks, audioTrack{path: p.cfg.BackgroundAudio, delayMs: delayMs})
	}
	if p.cfg.VoiceoverAudio != "" {
		tracks = append(tracks, audioTrack{path: p.cfg.VoiceoverAudio, delayMs: delayMs})
	}
	return tracks
}

// startFFmpegEncoder wires raw RGBA frames on stdin plus the delayed audio
// tracks into a single VP9/Opus webm. The returned channel receives the
// ffmpeg exit error after the frame pipe closes.
func startFFmpegEncoder(width, height int, tracks []audioTrack, outPath string) (frameSink, <-chan error, error) {
	pr, pw := io.Pipe()

	video := ffmpeg.Input("pipe:", ffmpeg.KwArgs{
		"format":     "rawvideo",
		"pix_fmt":    "rgba",
		"video_size": fmt.Sprintf("%dx%d", width, height),
		"framerate":  config.FrameRate,
	})

	delayed := make([]*ffmpeg.Stream, 0, len(tracks))
	for _, t := range tracks {
		in := ffmpeg.Input(t.path).Audio()
		delayed = append(delayed, in.Filter("adelay", ffmpeg.Args{fmt.Sprintf("%d|%d", t.delayMs, t.delayMs)}))
	}

	streams := []*ffmpeg.Stream{video}
	switch len(delayed) {
	case 1:
		streams = append(streams, delayed[0])
	case 2:
		mixed := ffmpeg.Filter(delayed, "amix", ffmpeg.Args{}, ffmpeg.KwArgs{
			"inputs":    2,
			"duration":  "longest",
			"normalize": 0,
		})
		streams = append(streams, mixed)
	}

	out := ffmpeg.Output(streams, outPath, ffmpeg.KwArgs{
		"c:v":     config.VideoCodec,
		"b:v":     config.VideoBitrate,
		"c:a":     config.AudioCodec,
		"b:a":     config.AudioBitrate,
		"pix_fmt": "yuv420p",
	}).OverWriteOutput().WithInput(pr)

	errc := make(chan error, 1)
	go func() {
		err := out.Run()
		// Unblock a writer stuck on a dead encoder.
		pr.CloseWithError(err)
		errc <- err
	}()
	return pw, errc, nil
}
