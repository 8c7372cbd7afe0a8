package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"storyreel/render"
)

// RegisterRenderRoutes registers the render job endpoints.
func (s *Server) RegisterRenderRoutes(r *gin.Engine) {
	g := r.Group("/api/render")
	g.POST("", s.handleStartRender)
	g.GET("/:id", s.handleRenderStatus)
	g.GET("/:id/file", s.handleRenderArtifact)
	g.DELETE("/:id", s.handleCancelRender)
}

type stylePayload struct {
	Color      string `json:"color"`
	FontSizePx int    `json:"font_size_px"`
	FontFamily string `json:"font_family"`
	Bold       *bool  `json:"bold"`
	Italic     *bool  `json:"italic"`
}

type renderSlidePayload struct {
	Image             string `json:"image" binding:"required"`
	NativeCaption     string `json:"native_caption"`
	TranslatedCaption string `json:"translated_caption"`
}

type startRenderRequest struct {
	Slides          []renderSlidePayload `json:"slides" binding:"required"`
	CoverImage      string               `json:"cover_image"`
	EndCardImage    string               `json:"end_card_image"`
	BackgroundAudio string               `json:"background_audio"`
	VoiceoverAudio  string               `json:"voiceover_audio"`
	Resolution      string               `json:"resolution"`
	NativeStyle     *stylePayload        `json:"native_style"`
	TranslatedStyle *stylePayload        `json:"translated_style"`
	ChannelTitle    string               `json:"channel_title"`
	ChannelHandle   string               `json:"channel_handle"`
}

// handleStartRender decodes the payload into a render configuration and
// starts an asynchronous render job.
func (s *Server) handleStartRender(c *gin.Context) {
	var req startRenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dir, err := os.MkdirTemp("", "storyreel-render-*")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	cfg, err := buildRenderConfig(&req, dir)
	if err != nil {
		os.RemoveAll(dir)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := render.NewSession(dir)
	if err := session.Configure(*cfg); err != nil {
		os.RemoveAll(dir)
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	job := s.jobs.addRender(session, dir)
	log.Printf("🎬 render job %s started: %d slides, resolution %s", job.ID, len(cfg.Slides), cfg.Resolution)

	go func() {
		if err := session.Start(context.Background()); err != nil {
			log.Printf("❌ render job %s failed: %v", job.ID, err)
		} else {
			log.Printf("✅ render job %s complete", job.ID)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"id": job.ID})
}

// handleRenderStatus reports a render job's state, progress and error.
func (s *Server) handleRenderStatus(c *gin.Context) {
	job, err := s.jobs.getRender(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, job.Session.Snapshot())
}

// handleRenderArtifact serves the finished video file.
func (s *Server) handleRenderArtifact(c *gin.Context) {
	job, err := s.jobs.getRender(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	status := job.Session.Snapshot()
	if status.State != render.StateComplete || status.Artifact == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "render is not complete", "state": status.State})
		return
	}

	c.Header("Content-Type", "video/webm")
	c.FileAttachment(status.Artifact, filepath.Base(status.Artifact))
}

// handleCancelRender cancels an in-flight render, or deletes a finished
// job outright: the session is closed, the scratch directory with its
// artifact removed and the ID forgotten.
func (s *Server) handleCancelRender(c *gin.Context) {
	job, err := s.jobs.getRender(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	if job.Session.Snapshot().State == render.StateRendering {
		job.Session.Cancel()
		c.JSON(http.StatusOK, gin.H{"status": "cancel requested"})
		return
	}

	if _, err := s.jobs.removeRender(job.ID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	job.Session.Close()
	os.RemoveAll(job.Dir)
	log.Printf("🗑️ render job %s deleted", job.ID)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// buildRenderConfig translates the wire payload into a render.Config,
// decoding images in-process and writing audio tracks into dir for ffmpeg
// to read.
func buildRenderConfig(req *startRenderRequest, dir string) (*render.Config, error) {
	cfg := &render.Config{
		NativeStyle:     render.DefaultNativeStyle(),
		TranslatedStyle: render.DefaultTranslatedStyle(),
		Resolution:      render.ResolutionSource,
		Channel:         render.DefaultChannel(),
	}

	for i, sl := range req.Slides {
		img, err := decodeBase64Image(sl.Image)
		if err != nil {
			return nil, fmt.Errorf("slide %d image: %w", i, err)
		}
		cfg.Slides = append(cfg.Slides, render.Slide{
			Image:             img,
			NativeCaption:     sl.NativeCaption,
			TranslatedCaption: sl.TranslatedCaption,
		})
	}

	if req.CoverImage != "" {
		img, err := decodeBase64Image(req.CoverImage)
		if err != nil {
			return nil, fmt.Errorf("cover image: %w", err)
		}
		cfg.CoverImage = img
	}
	if req.EndCardImage != "" {
		img, err := decodeBase64Image(req.EndCardImage)
		if err != nil {
			return nil, fmt.Errorf("end card image: %w", err)
		}
		cfg.EndCardImage = img
	}

	if req.BackgroundAudio != "" {
		path, err := writeAudioFile(dir, "background", req.BackgroundAudio)
		if err != nil {
			return nil, fmt.Errorf("background audio: %w", err)
		}
		cfg.BackgroundAudio = path
	}
	if req.VoiceoverAudio != "" {
		path, err := writeAudioFile(dir, "voiceover", req.VoiceoverAudio)
		if err != nil {
			return nil, fmt.Errorf("voiceover audio: %w", err)
		}
		cfg.VoiceoverAudio = path
	}

	if req.Resolution != "" {
		cfg.Resolution = render.Resolution(req.Resolution)
	}
	if req.NativeStyle != nil {
		style, err := parseStyle(req.NativeStyle, cfg.NativeStyle)
		if err != nil {
			return nil, fmt.Errorf("native style: %w", err)
		}
		cfg.NativeStyle = style
	}
	if req.TranslatedStyle != nil {
		style, err := parseStyle(req.TranslatedStyle, cfg.TranslatedStyle)
		if err != nil {
			return nil, fmt.Errorf("translated style: %w", err)
		}
		cfg.TranslatedStyle = style
	}
	if req.ChannelTitle != "" {
		cfg.Channel.Title = req.ChannelTitle
	}
	if req.ChannelHandle != "" {
		cfg.Channel.Handle = req.ChannelHandle
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeBase64Image(encoded string) (image.Image, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func writeAudioFile(dir, name, encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	path := filepath.Join(dir, name+".audio")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func parseStyle(p *stylePayload, base render.CaptionStyle) (render.CaptionStyle, error) {
	style := base
	if p.Color != "" {
		col, err := render.ParseHexColor(p.Color)
		if err != nil {
			return render.CaptionStyle{}, err
		}
		style.Color = col
	}
	if p.FontSizePx != 0 {
		style.FontSizePx = p.FontSizePx
	}
	if p.FontFamily != "" {
		style.Family = render.FontFamily(p.FontFamily)
	}
	if p.Bold != nil {
		style.Bold = *p.Bold
	}
	if p.Italic != nil {
		style.Italic = *p.Italic
	}
	if err := style.Validate(); err != nil {
		return render.CaptionStyle{}, err
	}
	return style, nil
}
