package api

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storyreel/config"
	"storyreel/story"
)

// RegisterStoryRoutes registers the asset, thumbnail and image generation
// endpoints.
func (s *Server) RegisterStoryRoutes(r *gin.Engine) {
	g := r.Group("/api/story")
	g.POST("/assets", s.handleGenerateAssets)
	g.POST("/thumbnail-prompt", s.handleThumbnailPrompt)
	g.POST("/images", s.handleGenerateImages)
	g.GET("/images/:id", s.handleImageJobStatus)
}

type generateAssetsRequest struct {
	Story string `json:"story" binding:"required"`
}

// handleGenerateAssets turns a story into ten prompt/caption triples.
func (s *Server) handleGenerateAssets(c *gin.Context) {
	var req generateAssetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assets, err := story.GenerateStoryAssets(c.Request.Context(), s.chat, req.Story)
	if err != nil {
		log.Printf("❌ asset generation failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assets": assets})
}

type thumbnailPromptRequest struct {
	Story       string `json:"story" binding:"required"`
	ChannelName string `json:"channel_name"`
}

// handleThumbnailPrompt produces one English thumbnail prompt for the story.
func (s *Server) handleThumbnailPrompt(c *gin.Context) {
	var req thumbnailPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ChannelName == "" {
		req.ChannelName = config.DefaultChannelTitle
	}

	prompt, err := story.GenerateThumbnailPrompt(c.Request.Context(), s.chat, req.Story, req.ChannelName)
	if err != nil {
		log.Printf("❌ thumbnail prompt generation failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompt": prompt})
}

type generateImagesRequest struct {
	Assets      []story.StoryAsset `json:"assets" binding:"required"`
	AspectRatio story.AspectRatio  `json:"aspect_ratio"`
}

// handleGenerateImages starts a batch image generation job and returns its
// ID immediately; progress and results are polled from the status endpoint.
func (s *Server) handleGenerateImages(c *gin.Context) {
	var req generateImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.AspectRatio == "" {
		req.AspectRatio = story.AspectWide
	}
	if !req.AspectRatio.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported aspect ratio"})
		return
	}
	if len(req.Assets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "assets are required"})
		return
	}

	job := s.jobs.addImageJob(len(req.Assets))

	// One generator per job so progress observers do not cross jobs.
	gen := *s.images
	gen.OnProgress = job.progress

	go func() {
		slides, err := gen.GenerateAll(context.Background(), req.Assets, req.AspectRatio)
		if err != nil {
			log.Printf("❌ image batch %s failed: %v", job.ID, err)
		}
		job.finish(slides, err)
	}()

	c.JSON(http.StatusAccepted, gin.H{"id": job.ID})
}

type slidePayload struct {
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
}

// handleImageJobStatus reports batch progress; finished jobs include the
// generated images as base64 payloads.
func (s *Server) handleImageJobStatus(c *gin.Context) {
	job, err := s.jobs.getImageJob(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	status, slides := job.snapshot()
	resp := gin.H{"state": status.State, "done": status.Done, "total": status.Total}
	if status.Error != "" {
		resp["error"] = status.Error
	}
	if status.State == imageJobComplete {
		payload := make([]slidePayload, 0, len(slides))
		for _, sl := range slides {
			payload = append(payload, slidePayload{
				Prompt: sl.Prompt,
				Images: story.EncodeBase64Images(sl.Images),
			})
		}
		resp["slides"] = payload
	}
	c.JSON(http.StatusOK, resp)
}
