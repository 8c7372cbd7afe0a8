package api

import (
	"github.com/gin-gonic/gin"

	"storyreel/story"
)

// Server wires the HTTP surface to the story and render services.
type Server struct {
	chat   story.ChatClient
	images *story.BatchGenerator
	jobs   *jobRegistry
}

// NewServer creates an API server backed by the given clients.
func NewServer(chat story.ChatClient, images *story.BatchGenerator) *Server {
	return &Server{
		chat:   chat,
		images: images,
		jobs:   newJobRegistry(),
	}
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(s *Server) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	s.RegisterHealthRoutes(r)
	s.RegisterStoryRoutes(r)
	s.RegisterRenderRoutes(r)
	return r
}
