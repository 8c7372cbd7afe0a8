package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"storyreel/api"
	"storyreel/story"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	chat, err := story.NewCohereChat(os.Getenv("COHERE_CHAT_MODEL"))
	if err != nil {
		log.Fatalf("❌ Failed to initialize chat client: %v", err)
	}
	images := story.NewBatchGenerator(story.NewHTTPImageClient(os.Getenv("IMAGE_SERVICE_URL")))

	r := api.NewRouter(api.NewServer(chat, images))
	log.Printf("Starting API server on %s", addr)
	log.Println("API endpoints available:")
	log.Println("  GET    /health")
	log.Println("  POST   /api/story/assets")
	log.Println("  POST   /api/story/thumbnail-prompt")
	log.Println("  POST   /api/story/images")
	log.Println("  GET    /api/story/images/:id")
	log.Println("  POST   /api/render")
	log.Println("  GET    /api/render/:id")
	log.Println("  GET    /api/render/:id/file")
	log.Println("  DELETE /api/render/:id")

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
