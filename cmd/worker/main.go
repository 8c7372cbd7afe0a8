package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"storyreel/kafka"
	"storyreel/status"
	"storyreel/storage"
	"storyreel/story"
	"storyreel/upload"
	"storyreel/worker"
)

func main() {
	_ = godotenv.Load()

	log.Println("🎬 Render worker starting...")

	chat, err := story.NewCohereChat(os.Getenv("COHERE_CHAT_MODEL"))
	if err != nil {
		log.Fatalf("❌ Failed to initialize chat client: %v", err)
	}
	images := story.NewBatchGenerator(story.NewHTTPImageClient(os.Getenv("IMAGE_SERVICE_URL")))

	statuses, err := status.NewStore(status.ConfigFromEnv())
	if err != nil {
		log.Fatalf("❌ Failed to connect to redis: %v", err)
	}
	defer statuses.Close()

	store, err := storage.NewArtifactStore(context.Background(), storage.ConfigFromEnv())
	if err != nil {
		log.Fatalf("❌ Failed to initialize artifact store: %v", err)
	}

	proc := worker.NewProcessor(chat, images, statuses, store)
	if keyFile := os.Getenv("YOUTUBE_SERVICE_ACCOUNT_FILE"); keyFile != "" {
		uploader, err := upload.NewUploader(keyFile)
		if err != nil {
			log.Fatalf("❌ Failed to initialize YouTube uploader: %v", err)
		}
		proc.Publisher = uploader
		log.Println("📤 YouTube publishing enabled")
	}

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: kafkaBrokers(),
		Topic:   envOr("KAFKA_TOPIC", "storyreel.render.jobs"),
		GroupID: envOr("KAFKA_GROUP_ID", "storyreel-workers"),
		Handler: &kafka.TypedJobHandler[worker.JobMessage]{
			Validate:   func(msg *worker.JobMessage) bool { return msg.Valid() },
			Process:    proc.Process,
			AlwaysMark: true,
		},
	})
	if err != nil {
		log.Fatalf("❌ Failed to create Kafka consumer: %v", err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Start(ctx); err != nil {
		log.Fatalf("❌ Kafka consumer failed to start: %v", err)
	}

	<-ctx.Done()
	log.Println("Render worker shutting down...")
}

func kafkaBrokers() []string {
	raw := envOr("KAFKA_BROKERS", "localhost:9092")
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
