// Package status persists render job status snapshots in Redis so the API
// and the worker can share progress across processes.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"storyreel/render"
)

// ErrNotFound is returned when no status exists for a job ID.
var ErrNotFound = errors.New("render status not found")

const keyPrefix = "storyreel:render:"

// Config holds the Redis connection settings for the status store.
type Config struct {
	Addr     string
	Password string
	DB       int
	// TTL bounds how long finished job statuses are retained. Zero keeps
	// them forever.
	TTL time.Duration
}

// ConfigFromEnv reads REDIS_ADDR, REDIS_PASSWORD, REDIS_DB and
// RENDER_STATUS_TTL with sensible defaults.
func ConfigFromEnv() Config {
	cfg := Config{Addr: "localhost:6379", TTL: 24 * time.Hour}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	cfg.Password = os.Getenv("REDIS_PASSWORD")
	if db := os.Getenv("REDIS_DB"); db != "" {
		if v, err := strconv.Atoi(db); err == nil {
			cfg.DB = v
		}
	}
	if ttl := os.Getenv("RENDER_STATUS_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			cfg.TTL = d
		}
	}
	return cfg
}

// Store reads and writes render job statuses keyed by job ID.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore connects to Redis and verifies connectivity.
func NewStore(cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &Store{client: client, ttl: cfg.TTL}, nil
}

// Close closes the underlying Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

// JobStatus is the cross-process view of one render job.
type JobStatus struct {
	JobID    string        `json:"job_id"`
	Status   render.Status `json:"status"`
	Artifact string        `json:"artifact,omitempty"`
	Updated  time.Time     `json:"updated"`
}

// Set writes the status snapshot for a job.
func (s *Store) Set(ctx context.Context, jobID string, st render.Status, artifact string) error {
	payload, err := json.Marshal(JobStatus{
		JobID:    jobID,
		Status:   st,
		Artifact: artifact,
		Updated:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, keyPrefix+jobID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("persist status for job %s: %w", jobID, err)
	}
	return nil
}

// Get fetches the status snapshot for a job.
func (s *Store) Get(ctx context.Context, jobID string) (JobStatus, error) {
	raw, err := s.client.Get(ctx, keyPrefix+jobID).Bytes()
	if err == redis.Nil {
		return JobStatus{}, ErrNotFound
	}
	if err != nil {
		return JobStatus{}, fmt.Errorf("fetch status for job %s: %w", jobID, err)
	}

	var st JobStatus
	if err := json.Unmarshal(raw, &st); err != nil {
		return JobStatus{}, fmt.Errorf("decode status for job %s: %w", jobID, err)
	}
	return st, nil
}
