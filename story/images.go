package story

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrRateLimited marks a generation failure the service reported as a quota
// or rate-limit condition. Callers retry these; everything else is permanent.
var ErrRateLimited = errors.New("image service rate limited")

// ImageClient abstracts a prompt->raster image generator.
type ImageClient interface {
	GenerateImages(ctx context.Context, prompt string, ratio AspectRatio) ([][]byte, error)
}

// HTTPImageClient generates images via an HTTP endpoint that takes the prompt
// in the path and sizing in query parameters (Pollinations-style).
type HTTPImageClient struct {
	baseURL    string
	httpClient *http.Client
}

const defaultImageBaseURL = "https://image.pollinations.ai/prompt"

// NewHTTPImageClient creates a client for the image-generation endpoint.
// An empty baseURL selects the default service.
func NewHTTPImageClient(baseURL string) *HTTPImageClient {
	if baseURL == "" {
		baseURL = defaultImageBaseURL
	}
	return &HTTPImageClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// GenerateImages fetches one generated image for the prompt at the requested
// aspect ratio. Rate-limit responses are wrapped with ErrRateLimited so the
// retry layer can classify them; every failure carries the offending prompt.
func (c *HTTPImageClient) GenerateImages(ctx context.Context, prompt string, ratio AspectRatio) ([][]byte, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("image prompt is empty")
	}
	if !ratio.Valid() {
		return nil, fmt.Errorf("unsupported aspect ratio %q", ratio)
	}

	w, h := ratio.Dimensions()
	imageURL := fmt.Sprintf("%s/%s?width=%d&height=%d&nologo=true",
		c.baseURL, url.PathEscape(prompt), w, h)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("image request for prompt %q: %w", prompt, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image fetch for prompt %q: %w", prompt, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if isRateLimitResponse(resp.StatusCode, string(body)) {
			return nil, fmt.Errorf("image fetch for prompt %q: HTTP %d: %w", prompt, resp.StatusCode, ErrRateLimited)
		}
		return nil, fmt.Errorf("image fetch for prompt %q: HTTP %d", prompt, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("image read for prompt %q: %w", prompt, err)
	}
	if len(data) < 100 {
		// Tiny bodies are error pages, not images.
		return nil, fmt.Errorf("image service returned no image data for prompt %q", prompt)
	}
	return [][]byte{data}, nil
}

// isRateLimitResponse recognizes the two quota signals the service emits,
// an HTTP 429 status or a RESOURCE_EXHAUSTED token in the body.
func isRateLimitResponse(status int, body string) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return strings.Contains(body, "RESOURCE_EXHAUSTED")
}

// DecodeBase64Images converts base64 payloads (as carried over the API) back
// into raw image bytes.
func DecodeBase64Images(encoded []string) ([][]byte, error) {
	out := make([][]byte, 0, len(encoded))
	for i, s := range encoded {
		data, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("decode image %d: %w", i, err)
		}
		out = append(out, data)
	}
	return out, nil
}

// EncodeBase64Images converts raw image bytes into base64 payloads for
// transport.
func EncodeBase64Images(images [][]byte) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		out = append(out, base64.StdEncoding.EncodeToString(img))
	}
	return out
}
