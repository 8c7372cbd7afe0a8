package story

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

// ChatClient abstracts a prompt->completion text generator.
type ChatClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// CohereChat implements ChatClient using the Cohere Chat API.
// SDK: github.com/cohere-ai/cohere-go/v2
type CohereChat struct {
	client *cohereclient.Client
	model  string
}

const defaultChatModel = "command-r-08-2024"

// NewCohereChat builds a chat client from COHERE_API_KEY. Returns an error
// when the key is missing so callers can fail fast at startup.
func NewCohereChat(model string) (*CohereChat, error) {
	key := os.Getenv("COHERE_API_KEY")
	if key == "" {
		return nil, errors.New("COHERE_API_KEY is not set")
	}
	if model == "" {
		model = defaultChatModel
	}
	// Create a custom HTTP client that forces HTTP/1.1 to avoid HTTP/2 protocol errors
	httpClient := &http.Client{
		Timeout: 90 * time.Second,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}
	client := cohereclient.NewClient(
		cohereclient.WithToken(key),
		cohereclient.WithHTTPClient(httpClient),
	)
	return &CohereChat{client: client, model: model}, nil
}

func (c *CohereChat) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Message: prompt,
		Model:   &c.model,
	})
	if err != nil {
		return "", fmt.Errorf("cohere chat error: %w", err)
	}
	if resp == nil || resp.Text == "" {
		return "", errors.New("cohere chat returned empty response")
	}
	return resp.Text, nil
}
