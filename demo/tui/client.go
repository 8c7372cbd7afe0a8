package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storyreel/render"
)

// RenderClient is a thin HTTP client for the render API.
type RenderClient struct {
	baseURL string
	client  *http.Client
}

// NewRenderClient creates a client for the given API base URL.
func NewRenderClient(baseURL string) *RenderClient {
	return &RenderClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// StartRender posts a raw render payload and returns the new job ID.
func (c *RenderClient) StartRender(payload []byte) (string, error) {
	resp, err := c.client.Post(c.baseURL+"/api/render", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to start render: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	var started struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&started); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return started.ID, nil
}

// GetStatus fetches the current status of a render job.
func (c *RenderClient) GetStatus(jobID string) (*render.Status, error) {
	resp, err := c.client.Get(c.baseURL + "/api/render/" + jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	var status render.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &status, nil
}

// Cancel requests cooperative cancellation of a render job.
func (c *RenderClient) Cancel(jobID string) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+"/api/render/"+jobID, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to cancel render: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
