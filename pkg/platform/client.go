package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is the replay-platform API client. The platform is an optional
// fleet dashboard; when unconfigured every call is a cheap no-op or error,
// and the loop engine runs unaffected.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Config holds platform client configuration
type Config struct {
	URL    string
	APIKey string
}

// Instance status values reported in heartbeats
const (
	StatusOnline  = "online"
	StatusPlaying = "playing"
	StatusError   = "error"
	StatusOffline = "offline"
)

// Capabilities describes what a replay instance supports
type Capabilities struct {
	SourceTypes   []string `json:"source_types"`
	MaxResolution string   `json:"max_resolution"`
	PingPong      bool     `json:"ping_pong"`
}

// RegisterRequest registers a replay instance with the platform
type RegisterRequest struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	URL          string       `json:"url"`
	Hostname     string       `json:"hostname"`
	Version      string       `json:"version"`
	Capabilities Capabilities `json:"capabilities"`
}

// Instance is the platform's view of a registered replay instance
type Instance struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HeartbeatRequest carries periodic instance status
type HeartbeatRequest struct {
	Status       string  `json:"status"`
	Mode         string  `json:"mode,omitempty"`
	FrameCount   int     `json:"frame_count"`
	Capacity     int     `json:"capacity"`
	LoopCount    uint64  `json:"loop_count"`
	SourceFPS    float64 `json:"source_fps,omitempty"`
	ErrorMessage string  `json:"error_message,omitempty"`
}

// New creates a new platform client
func New(cfg Config) *Client {
	return &Client{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// IsConfigured returns true if the client is properly configured
func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

// Register registers this replay instance with the platform
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Instance, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("platform client not configured")
	}

	var instance Instance
	url := fmt.Sprintf("%s/api/v1/instances/register", c.baseURL)
	if err := c.postJSON(ctx, url, req, &instance); err != nil {
		return nil, fmt.Errorf("register instance: %w", err)
	}
	return &instance, nil
}

// Heartbeat sends a periodic status update for a registered instance
func (c *Client) Heartbeat(ctx context.Context, instanceID string, req HeartbeatRequest) error {
	if !c.IsConfigured() {
		return nil // Silent skip if platform not configured
	}

	url := fmt.Sprintf("%s/api/v1/instances/%s/heartbeat", c.baseURL, instanceID)
	if err := c.postJSON(ctx, url, req, nil); err != nil {
		return fmt.Errorf("heartbeat: %w", err)
	}
	return nil
}

// CheckHealth checks if the platform is accessible
func (c *Client) CheckHealth(ctx context.Context) error {
	if !c.IsConfigured() {
		return fmt.Errorf("platform client not configured")
	}

	url := fmt.Sprintf("%s/health", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("platform unhealthy (status %d)", resp.StatusCode)
	}

	return nil
}

// postJSON sends payload to url and decodes the response into out when
// out is non-nil.
func (c *Client) postJSON(ctx context.Context, url string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
