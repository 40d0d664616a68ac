// Package ollama provides a typed HTTP client for the Ollama API.
// The VQA agent uses it to run vision and text generation requests and to
// manage the models it depends on.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client wraps the Ollama HTTP API.
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

// NewClient creates a new Ollama client pointing at baseURL (e.g. "http://ollama:11434").
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 0, // no timeout — generation and pulls can be long
		},
	}
}

// Model is a single entry from GET /api/tags.
type Model struct {
	Name       string    `json:"name"`
	ModifiedAt time.Time `json:"modified_at"`
	Size       int64     `json:"size"`
	Digest     string    `json:"digest"`
}

// GenerateRequest maps to POST /api/generate.
type GenerateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	// Images holds base64-encoded image payloads for multimodal models.
	Images  []string `json:"images,omitempty"`
	Stream  bool     `json:"stream"`
	Options *Options `json:"options,omitempty"`
	// KeepAlive overrides how long Ollama keeps the model in memory (e.g. "10m").
	KeepAlive string `json:"keep_alive,omitempty"`
}

// Options are sampling parameters forwarded to Ollama.
type Options struct {
	Temperature   float64 `json:"temperature,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	TopK          int     `json:"top_k,omitempty"`
	NumCtx        int     `json:"num_ctx,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
	NumPredict    int     `json:"num_predict,omitempty"`
}

// GenerateResponse is the non-streaming response from POST /api/generate.
type GenerateResponse struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
	// Fields present only when Done==true:
	TotalDuration   int64 `json:"total_duration,omitempty"`
	LoadDuration    int64 `json:"load_duration,omitempty"`
	PromptEvalCount int   `json:"prompt_eval_count,omitempty"`
	EvalCount       int   `json:"eval_count,omitempty"`
	EvalDuration    int64 `json:"eval_duration,omitempty"`
}

// PullRequest maps to POST /api/pull.
type PullRequest struct {
	Name   string `json:"name"`
	Stream bool   `json:"stream"`
}

// PullStatus is the final status of a non-streaming POST /api/pull.
type PullStatus struct {
	Status string `json:"status"`
}

// VersionResponse maps to GET /api/version.
type VersionResponse struct {
	Version string `json:"version"`
}

// Version fetches the Ollama server version (also serves as a health check).
func (c *Client) Version(ctx context.Context) (string, error) {
	var v VersionResponse
	if err := c.getJSON(ctx, "/api/version", &v); err != nil {
		return "", err
	}
	return v.Version, nil
}

// ListModels returns all locally available models.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	var resp struct {
		Models []Model `json:"models"`
	}
	if err := c.getJSON(ctx, "/api/tags", &resp); err != nil {
		return nil, err
	}
	return resp.Models, nil
}

// Generate runs a non-streaming generation request and returns the full response.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	req.Stream = false
	var resp GenerateResponse
	if err := c.postJSON(ctx, "/api/generate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Pull downloads a model to the backend. Blocks until the pull completes.
func (c *Client) Pull(ctx context.Context, name string) error {
	var status PullStatus
	if err := c.postJSON(ctx, "/api/pull", PullRequest{Name: name}, &status); err != nil {
		return err
	}
	if status.Status != "success" {
		return fmt.Errorf("pull %s: unexpected status %q", name, status.Status)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	return c.doJSON(httpReq, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return c.doJSON(httpReq, out)
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ollama %d: %s", resp.StatusCode, string(b))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
