// Package ollama calls the Ollama Cloud generate API.
package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/freshmart/storefront/internal/ai/domain"
)

const defaultHost = "https://api.ollama.cloud"

// Config configures the Ollama Cloud client.
type Config struct {
	APIKey      string
	Host        string
	TextModel   string
	VisionModel string
	HTTPClient  *http.Client
}

// Client is an Ollama Cloud text and vision provider.
type Client struct {
	apiKey      string
	host        string
	textModel   string
	visionModel string
	http        *http.Client
}

func New(cfg Config) *Client {
	host := strings.TrimRight(cfg.Host, "/")
	if host == "" {
		host = defaultHost
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &Client{
		apiKey:      strings.TrimSpace(cfg.APIKey),
		host:        host,
		textModel:   cfg.TextModel,
		visionModel: cfg.VisionModel,
		http:        client,
	}
}

func (c *Client) Name() string            { return "ollama" }
func (c *Client) Configured() bool        { return c.apiKey != "" }
func (c *Client) TextModelName() string   { return c.textModel }
func (c *Client) VisionModelName() string { return c.visionModel }

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Stream bool     `json:"stream"`
	Images []string `json:"images,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Probe lists installed models and reports which configured models are present.
func (c *Client) Probe(ctx context.Context) domain.ProbeResult {
	if !c.Configured() {
		return domain.ProbeResult{Err: domain.ErrNotConfigured}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/tags", nil)
	if err != nil {
		return domain.ProbeResult{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.ProbeResult{Err: fmt.Errorf("%w: %v", domain.ErrUnavailable, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ProbeResult{Err: domain.ClassifyStatus(resp.StatusCode)}
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return domain.ProbeResult{Err: fmt.Errorf("decode tags: %w", err)}
	}

	result := domain.ProbeResult{Healthy: true}
	for _, model := range tags.Models {
		if matchesModel(model.Name, c.textModel) {
			result.Text = true
		}
		if matchesModel(model.Name, c.visionModel) {
			result.Vision = true
		}
	}
	return result
}

// matchesModel treats a missing tag as ":latest", so "qwen2.5:3b" matches
// itself and "qwen2.5" matches "qwen2.5:latest".
func matchesModel(installed, wanted string) bool {
	if installed == wanted {
		return true
	}
	return !strings.Contains(wanted, ":") && installed == wanted+":latest"
}

func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, generateRequest{
		Model:  c.textModel,
		Prompt: prompt,
	})
}

func (c *Client) DescribeImage(ctx context.Context, img domain.Image, prompt string) (string, error) {
	return c.generate(ctx, generateRequest{
		Model:  c.visionModel,
		Prompt: prompt,
		Images: []string{base64.StdEncoding.EncodeToString(img.Data)},
	})
}

func (c *Client) generate(ctx context.Context, payload generateRequest) (string, error) {
	if !c.Configured() {
		return "", domain.ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ollama: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: %w: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("ollama: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama: status %d: %w", resp.StatusCode, domain.ClassifyStatus(resp.StatusCode))
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("ollama: decode response: %w", err)
	}
	text := strings.TrimSpace(out.Response)
	if text == "" {
		return "", domain.ErrEmptyResponse
	}
	return text, nil
}
