// Package groq calls the Groq OpenAI-compatible chat completions API.
package groq

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

const defaultBaseURL = "https://api.groq.com/openai/v1"

// Config configures the Groq client.
type Config struct {
	APIKey      string
	TextModel   string
	VisionModel string
	BaseURL     string
	HTTPClient  *http.Client
}

// Client is a Groq text and vision provider.
type Client struct {
	apiKey      string
	textModel   string
	visionModel string
	baseURL     string
	http        *http.Client
}

func New(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		apiKey:      strings.TrimSpace(cfg.APIKey),
		textModel:   cfg.TextModel,
		visionModel: cfg.VisionModel,
		baseURL:     baseURL,
		http:        client,
	}
}

func (c *Client) Name() string            { return "groq" }
func (c *Client) Configured() bool        { return c.apiKey != "" }
func (c *Client) TextModelName() string   { return c.textModel }
func (c *Client) VisionModelName() string { return c.visionModel }

func (c *Client) Probe(ctx context.Context) domain.ProbeResult {
	if !c.Configured() {
		return domain.ProbeResult{Err: domain.ErrNotConfigured}
	}
	return domain.ProbeResult{Healthy: true, Text: true, Vision: true}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, chatRequest{
		Model:    c.textModel,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
}

func (c *Client) DescribeImage(ctx context.Context, img domain.Image, prompt string) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", img.MIME, base64.StdEncoding.EncodeToString(img.Data))
	return c.complete(ctx, chatRequest{
		Model: c.visionModel,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
			},
		}},
	})
}

func (c *Client) complete(ctx context.Context, payload chatRequest) (string, error) {
	if !c.Configured() {
		return "", domain.ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("groq: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("groq: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("groq: %w: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("groq: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("groq: status %d: %w", resp.StatusCode, domain.ClassifyStatus(resp.StatusCode))
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("groq: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", domain.ErrEmptyResponse
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", domain.ErrEmptyResponse
	}
	return text, nil
}
