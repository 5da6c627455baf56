// Package gemini calls the Google Generative Language REST API.
package gemini

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

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Config configures the Gemini client.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client is a Gemini text and vision provider.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
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
		apiKey:  strings.TrimSpace(cfg.APIKey),
		model:   cfg.Model,
		baseURL: baseURL,
		http:    client,
	}
}

func (c *Client) Name() string            { return "gemini" }
func (c *Client) Configured() bool        { return c.apiKey != "" }
func (c *Client) TextModelName() string   { return c.model }
func (c *Client) VisionModelName() string { return c.model }

// Probe reports the provider as usable when a key is present. Gemini has no
// cheap health endpoint, so reachability is discovered on first call.
func (c *Client) Probe(ctx context.Context) domain.ProbeResult {
	if !c.Configured() {
		return domain.ProbeResult{Err: domain.ErrNotConfigured}
	}
	return domain.ProbeResult{Healthy: true, Text: true, Vision: true}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, []part{{Text: prompt}})
}

func (c *Client) DescribeImage(ctx context.Context, img domain.Image, prompt string) (string, error) {
	parts := []part{
		{Text: prompt},
		{InlineData: &inlineData{
			MIMEType: img.MIME,
			Data:     base64.StdEncoding.EncodeToString(img.Data),
		}},
	}
	return c.generate(ctx, parts)
}

func (c *Client) generate(ctx context.Context, parts []part) (string, error) {
	if !c.Configured() {
		return "", domain.ErrNotConfigured
	}

	payload, err := json.Marshal(generateRequest{Contents: []content{{Parts: parts}}})
	if err != nil {
		return "", fmt.Errorf("gemini: encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("gemini: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: %w: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("gemini: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini: status %d: %w", resp.StatusCode, domain.ClassifyStatus(resp.StatusCode))
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", domain.ErrEmptyResponse
	}
	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", domain.ErrEmptyResponse
	}
	return text, nil
}
