package domain

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotConfigured indicates the provider has no API key.
	ErrNotConfigured = errors.New("provider not configured")
	// ErrInvalidKey indicates the provider rejected the API key.
	ErrInvalidKey = errors.New("invalid api key")
	// ErrQuotaExceeded indicates the provider throttled or exhausted quota.
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrModelNotFound indicates the requested model does not exist on the provider.
	ErrModelNotFound = errors.New("model not found")
	// ErrUnavailable indicates the provider could not be reached or failed upstream.
	ErrUnavailable = errors.New("provider unavailable")
	// ErrEmptyResponse indicates the provider returned no usable content.
	ErrEmptyResponse = errors.New("empty model response")
	// ErrNoProvider indicates no healthy provider serves the requested capability.
	ErrNoProvider = errors.New("no provider available")
)

// Image carries raw image bytes plus their MIME type for vision prompts.
type Image struct {
	Data []byte
	MIME string
}

// TextModel generates free-form text for a prompt.
type TextModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// VisionModel describes an image guided by a prompt.
type VisionModel interface {
	DescribeImage(ctx context.Context, img Image, prompt string) (string, error)
}

// ProbeResult reports provider reachability per capability.
type ProbeResult struct {
	Healthy bool
	Text    bool
	Vision  bool
	Err     error
}

// Provider is a hosted model backend.
type Provider interface {
	TextModel
	VisionModel

	Name() string
	Configured() bool
	TextModelName() string
	VisionModelName() string
	Probe(ctx context.Context) ProbeResult
}

// ClassifyStatus maps a provider HTTP status to a sentinel error.
func ClassifyStatus(status int) error {
	switch {
	case status == 401 || status == 403:
		return ErrInvalidKey
	case status == 404:
		return ErrModelNotFound
	case status == 429:
		return ErrQuotaExceeded
	case status >= 500:
		return ErrUnavailable
	default:
		return ErrUnavailable
	}
}

// CleanModelJSON strips markdown fences and surrounding prose from a model
// reply, returning the JSON object substring when one is present.
func CleanModelJSON(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		return text
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}
