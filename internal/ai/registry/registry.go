// Package registry selects a hosted model provider per capability and keeps
// a probe snapshot for the health endpoint.
package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/freshmart/storefront/internal/ai/domain"
	"github.com/freshmart/storefront/internal/ai/gemini"
	"github.com/freshmart/storefront/internal/ai/groq"
	"github.com/freshmart/storefront/internal/ai/ollama"
	"github.com/freshmart/storefront/internal/config"
)

// ProviderHealth is the probe snapshot reported per provider.
type ProviderHealth struct {
	Name        string `json:"name"`
	Configured  bool   `json:"configured"`
	Healthy     bool   `json:"healthy"`
	TextModel   string `json:"textModel"`
	VisionModel string `json:"visionModel"`
	Text        bool   `json:"textAvailable"`
	Vision      bool   `json:"visionAvailable"`
	Error       string `json:"error,omitempty"`
}

type Params struct {
	fx.In

	Log *zap.Logger
}

// Registry routes text and vision calls to the configured provider, falling
// back to any other healthy one.
type Registry struct {
	log       *zap.Logger
	providers []domain.Provider
	byName    map[string]domain.Provider

	textPreferred   string
	visionPreferred string

	uploadDir string
	http      *http.Client

	mu     sync.RWMutex
	health map[string]domain.ProbeResult
}

func New(cfg config.Config, p Params) *Registry {
	providers := []domain.Provider{
		gemini.New(gemini.Config{
			APIKey: cfg.AI.GeminiAPIKey,
			Model:  cfg.AI.GeminiModel,
		}),
		groq.New(groq.Config{
			APIKey:      cfg.AI.GroqAPIKey,
			TextModel:   cfg.AI.GroqTextModel,
			VisionModel: cfg.AI.GroqVisionModel,
		}),
		ollama.New(ollama.Config{
			APIKey:      cfg.AI.OllamaAPIKey,
			Host:        cfg.AI.OllamaHost,
			TextModel:   cfg.AI.OllamaTextModel,
			VisionModel: cfg.AI.OllamaVisionModel,
		}),
	}

	byName := make(map[string]domain.Provider, len(providers))
	for _, provider := range providers {
		byName[provider.Name()] = provider
	}

	return &Registry{
		log:             p.Log.Named("ai.registry"),
		providers:       providers,
		byName:          byName,
		textPreferred:   cfg.AI.TextProvider,
		visionPreferred: cfg.AI.VisionProvider,
		uploadDir:       cfg.UploadDir,
		http:            &http.Client{Timeout: 30 * time.Second},
		health:          map[string]domain.ProbeResult{},
	}
}

// RefreshHealth probes every configured provider and caches the results.
func (r *Registry) RefreshHealth(ctx context.Context) {
	results := make(map[string]domain.ProbeResult, len(r.providers))
	for _, provider := range r.providers {
		result := provider.Probe(ctx)
		results[provider.Name()] = result
		if result.Err != nil {
			r.log.Warn("provider probe failed",
				zap.String("provider", provider.Name()),
				zap.Error(result.Err),
			)
		}
	}

	r.mu.Lock()
	r.health = results
	r.mu.Unlock()
}

// Health returns the cached probe snapshot in registration order.
func (r *Registry) Health() []ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ProviderHealth, 0, len(r.providers))
	for _, provider := range r.providers {
		probe := r.health[provider.Name()]
		entry := ProviderHealth{
			Name:        provider.Name(),
			Configured:  provider.Configured(),
			Healthy:     probe.Healthy,
			TextModel:   provider.TextModelName(),
			VisionModel: provider.VisionModelName(),
			Text:        probe.Text,
			Vision:      probe.Vision,
		}
		if probe.Err != nil {
			entry.Error = probe.Err.Error()
		}
		out = append(out, entry)
	}
	return out
}

// Ready reports whether at least one provider serves each capability.
func (r *Registry) Ready() bool {
	_, textErr := r.pick(func(p domain.ProbeResult) bool { return p.Text })
	_, visionErr := r.pick(func(p domain.ProbeResult) bool { return p.Vision })
	return textErr == nil && visionErr == nil
}

func (r *Registry) pickOrdered(preferred string, capable func(domain.ProbeResult) bool) (domain.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if provider, ok := r.byName[preferred]; ok {
		if probe := r.health[preferred]; provider.Configured() && capable(probe) {
			return provider, nil
		}
	}
	for _, provider := range r.providers {
		if provider.Name() == preferred || !provider.Configured() {
			continue
		}
		if capable(r.health[provider.Name()]) {
			return provider, nil
		}
	}
	return nil, domain.ErrNoProvider
}

func (r *Registry) pick(capable func(domain.ProbeResult) bool) (domain.Provider, error) {
	return r.pickOrdered("", capable)
}

// TextProvider picks the provider serving text generation.
func (r *Registry) TextProvider() (domain.Provider, error) {
	return r.pickOrdered(r.textPreferred, func(p domain.ProbeResult) bool { return p.Text })
}

// VisionProvider picks the provider serving image description.
func (r *Registry) VisionProvider() (domain.Provider, error) {
	return r.pickOrdered(r.visionPreferred, func(p domain.ProbeResult) bool { return p.Vision })
}

// GenerateText routes a prompt to the selected text provider.
func (r *Registry) GenerateText(ctx context.Context, prompt string) (string, error) {
	provider, err := r.TextProvider()
	if err != nil {
		return "", err
	}
	text, err := provider.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", provider.Name(), err)
	}
	return text, nil
}

// DescribeImage routes an image prompt to the selected vision provider.
func (r *Registry) DescribeImage(ctx context.Context, img domain.Image, prompt string) (string, error) {
	provider, err := r.VisionProvider()
	if err != nil {
		return "", err
	}
	text, err := provider.DescribeImage(ctx, img, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", provider.Name(), err)
	}
	return text, nil
}

// FetchImage loads image bytes for a product image URL. Paths under /uploads/
// resolve against the local upload directory, anything else is fetched over
// HTTP.
func (r *Registry) FetchImage(ctx context.Context, imageURL string) (domain.Image, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return domain.Image{}, fmt.Errorf("empty image url")
	}

	if name, ok := strings.CutPrefix(imageURL, "/uploads/"); ok {
		name = filepath.Base(name)
		data, err := os.ReadFile(filepath.Join(r.uploadDir, name))
		if err != nil {
			return domain.Image{}, fmt.Errorf("read upload %s: %w", name, err)
		}
		return domain.Image{Data: data, MIME: http.DetectContentType(data)}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return domain.Image{}, fmt.Errorf("build image request: %w", err)
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return domain.Image{}, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.Image{}, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return domain.Image{}, fmt.Errorf("read image: %w", err)
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" || !strings.HasPrefix(mime, "image/") {
		mime = http.DetectContentType(data)
	}
	return domain.Image{Data: data, MIME: mime}, nil
}
