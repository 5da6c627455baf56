package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/freshmart/storefront/internal/ai/domain"
	"github.com/freshmart/storefront/internal/config"
)

func newRegistry(t *testing.T, ai config.AIConfig, uploadDir string) *Registry {
	t.Helper()
	return New(config.Config{UploadDir: uploadDir, AI: ai}, Params{Log: zap.NewNop()})
}

func TestSelectionPrefersConfiguredProvider(t *testing.T) {
	tags := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]string{{"name": "qwen2.5:3b"}},
		})
	}))
	defer tags.Close()

	reg := newRegistry(t, config.AIConfig{
		TextProvider:    config.ProviderOllama,
		VisionProvider:  config.ProviderGemini,
		GeminiAPIKey:    "g-key",
		OllamaAPIKey:    "o-key",
		OllamaHost:      tags.URL,
		OllamaTextModel: "qwen2.5:3b",
		GeminiModel:     "gemini-2.5-flash-lite",
	}, t.TempDir())

	reg.RefreshHealth(context.Background())

	text, err := reg.TextProvider()
	require.NoError(t, err)
	assert.Equal(t, "ollama", text.Name())

	vision, err := reg.VisionProvider()
	require.NoError(t, err)
	assert.Equal(t, "gemini", vision.Name())

	assert.True(t, reg.Ready())
}

func TestSelectionFallsBackWhenPreferredUnconfigured(t *testing.T) {
	reg := newRegistry(t, config.AIConfig{
		TextProvider:   config.ProviderOllama,
		VisionProvider: config.ProviderOllama,
		GeminiAPIKey:   "g-key",
		GeminiModel:    "gemini-2.5-flash-lite",
	}, t.TempDir())

	reg.RefreshHealth(context.Background())

	text, err := reg.TextProvider()
	require.NoError(t, err)
	assert.Equal(t, "gemini", text.Name())
}

func TestSelectionFailsWithNoProviders(t *testing.T) {
	reg := newRegistry(t, config.AIConfig{
		TextProvider:   config.ProviderGemini,
		VisionProvider: config.ProviderGemini,
	}, t.TempDir())

	reg.RefreshHealth(context.Background())

	_, err := reg.TextProvider()
	require.ErrorIs(t, err, domain.ErrNoProvider)
	assert.False(t, reg.Ready())
}

func TestHealthReportsAllProviders(t *testing.T) {
	reg := newRegistry(t, config.AIConfig{GeminiAPIKey: "g-key"}, t.TempDir())
	reg.RefreshHealth(context.Background())

	health := reg.Health()
	require.Len(t, health, 3)
	assert.Equal(t, "gemini", health[0].Name)
	assert.True(t, health[0].Configured)
	assert.True(t, health[0].Healthy)
	assert.False(t, health[1].Configured)
}

func TestFetchImageReadsLocalUploads(t *testing.T) {
	dir := t.TempDir()
	data := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "apple.png"), data, 0o644))

	reg := newRegistry(t, config.AIConfig{}, dir)

	img, err := reg.FetchImage(context.Background(), "/uploads/apple.png")
	require.NoError(t, err)
	assert.Equal(t, data, img.Data)
	assert.Equal(t, "image/png", img.MIME)
}

func TestFetchImageRejectsPathEscape(t *testing.T) {
	dir := t.TempDir()
	reg := newRegistry(t, config.AIConfig{}, dir)

	_, err := reg.FetchImage(context.Background(), "/uploads/../secrets.txt")
	require.Error(t, err)
}

func TestFetchImageOverHTTP(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(payload)
	}))
	defer server.Close()

	reg := newRegistry(t, config.AIConfig{}, t.TempDir())

	img, err := reg.FetchImage(context.Background(), server.URL+"/apple.jpg")
	require.NoError(t, err)
	assert.Equal(t, payload, img.Data)
	assert.Equal(t, "image/jpeg", img.MIME)
}
