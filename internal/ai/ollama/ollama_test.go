package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshmart/storefront/internal/ai/domain"
)

func TestGenerateTextSendsBearerAndModel(t *testing.T) {
	var gotAuth string
	var gotBody generateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/generate", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(generateResponse{Response: "hello back"})
	}))
	defer server.Close()

	client := New(Config{APIKey: "key-1", Host: server.URL, TextModel: "qwen2.5:3b"})

	text, err := client.GenerateText(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello back", text)
	assert.Equal(t, "Bearer key-1", gotAuth)
	assert.Equal(t, "qwen2.5:3b", gotBody.Model)
	assert.False(t, gotBody.Stream)
}

func TestGenerateTextClassifiesAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(Config{APIKey: "bad", Host: server.URL, TextModel: "qwen2.5:3b"})

	_, err := client.GenerateText(context.Background(), "hello")
	require.ErrorIs(t, err, domain.ErrInvalidKey)
}

func TestGenerateRequiresKey(t *testing.T) {
	client := New(Config{Host: "http://localhost:11434", TextModel: "qwen2.5:3b"})

	_, err := client.GenerateText(context.Background(), "hello")
	require.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestProbeChecksInstalledModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]string{
				{"name": "qwen2.5:3b"},
			},
		})
	}))
	defer server.Close()

	client := New(Config{
		APIKey:      "key-1",
		Host:        server.URL,
		TextModel:   "qwen2.5:3b",
		VisionModel: "llama3.2-vision:11b",
	})

	result := client.Probe(context.Background())
	require.NoError(t, result.Err)
	assert.True(t, result.Healthy)
	assert.True(t, result.Text)
	assert.False(t, result.Vision)
}

func TestProbeUnreachableHost(t *testing.T) {
	client := New(Config{APIKey: "key-1", Host: "http://127.0.0.1:1", TextModel: "qwen2.5:3b"})

	result := client.Probe(context.Background())
	require.ErrorIs(t, result.Err, domain.ErrUnavailable)
	assert.False(t, result.Healthy)
}

func TestMatchesModelDefaultsTag(t *testing.T) {
	assert.True(t, matchesModel("qwen2.5:latest", "qwen2.5"))
	assert.True(t, matchesModel("qwen2.5:3b", "qwen2.5:3b"))
	assert.False(t, matchesModel("qwen2.5:3b", "qwen2.5"))
}
