package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	LogLevel    string

	DataDir   string
	UploadDir string

	SeedOnEmpty bool

	AI AIConfig
}

// AIConfig selects hosted model providers and their credentials.
type AIConfig struct {
	VisionProvider string
	TextProvider   string

	GeminiAPIKey string
	GroqAPIKey   string
	OllamaAPIKey string

	GeminiModel       string
	GroqTextModel     string
	GroqVisionModel   string
	OllamaTextModel   string
	OllamaVisionModel string
	OllamaHost        string
}

const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
	ProviderOllama = "ollama"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "storefront"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		DataDir:     getenv("DATA_DIR", "data"),
		UploadDir:   getenv("UPLOAD_DIR", "public/uploads"),
		SeedOnEmpty: getenvBool("SEED_ON_EMPTY", true),
		AI: AIConfig{
			VisionProvider:    normalizeProvider(getenv("VISION_PROVIDER", ProviderGemini)),
			TextProvider:      normalizeProvider(getenv("TEXT_PROVIDER", ProviderOllama)),
			GeminiAPIKey:      strings.TrimSpace(getenv("GEMINI_API_KEY", "")),
			GroqAPIKey:        strings.TrimSpace(getenv("GROQ_API_KEY", "")),
			OllamaAPIKey:      strings.TrimSpace(getenv("OLLAMA_API_KEY", "")),
			GeminiModel:       getenv("GEMINI_MODEL", "gemini-2.5-flash-lite"),
			GroqTextModel:     getenv("GROQ_TEXT_MODEL", "llama3-8b-8192"),
			GroqVisionModel:   getenv("GROQ_VISION_MODEL", "llama-3.2-11b-vision-preview"),
			OllamaTextModel:   getenv("OLLAMA_CLOUD_TEXT_MODEL", "qwen2.5:3b"),
			OllamaVisionModel: getenv("OLLAMA_CLOUD_VISION_MODEL", "llama3.2-vision:11b"),
			OllamaHost:        getenv("OLLAMA_HOST", "https://api.ollama.cloud"),
		},
	}
}

func normalizeProvider(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case ProviderGemini, ProviderGroq, ProviderOllama:
		return value
	default:
		return ProviderGemini
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}
