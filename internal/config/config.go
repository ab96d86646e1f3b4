package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"

	defaultBaseURL        = "https://generativelanguage.googleapis.com/v1beta/openai"
	defaultModel          = "gemini-2.5-flash"
	defaultAnthropicModel = "claude-3-5-sonnet-latest"
)

type Config struct {
	Provider        string
	APIKey          string
	BaseURL         string
	Model           string
	MaxTokens       int
	Temperature     float64
	ProviderTimeout time.Duration

	HTTPPort       string
	FrontendOrigin string
	MaxUploadBytes int64

	LogLevel string
	LogDir   string
}

// LoadConfig reads the process environment, after loading a .env file when
// one exists. A missing API key is an error: the server must not start
// without one.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	provider := strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI))

	cfg := &Config{
		Provider:        provider,
		APIKey:          apiKeyFor(provider),
		Model:           getEnv("LLM_MODEL", defaultModelFor(provider)),
		MaxTokens:       getEnvAsInt("LLM_MAX_TOKENS", 4000),
		Temperature:     getEnvAsFloat("LLM_TEMPERATURE", 0.7),
		ProviderTimeout: getEnvAsDuration("PROVIDER_TIMEOUT", 90*time.Second),
		HTTPPort:        getEnv("HTTP_PORT", "8000"),
		FrontendOrigin:  getEnv("FRONTEND_ORIGIN", "http://localhost:3000"),
		MaxUploadBytes:  int64(getEnvAsInt("MAX_UPLOAD_MB", 10)) << 20,
		LogLevel:        strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
		LogDir:          getEnv("LOG_DIR", "logs"),
	}

	switch provider {
	case ProviderOpenAI:
		cfg.BaseURL = strings.TrimRight(getEnv("OPENAI_BASE_URL", defaultBaseURL), "/")
	case ProviderAnthropic:
		cfg.BaseURL = getEnv("ANTHROPIC_BASE_URL", "")
	case ProviderGemini:
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", provider)
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s environment variable is required", apiKeyVarsFor(provider))
	}
	if cfg.MaxTokens <= 0 {
		return nil, fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", cfg.MaxTokens)
	}

	return cfg, nil
}

// apiKeyVarsFor names the variables apiKeyFor reads for provider.
func apiKeyVarsFor(provider string) string {
	switch provider {
	case ProviderGemini:
		return "GEMINI_API_KEY or OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY or OPENAI_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// apiKeyFor prefers the provider's own variable and falls back to
// OPENAI_API_KEY, which holds a Gemini key in the default setup.
func apiKeyFor(provider string) string {
	switch provider {
	case ProviderGemini:
		if key := getEnv("GEMINI_API_KEY", ""); key != "" {
			return key
		}
	case ProviderAnthropic:
		if key := getEnv("ANTHROPIC_API_KEY", ""); key != "" {
			return key
		}
	}
	return getEnv("OPENAI_API_KEY", "")
}

func defaultModelFor(provider string) string {
	if provider == ProviderAnthropic {
		return defaultAnthropicModel
	}
	return defaultModel
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
