package config

import (
	"testing"
	"time"
)

var configEnvKeys = []string{
	"LLM_PROVIDER", "LLM_MODEL", "LLM_MAX_TOKENS", "LLM_TEMPERATURE",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "GEMINI_API_KEY", "ANTHROPIC_API_KEY", "ANTHROPIC_BASE_URL",
	"PROVIDER_TIMEOUT", "HTTP_PORT", "FRONTEND_ORIGIN", "MAX_UPLOAD_MB", "LOG_LEVEL", "LOG_DIR",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("OPENAI_API_KEY", "test-key")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Provider != ProviderOpenAI {
		t.Errorf("Expected provider %q, got %q", ProviderOpenAI, cfg.Provider)
	}
	if cfg.APIKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got %q", cfg.APIKey)
	}
	if cfg.BaseURL != "https://generativelanguage.googleapis.com/v1beta/openai" {
		t.Errorf("Unexpected base URL %q", cfg.BaseURL)
	}
	if cfg.Model != "gemini-2.5-flash" {
		t.Errorf("Unexpected model %q", cfg.Model)
	}
	if cfg.MaxTokens != 4000 {
		t.Errorf("Expected 4000 max tokens, got %d", cfg.MaxTokens)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Expected temperature 0.7, got %v", cfg.Temperature)
	}
	if cfg.ProviderTimeout != 90*time.Second {
		t.Errorf("Expected 90s provider timeout, got %s", cfg.ProviderTimeout)
	}
	if cfg.HTTPPort != "8000" {
		t.Errorf("Expected port 8000, got %q", cfg.HTTPPort)
	}
	if cfg.FrontendOrigin != "http://localhost:3000" {
		t.Errorf("Unexpected frontend origin %q", cfg.FrontendOrigin)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("Expected 10MiB upload limit, got %d", cfg.MaxUploadBytes)
	}
}

func TestLoadConfig_MissingAPIKey(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"", "OPENAI_API_KEY environment variable is required"},
		{ProviderOpenAI, "OPENAI_API_KEY environment variable is required"},
		{ProviderGemini, "GEMINI_API_KEY or OPENAI_API_KEY environment variable is required"},
		{ProviderAnthropic, "ANTHROPIC_API_KEY or OPENAI_API_KEY environment variable is required"},
	}

	for _, tc := range tests {
		t.Run("provider="+tc.provider, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv("LLM_PROVIDER", tc.provider)

			_, err := LoadConfig()
			if err == nil {
				t.Fatal("Expected error when the API key is missing")
			}
			if err.Error() != tc.want {
				t.Errorf("Expected error %q, got %q", tc.want, err.Error())
			}
		})
	}
}

func TestLoadConfig_UnknownProvider(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("LLM_PROVIDER", "carrier-pigeon")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}

func TestLoadConfig_ProviderKeys(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		wantKey   string
		wantModel string
	}{
		{
			name:      "anthropic prefers its own key",
			env:       map[string]string{"LLM_PROVIDER": "anthropic", "OPENAI_API_KEY": "shared", "ANTHROPIC_API_KEY": "ant"},
			wantKey:   "ant",
			wantModel: "claude-3-5-sonnet-latest",
		},
		{
			name:      "gemini falls back to shared key",
			env:       map[string]string{"LLM_PROVIDER": "Gemini", "OPENAI_API_KEY": "shared"},
			wantKey:   "shared",
			wantModel: "gemini-2.5-flash",
		},
		{
			name:      "explicit model wins",
			env:       map[string]string{"OPENAI_API_KEY": "shared", "LLM_MODEL": "gpt-4o-mini"},
			wantKey:   "shared",
			wantModel: "gpt-4o-mini",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadConfig()
			if err != nil {
				t.Fatalf("LoadConfig returned error: %v", err)
			}
			if cfg.APIKey != tc.wantKey {
				t.Errorf("Expected key %q, got %q", tc.wantKey, cfg.APIKey)
			}
			if cfg.Model != tc.wantModel {
				t.Errorf("Expected model %q, got %q", tc.wantModel, cfg.Model)
			}
		})
	}
}

func TestLoadConfig_TrimsBaseURL(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.BaseURL != "https://generativelanguage.googleapis.com/v1beta/openai" {
		t.Errorf("Expected trailing slash trimmed, got %q", cfg.BaseURL)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BAD_INT", "abc")
	t.Setenv("TEST_FLOAT", "0.25")
	t.Setenv("TEST_DURATION", "15s")
	t.Setenv("TEST_EMPTY", "")

	if got := getEnvAsInt("TEST_INT", 10); got != 42 {
		t.Errorf("Expected 42, got %d", got)
	}
	if got := getEnvAsInt("TEST_BAD_INT", 10); got != 10 {
		t.Errorf("Expected default 10 for non-numeric, got %d", got)
	}
	if got := getEnvAsFloat("TEST_FLOAT", 1); got != 0.25 {
		t.Errorf("Expected 0.25, got %v", got)
	}
	if got := getEnvAsDuration("TEST_DURATION", time.Minute); got != 15*time.Second {
		t.Errorf("Expected 15s, got %s", got)
	}
	if got := getEnv("TEST_EMPTY", "default"); got != "default" {
		t.Errorf("Expected default for empty value, got %q", got)
	}
}
