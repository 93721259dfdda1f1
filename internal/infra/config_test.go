package infra

import (
	"testing"
	"time"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "PORT", "GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL",
		"CREDENTIALS_FILE", "OUTPUT_DIR", "POLL_INTERVAL_MS", "POLL_MAX_ATTEMPTS",
		"GENERATION_TIMEOUT_SECONDS", "NUMBER_OF_VIDEOS", "SOURCE_IMAGE_MIME",
		"DEFAULT_DURATION_SECONDS", "DEFAULT_ASPECT_RATIO", "RATE_LIMIT_PER_MINUTE",
		"CORS_ALLOWED_ORIGINS", "TRUST_PROXY_HEADERS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.GeminiModel != "veo-2.0-generate-001" {
		t.Fatalf("GeminiModel mismatch: got %q", cfg.GeminiModel)
	}
	if cfg.PollInterval != time.Second {
		t.Fatalf("PollInterval mismatch: got %s want 1s", cfg.PollInterval)
	}
	if cfg.PollMaxAttempts != 0 || cfg.GenerationTimeout != 0 {
		t.Fatalf("poll loop must be unbounded by default: attempts=%d timeout=%s", cfg.PollMaxAttempts, cfg.GenerationTimeout)
	}
	if cfg.DefaultDuration != 5 || cfg.DefaultAspect != "1:1" {
		t.Fatalf("form defaults mismatch: %d %q", cfg.DefaultDuration, cfg.DefaultAspect)
	}
	if cfg.SourceImageMIME != "image/png" {
		t.Fatalf("SourceImageMIME mismatch: got %q", cfg.SourceImageMIME)
	}
	if cfg.OutputDir != "./downloads" {
		t.Fatalf("OutputDir mismatch: got %q", cfg.OutputDir)
	}
	if cfg.RateLimitPerMin != 30 || len(cfg.CORSOrigins) != 0 || cfg.TrustProxyHeaders {
		t.Fatalf("web defaults mismatch: rate=%d cors=%v proxy=%v", cfg.RateLimitPerMin, cfg.CORSOrigins, cfg.TrustProxyHeaders)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("GEMINI_API_KEY", " key-123 ")
	t.Setenv("POLL_INTERVAL_MS", "250")
	t.Setenv("POLL_MAX_ATTEMPTS", "40")
	t.Setenv("GENERATION_TIMEOUT_SECONDS", "600")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, ,https://studio.example")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.GeminiAPIKey != "key-123" {
		t.Fatalf("GeminiAPIKey mismatch: got %q", cfg.GeminiAPIKey)
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Fatalf("PollInterval mismatch: got %s", cfg.PollInterval)
	}
	if cfg.PollMaxAttempts != 40 {
		t.Fatalf("PollMaxAttempts mismatch: got %d", cfg.PollMaxAttempts)
	}
	if cfg.GenerationTimeout != 10*time.Minute {
		t.Fatalf("GenerationTimeout mismatch: got %s", cfg.GenerationTimeout)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://studio.example" {
		t.Fatalf("CORSOrigins mismatch: got %v", cfg.CORSOrigins)
	}
	if !cfg.TrustProxyHeaders {
		t.Fatal("TrustProxyHeaders must be enabled")
	}
}

func TestLoadConfigRejectsInvalidPollSettings(t *testing.T) {
	tests := map[string]string{
		"POLL_INTERVAL_MS":      "0",
		"POLL_MAX_ATTEMPTS":     "-1",
		"NUMBER_OF_VIDEOS":      "0",
		"RATE_LIMIT_PER_MINUTE": "-5",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv(key, value)
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}
