package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv            string
	Port              string
	GeminiAPIKey      string
	GeminiModel       string
	GeminiBaseURL     string
	CredentialsFile   string
	OutputDir         string
	PollInterval      time.Duration
	PollMaxAttempts   int
	GenerationTimeout time.Duration
	NumberOfVideos    int
	SourceImageMIME   string
	DefaultDuration   int
	DefaultAspect     string
	HTTPReadTimeout   time.Duration
	HTTPWriteTimeout  time.Duration
	HTTPIdleTimeout   time.Duration
	RateLimitPerMin   int
	CORSOrigins       []string
	TrustProxyHeaders bool
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		GeminiAPIKey:      strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:       getEnv("GEMINI_MODEL", "veo-2.0-generate-001"),
		GeminiBaseURL:     os.Getenv("GEMINI_BASE_URL"),
		CredentialsFile:   getEnv("CREDENTIALS_FILE", ".env.credentials"),
		OutputDir:         getEnv("OUTPUT_DIR", "./downloads"),
		PollInterval:      time.Millisecond * time.Duration(getEnvInt("POLL_INTERVAL_MS", 1000)),
		PollMaxAttempts:   getEnvInt("POLL_MAX_ATTEMPTS", 0),
		GenerationTimeout: time.Second * time.Duration(getEnvInt("GENERATION_TIMEOUT_SECONDS", 0)),
		NumberOfVideos:    getEnvInt("NUMBER_OF_VIDEOS", 1),
		SourceImageMIME:   getEnv("SOURCE_IMAGE_MIME", "image/png"),
		DefaultDuration:   getEnvInt("DEFAULT_DURATION_SECONDS", 5),
		DefaultAspect:     getEnv("DEFAULT_ASPECT_RATIO", "1:1"),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		CORSOrigins:       splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),
	}

	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL_MS must be positive")
	}
	if cfg.PollMaxAttempts < 0 {
		return nil, fmt.Errorf("POLL_MAX_ATTEMPTS must not be negative")
	}
	if cfg.GenerationTimeout < 0 {
		return nil, fmt.Errorf("GENERATION_TIMEOUT_SECONDS must not be negative")
	}
	if cfg.NumberOfVideos <= 0 {
		return nil, fmt.Errorf("NUMBER_OF_VIDEOS must be positive")
	}
	if cfg.RateLimitPerMin < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
