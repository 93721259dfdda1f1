package credentials

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"

	geminiKeyVar = "GEMINI_API_KEY"
)

// Store keeps selected API keys in a dotenv file so that a key chosen at
// runtime survives restarts and can be loaded like any other .env file.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: strings.TrimSpace(path)}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) GeminiAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderGemini)
}

// Token returns the stored key for provider, or "" when none was selected.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name, err := varName(provider)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	env, err := s.read()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(env[name]), nil
}

func (s *Store) SetGeminiAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("gemini api key is required")
	}
	return s.upsert(ctx, ProviderGemini, key)
}

func (s *Store) upsert(ctx context.Context, provider, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := varName(provider)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	env, err := s.read()
	if err != nil {
		return err
	}
	env[name] = token
	if err := godotenv.Write(env, s.path); err != nil {
		return fmt.Errorf("credentials: write %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) read() (map[string]string, error) {
	if s.path == "" {
		return nil, errors.New("credentials: store path is required")
	}
	env, err := godotenv.Read(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("credentials: read %s: %w", s.path, err)
	}
	return env, nil
}

func varName(provider string) (string, error) {
	switch provider {
	case ProviderGemini:
		return geminiKeyVar, nil
	default:
		return "", fmt.Errorf("credentials: unsupported provider %q", provider)
	}
}
