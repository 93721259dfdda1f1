// Command apikey stores the Gemini API key used by veostudio and studio-web.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"veostudio/internal/infra"
	"veostudio/internal/infra/credentials"
)

func main() {
	_ = godotenv.Load()

	var (
		keyFlag  string
		fileFlag string
	)
	flag.StringVar(&keyFlag, "key", "", "Gemini API key (read from stdin when empty)")
	flag.StringVar(&fileFlag, "file", "", "Credentials file (defaults to CREDENTIALS_FILE)")
	flag.Parse()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	path := strings.TrimSpace(fileFlag)
	if path == "" {
		path = cfg.CredentialsFile
	}

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		fmt.Fprint(os.Stderr, "Gemini API key: ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		key = strings.TrimSpace(line)
	}
	if key == "" {
		fmt.Fprintln(os.Stderr, "GEMINI API key is required via -key or stdin")
		os.Exit(1)
	}

	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "apikey").Logger()
	store := credentials.NewStore(path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.SetGeminiAPIKey(ctx, key); err != nil {
		logger.Error().Err(err).Msg("apikey: persist")
		os.Exit(1)
	}

	fmt.Printf("GEMINI API key stored in %s\n", store.Path())
}
