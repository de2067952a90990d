package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"adstudio/internal/infra"
	"adstudio/internal/infra/credentials"
)

var envKeys = map[string]string{
	credentials.ProviderOpenAI:     "OPENAI_API_KEY",
	credentials.ProviderGemini:     "GEMINI_API_KEY",
	credentials.ProviderElevenLabs: "ELEVENLABS_API_KEY",
	credentials.ProviderPexels:     "PEXELS_API_KEY",
}

func main() {
	_ = godotenv.Load()

	var (
		keyFlag      string
		providerFlag string
		gpuFlag      string
	)
	flag.StringVar(&keyFlag, "key", "", "API key for the selected provider (falls back to environment)")
	flag.StringVar(&providerFlag, "provider", "", "provider to configure (openai, gemini, elevenlabs, pexels)")
	flag.StringVar(&gpuFlag, "gpu", "", "set the hardware encoder flag (true or false)")
	flag.Parse()

	provider := strings.TrimSpace(strings.ToLower(providerFlag))
	if provider == "" && gpuFlag == "" {
		fmt.Fprintln(os.Stderr, "either -provider or -gpu is required")
		os.Exit(1)
	}
	if _, ok := envKeys[provider]; provider != "" && !ok {
		fmt.Fprintf(os.Stderr, "unsupported provider %q\n", providerFlag)
		os.Exit(1)
	}

	key := strings.TrimSpace(keyFlag)
	if provider != "" && key == "" {
		key = strings.TrimSpace(os.Getenv(envKeys[provider]))
		if key == "" {
			fmt.Fprintf(os.Stderr, "%s is required via -key or environment\n", envKeys[provider])
			os.Exit(1)
		}
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "settingskey").Logger()
	runner := infra.NewSQLRunner(pool, logger)
	if err := infra.EnsureSchema(ctx, runner); err != nil {
		fmt.Fprintf(os.Stderr, "failed to ensure schema: %v\n", err)
		os.Exit(1)
	}
	store := credentials.NewStore(runner)

	if provider != "" {
		if err := store.SetToken(ctx, provider, key); err != nil {
			fmt.Fprintf(os.Stderr, "failed to persist %s api key: %v\n", provider, err)
			os.Exit(1)
		}
		fmt.Printf("%s API key stored successfully\n", strings.ToUpper(provider))
	}

	if gpuFlag != "" {
		enabled, err := strconv.ParseBool(gpuFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -gpu value %q\n", gpuFlag)
			os.Exit(1)
		}
		if err := store.SetHardwareEncoder(ctx, enabled); err != nil {
			fmt.Fprintf(os.Stderr, "failed to persist encoder flag: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("hardware encoder set to %t\n", enabled)
	}
}
