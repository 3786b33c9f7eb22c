package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"filmflow/internal/infra"
	"filmflow/internal/infra/credentials"
)

func main() {
	_ = godotenv.Load()

	var (
		keyFlag      string
		providerFlag string
		listFlag     bool
	)
	flag.StringVar(&keyFlag, "key", "", "API key for the selected provider (falls back to <PROVIDER>_API_KEY)")
	flag.StringVar(&providerFlag, "provider", credentials.ProviderModal, "provider to configure: "+strings.Join(credentials.Providers, ", "))
	flag.BoolVar(&listFlag, "list", false, "list providers with a stored key and exit")
	flag.Parse()

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

	provider := strings.TrimSpace(strings.ToLower(providerFlag))
	logger := infra.NewLogger("cli", "providerkey").With().Str("provider", provider).Logger()
	store := credentials.NewStore(infra.NewSQLRunner(pool, logger))

	if listFlag {
		entries, err := store.List(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to list providers: %v\n", err)
			os.Exit(1)
		}
		for _, e := range entries {
			fmt.Printf("%-12s updated %s\n", e.Provider, e.UpdatedAt.Format(time.RFC3339))
		}
		return
	}

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		key = strings.TrimSpace(os.Getenv(strings.ToUpper(provider) + "_API_KEY"))
	}
	if key == "" {
		fmt.Fprintf(os.Stderr, "%s API key is required via -key or %s_API_KEY\n", provider, strings.ToUpper(provider))
		os.Exit(1)
	}

	if err := store.Set(ctx, provider, key, map[string]any{"source": "providerkey"}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist %s api key: %v\n", provider, err)
		os.Exit(1)
	}
	fmt.Printf("%s API key stored successfully\n", strings.ToUpper(provider))
}
