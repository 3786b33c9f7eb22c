package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"filmflow/internal/domain"
	"filmflow/internal/infra"
	"filmflow/internal/middleware"
	"filmflow/internal/quota"
	"filmflow/internal/adapter/repo"
)

// userplan mints a development bearer token for a user on a given plan and
// can print that user's current quota usage.
func main() {
	_ = godotenv.Load()

	var (
		idFlag     string
		planFlag   string
		localeFlag string
		ttlFlag    time.Duration
		usageFlag  bool
	)

	flag.StringVar(&idFlag, "id", "", "user ID (UUID); a random one is generated when empty")
	flag.StringVar(&planFlag, "plan", "free", "plan to embed (free, indie, pro, studio)")
	flag.StringVar(&localeFlag, "locale", "", "locale claim (sk, cs, en)")
	flag.DurationVar(&ttlFlag, "ttl", 24*time.Hour, "token lifetime")
	flag.BoolVar(&usageFlag, "usage", false, "print current usage for the user from the database")
	flag.Parse()

	userID := strings.TrimSpace(idFlag)
	if userID == "" {
		userID = uuid.NewString()
	} else if _, err := uuid.Parse(userID); err != nil {
		exitWithError(fmt.Errorf("invalid -id: %w", err))
	}

	plan := domain.UserPlan(strings.ToUpper(strings.TrimSpace(planFlag)))
	if domain.ParseUserPlan(string(plan)) != plan {
		exitWithError(fmt.Errorf("unsupported plan %q", planFlag))
	}
	if ttlFlag <= 0 {
		exitWithError(errors.New("-ttl must be positive"))
	}

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		exitWithError(errors.New("JWT_SECRET is required"))
	}

	token, err := middleware.SignJWT(secret, middleware.NewUserClaims(userID, plan, strings.TrimSpace(localeFlag), ttlFlag))
	if err != nil {
		exitWithError(fmt.Errorf("failed to sign token: %w", err))
	}

	fmt.Printf("user=%s plan=%s expires=%s\n", userID, plan, time.Now().Add(ttlFlag).UTC().Format(time.RFC3339))
	fmt.Println(token)

	if !usageFlag {
		return
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required for -usage"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli", "userplan")
	tracker := quota.NewTracker(repo.NewUsageStore(infra.NewSQLRunner(pool, logger)))

	usage, err := tracker.AllUsage(ctx, userID)
	if err != nil {
		exitWithError(fmt.Errorf("failed to load usage: %w", err))
	}
	for _, u := range usage {
		fmt.Printf("%-12s %d/%d %s (period %s, resets %s)\n",
			u.Service, u.Used, u.Limit, u.Unit, u.Period, u.ResetAt.Format(time.RFC3339))
	}
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
