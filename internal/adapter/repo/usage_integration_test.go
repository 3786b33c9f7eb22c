//go:build integration

package repo

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmflow/internal/domain"
	"filmflow/internal/infra"
)

const concurrentIncrements = 100

func newTestRunner(t *testing.T) *infra.SQLRunner {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	runner := infra.NewSQLRunner(pool, zerolog.Nop())
	require.NoError(t, EnsureSchema(ctx, runner))
	return runner
}

func newTestRedis(t *testing.T) *goredis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func uniqueKey(t *testing.T, service domain.QuotaService) domain.UsageKey {
	return domain.UsageKey{
		UserID:  "it-" + t.Name() + "-" + time.Now().Format("150405.000000000"),
		Service: service,
		Period:  time.Now().UTC().Format("2006-01-02"),
	}
}

func stores(t *testing.T) map[string]domain.UsageStore {
	return map[string]domain.UsageStore{
		"postgres": NewUsageStore(newTestRunner(t)),
		"redis":    NewUsageStoreRedis(newTestRedis(t), WithKeyPrefix("test:"+t.Name()+":")),
	}
}

func TestUsageStoreConcurrentIncrement(t *testing.T) {
	for name, store := range stores(t) {
		store := store
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := uniqueKey(t, domain.ServiceElevenLabs)

			var wg sync.WaitGroup
			wg.Add(concurrentIncrements)
			for i := 0; i < concurrentIncrements; i++ {
				go func() {
					defer wg.Done()
					_, err := store.Increment(ctx, key, 1)
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			n, err := store.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, int64(concurrentIncrements), n)
		})
	}
}

func TestUsageStoreIncrementWithinCaps(t *testing.T) {
	for name, store := range stores(t) {
		store := store
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := uniqueKey(t, domain.ServiceHiggsfield)

			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				granted int
			)
			wg.Add(concurrentIncrements)
			for i := 0; i < concurrentIncrements; i++ {
				go func() {
					defer wg.Done()
					_, ok, err := store.IncrementWithin(ctx, key, 1, 5)
					assert.NoError(t, err)
					if ok {
						mu.Lock()
						granted++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, 5, granted)
			n, err := store.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, int64(5), n)
		})
	}
}
