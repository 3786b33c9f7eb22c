package repo

import (
	"context"
	"fmt"

	"filmflow/internal/domain"
	"filmflow/internal/infra"
	"filmflow/internal/sqlinline"
)

// UsageStorePG implements domain.UsageStore on the usage_counters table.
// Every mutation is a single upsert so concurrent increments never race.
type UsageStorePG struct {
	sql infra.SQLExecutor
}

// NewUsageStore creates a PostgreSQL backed usage store.
func NewUsageStore(sql infra.SQLExecutor) *UsageStorePG {
	return &UsageStorePG{sql: sql}
}

func (s *UsageStorePG) Get(ctx context.Context, key domain.UsageKey) (int64, error) {
	var count int64
	err := s.sql.QueryRow(ctx, sqlinline.QSelectUsageCount, key.UserID, string(key.Service), key.Period).Scan(&count)
	if infra.IsNoRows(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("select usage: %w", err)
	}
	return count, nil
}

func (s *UsageStorePG) Increment(ctx context.Context, key domain.UsageKey, amount int64) (int64, error) {
	var count int64
	err := s.sql.QueryRow(ctx, sqlinline.QIncrementUsage, key.UserID, string(key.Service), key.Period, amount).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment usage: %w", err)
	}
	return count, nil
}

func (s *UsageStorePG) IncrementWithin(ctx context.Context, key domain.UsageKey, amount, limit int64) (int64, bool, error) {
	var count int64
	err := s.sql.QueryRow(ctx, sqlinline.QIncrementUsageWithin, key.UserID, string(key.Service), key.Period, amount, limit).Scan(&count)
	if err == nil {
		return count, true, nil
	}
	if !infra.IsNoRows(err) {
		return 0, false, fmt.Errorf("increment usage within limit: %w", err)
	}
	current, err := s.Get(ctx, key)
	if err != nil {
		return 0, false, err
	}
	return current, false, nil
}

var _ domain.UsageStore = (*UsageStorePG)(nil)
