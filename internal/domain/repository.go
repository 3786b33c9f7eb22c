package domain

import "context"

// UsageStore persists usage counters. Increment operations must be atomic per
// key: concurrent callers never lose an increment.
type UsageStore interface {
	// Get returns the counter value, or 0 when the counter does not exist.
	Get(ctx context.Context, key UsageKey) (int64, error)
	// Increment creates the counter seeded at amount or adds amount to it,
	// returning the new value.
	Increment(ctx context.Context, key UsageKey, amount int64) (int64, error)
	// IncrementWithin adds amount only if the result stays <= limit. It
	// returns the counter value after the call and whether it was applied.
	IncrementWithin(ctx context.Context, key UsageKey, amount, limit int64) (int64, bool, error)
}

// GenerationRepository defines persistence for generation jobs.
type GenerationRepository interface {
	Create(ctx context.Context, g *Generation) error
	GetByID(ctx context.Context, id string) (*Generation, error)
	ListByUser(ctx context.Context, userID string, typ GenerationType, limit int) ([]Generation, error)
	// UpdateStatus applies change only while the job is still in status from.
	// It returns ErrNotFound when no row matched id and from.
	UpdateStatus(ctx context.Context, id string, from GenerationStatus, change StatusChange) (*Generation, error)
	// ClaimPending moves the oldest PENDING job to PROCESSING and returns it,
	// or ErrNotFound when the queue is empty.
	ClaimPending(ctx context.Context) (*Generation, error)
}

// SceneRepository reads scenes and actors owned by a user.
type SceneRepository interface {
	GetForUser(ctx context.Context, sceneID, userID string) (*Scene, error)
	ActorImageURLs(ctx context.Context, userID string, actorIDs []string) ([]string, error)
}
