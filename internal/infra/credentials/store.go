// Package credentials keeps provider API keys in the integration_tokens
// table so they can be rotated without a redeploy.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"filmflow/internal/infra"
	"filmflow/internal/sqlinline"
)

const (
	ProviderModal      = "modal"
	ProviderHiggsfield = "higgsfield"
	ProviderElevenLabs = "elevenlabs"
	ProviderSuno       = "suno"
)

// Providers lists every provider a key can be stored for.
var Providers = []string{ProviderModal, ProviderHiggsfield, ProviderElevenLabs, ProviderSuno}

var ErrUnknownProvider = errors.New("unknown provider")

// Entry describes a stored key without revealing it.
type Entry struct {
	Provider  string
	UpdatedAt time.Time
}

type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Token returns the key stored for provider, or "" when none is set.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	provider, err := normalizeProvider(provider)
	if err != nil {
		return "", err
	}
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("select %s token: %w", provider, err)
	}
	return strings.TrimSpace(token), nil
}

// Resolve prefers an explicitly configured key over the stored one.
func (s *Store) Resolve(ctx context.Context, provider, configured string) (string, error) {
	if v := strings.TrimSpace(configured); v != "" {
		return v, nil
	}
	return s.Token(ctx, provider)
}

// Set stores key for provider, replacing any previous value.
func (s *Store) Set(ctx context.Context, provider, key string, props map[string]any) error {
	provider, err := normalizeProvider(provider)
	if err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%s api key is required", provider)
	}
	if props == nil {
		props = map[string]any{}
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return err
	}
	if _, err := s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, key, raw); err != nil {
		return fmt.Errorf("upsert %s token: %w", provider, err)
	}
	return nil
}

// List returns the providers that currently have a key.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.sql.Query(ctx, sqlinline.QListIntegrationProviders)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Provider, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan provider: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func normalizeProvider(provider string) (string, error) {
	p := strings.ToLower(strings.TrimSpace(provider))
	for _, known := range Providers {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
}
