package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"time"

	"github.com/libris/libris-server/internal/domain"
)

// GetPolicy retrieves the circulation policy.
// Returns defaults (via domain.NewCirculationPolicy) if none is stored.
func (s *Store) GetPolicy(ctx context.Context) (*domain.CirculationPolicy, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM circulation_policy WHERE key = 'policy'`).Scan(&value)
	if err == sql.ErrNoRows {
		return domain.NewCirculationPolicy(), nil
	}
	if err != nil {
		return nil, err
	}

	var policy domain.CirculationPolicy
	if err := json.Unmarshal([]byte(value), &policy); err != nil {
		return nil, err
	}
	return &policy, nil
}

// HasPolicy reports whether a policy row has been stored.
func (s *Store) HasPolicy(ctx context.Context) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM circulation_policy WHERE key = 'policy'`).Scan(&n)
	return n > 0, err
}

// UpdatePolicy persists the circulation policy.
// Creates the record if it does not exist, or replaces the existing value.
func (s *Store) UpdatePolicy(ctx context.Context, policy *domain.CirculationPolicy) error {
	policy.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(policy)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO circulation_policy (key, value, updated_at) VALUES ('policy', ?, ?)`,
		string(data),
		formatTime(policy.UpdatedAt),
	)
	return err
}
