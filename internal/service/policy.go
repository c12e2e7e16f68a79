package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/libris/libris-server/internal/config"
	"github.com/libris/libris-server/internal/domain"
	"github.com/libris/libris-server/internal/errors"
	"github.com/libris/libris-server/internal/store/sqlite"
)

// PolicyService manages the circulation policy tunables.
type PolicyService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewPolicyService creates a new policy service.
func NewPolicyService(store *sqlite.Store, logger *slog.Logger) *PolicyService {
	return &PolicyService{
		store:  store,
		logger: logger,
	}
}

// EnsureDefaults seeds the stored policy from the configured values if
// no policy row exists yet. An already stored policy is left alone, so
// config changes never silently override librarian edits.
func (s *PolicyService) EnsureDefaults(ctx context.Context, cfg config.CirculationConfig) error {
	stored, err := s.store.HasPolicy(ctx)
	if err != nil {
		return fmt.Errorf("check stored policy: %w", err)
	}
	if stored {
		return nil
	}

	policy := &domain.CirculationPolicy{
		MaxLoanDays:    cfg.MaxLoanDays,
		MaxOpenLoans:   cfg.MaxOpenLoans,
		MinBorrowerAge: cfg.MinBorrowerAge,
	}
	if err := policy.Validate(); err != nil {
		return errors.ErrInvalidPolicyValue.WithCause(err)
	}
	if err := s.store.UpdatePolicy(ctx, policy); err != nil {
		return fmt.Errorf("store policy defaults: %w", err)
	}

	s.logger.Info("circulation policy seeded",
		"max_loan_days", policy.MaxLoanDays,
		"max_open_loans", policy.MaxOpenLoans,
		"min_borrower_age", policy.MinBorrowerAge,
	)

	return nil
}

// Get returns the current circulation policy.
func (s *PolicyService) Get(ctx context.Context) (*domain.CirculationPolicy, error) {
	return s.store.GetPolicy(ctx)
}

// MaxLoanDays returns the loan duration tunable.
func (s *PolicyService) MaxLoanDays(ctx context.Context) (int, error) {
	policy, err := s.store.GetPolicy(ctx)
	if err != nil {
		return 0, err
	}
	return policy.MaxLoanDays, nil
}

// MaxOpenLoans returns the open loan limit tunable.
func (s *PolicyService) MaxOpenLoans(ctx context.Context) (int, error) {
	policy, err := s.store.GetPolicy(ctx)
	if err != nil {
		return 0, err
	}
	return policy.MaxOpenLoans, nil
}

// MinBorrowerAge returns the minimum borrower age tunable.
func (s *PolicyService) MinBorrowerAge(ctx context.Context) (int, error) {
	policy, err := s.store.GetPolicy(ctx)
	if err != nil {
		return 0, err
	}
	return policy.MinBorrowerAge, nil
}

// SetMaxLoanDays updates the loan duration tunable.
// Returns errors.ErrInvalidPolicyValue for negative values.
func (s *PolicyService) SetMaxLoanDays(ctx context.Context, days int) error {
	return s.set(ctx, func(p *domain.CirculationPolicy) { p.MaxLoanDays = days })
}

// SetMaxOpenLoans updates the open loan limit tunable.
// Returns errors.ErrInvalidPolicyValue for negative values.
func (s *PolicyService) SetMaxOpenLoans(ctx context.Context, limit int) error {
	return s.set(ctx, func(p *domain.CirculationPolicy) { p.MaxOpenLoans = limit })
}

// SetMinBorrowerAge updates the minimum borrower age tunable.
// Returns errors.ErrInvalidPolicyValue for negative values.
func (s *PolicyService) SetMinBorrowerAge(ctx context.Context, age int) error {
	return s.set(ctx, func(p *domain.CirculationPolicy) { p.MinBorrowerAge = age })
}

func (s *PolicyService) set(ctx context.Context, apply func(*domain.CirculationPolicy)) error {
	policy, err := s.store.GetPolicy(ctx)
	if err != nil {
		return err
	}

	apply(policy)
	if err := policy.Validate(); err != nil {
		return errors.ErrInvalidPolicyValue.WithCause(err)
	}

	if err := s.store.UpdatePolicy(ctx, policy); err != nil {
		return fmt.Errorf("update policy: %w", err)
	}

	s.logger.Info("circulation policy updated",
		"max_loan_days", policy.MaxLoanDays,
		"max_open_loans", policy.MaxOpenLoans,
		"min_borrower_age", policy.MinBorrowerAge,
	)

	return nil
}
