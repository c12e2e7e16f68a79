package domain

import (
	"errors"
	"time"
)

// CirculationPolicy holds the three lending tunables.
// Stored as a single row in the circulation_policy table.
type CirculationPolicy struct {
	// MaxLoanDays is how long a book may be kept before it counts as
	// overdue. Zero means every open loan is overdue immediately.
	MaxLoanDays int `json:"max_loan_days"`
	// MaxOpenLoans is how many books a reader may have out at once.
	MaxOpenLoans int `json:"max_open_loans"`
	// MinBorrowerAge is the minimum age in full years to borrow.
	MinBorrowerAge int `json:"min_borrower_age"`

	UpdatedAt time.Time `json:"updated_at"`
}

// ErrNegativePolicyValue is reported by Validate for any tunable below zero.
var ErrNegativePolicyValue = errors.New("circulation policy values must not be negative")

// NewCirculationPolicy creates a policy with the default tunables.
func NewCirculationPolicy() *CirculationPolicy {
	return &CirculationPolicy{
		MaxLoanDays:    30,
		MaxOpenLoans:   5,
		MinBorrowerAge: 6,
		UpdatedAt:      time.Now(),
	}
}

// Validate rejects negative tunables. There is no upper bound.
func (p *CirculationPolicy) Validate() error {
	if p.MaxLoanDays < 0 || p.MaxOpenLoans < 0 || p.MinBorrowerAge < 0 {
		return ErrNegativePolicyValue
	}
	return nil
}
