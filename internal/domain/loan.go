package domain

import "time"

// Loan records one borrowing of one book copy by one reader.
//
// A loan is open while ReturnedAt is nil. Returning sets ReturnedAt
// exactly once; a returned loan is immutable history and is only ever
// removed when its book or reader is deleted.
type Loan struct {
	ID         string     `json:"id"`
	BookID     string     `json:"book_id"`
	ReaderID   string     `json:"reader_id"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}

// IsOpen reports whether the book is still out.
func (l *Loan) IsOpen() bool {
	return l.ReturnedAt == nil
}

// DueDate returns the day the loan must be returned by.
func (l *Loan) DueDate(maxLoanDays int) time.Time {
	return l.BorrowedAt.AddDate(0, 0, maxLoanDays)
}

// IsOverdue reports whether an open loan has reached its due date.
// A loan counts as overdue on the due date itself, not the day after:
// with maxLoanDays=2 a book borrowed on Monday is overdue Wednesday.
func (l *Loan) IsOverdue(maxLoanDays int, today time.Time) bool {
	if !l.IsOpen() {
		return false
	}
	return !today.Before(l.DueDate(maxLoanDays))
}
