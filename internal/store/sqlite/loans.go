package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/libris/libris-server/internal/domain"
	"github.com/libris/libris-server/internal/errors"
)

// loanColumns is the ordered list of columns selected in loan queries.
// Must match the scan order in scanLoan.
const loanColumns = `id, book_id, reader_id, borrowed_at, returned_at`

// scanLoan scans a sql.Row (or sql.Rows via its Scan method) into a domain.Loan.
func scanLoan(scanner interface{ Scan(dest ...any) error }) (*domain.Loan, error) {
	var l domain.Loan

	var (
		borrowedAt string
		returnedAt sql.NullString
	)

	err := scanner.Scan(
		&l.ID,
		&l.BookID,
		&l.ReaderID,
		&borrowedAt,
		&returnedAt,
	)
	if err != nil {
		return nil, err
	}

	l.BorrowedAt, err = parseTime(borrowedAt)
	if err != nil {
		return nil, err
	}
	l.ReturnedAt, err = parseNullableTime(returnedAt)
	if err != nil {
		return nil, err
	}

	return &l, nil
}

// Borrow records a new open loan in one transaction: the availability
// recount and the insert see the same state, so two concurrent borrows
// cannot both take the last copy.
// Returns errors.ErrBookNotFound if the book does not exist,
// errors.ErrBookUnavailable when no copy is free, and
// errors.ErrReaderHasBook when the reader already holds this book.
func (s *Store) Borrow(ctx context.Context, loan *domain.Loan) error {
	loan.ID = uuid.NewString()
	if loan.BorrowedAt.IsZero() {
		loan.BorrowedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var available int
	err = tx.QueryRowContext(ctx, `
		SELECT quantity - (SELECT COUNT(*) FROM loans l WHERE l.book_id = books.id AND l.returned_at IS NULL)
		FROM books WHERE id = ?`, loan.BookID).Scan(&available)
	if err == sql.ErrNoRows {
		return errors.ErrBookNotFound
	}
	if err != nil {
		return err
	}
	if available <= 0 {
		return errors.ErrBookUnavailable
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO loans (id, book_id, reader_id, borrowed_at, returned_at)
		VALUES (?, ?, ?, ?, NULL)`,
		loan.ID,
		loan.BookID,
		loan.ReaderID,
		formatTime(loan.BorrowedAt),
	)
	if err != nil {
		// The partial unique index on open (book, reader) pairs trips here.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return errors.ErrReaderHasBook
		}
		return err
	}

	return tx.Commit()
}

// Return closes the open loan for the (book, reader) pair. The partial
// unique index guarantees at most one such loan, so a single UPDATE
// with a RowsAffected check implements the exactly-one rule.
// Returns errors.ErrLoanNotFound when there is no open loan.
func (s *Store) Return(ctx context.Context, bookID, readerID string, returnedAt time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE loans SET returned_at = ?
		WHERE book_id = ? AND reader_id = ? AND returned_at IS NULL`,
		formatTime(returnedAt), bookID, readerID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.ErrLoanNotFound
	}
	return nil
}

// GetOpenLoan retrieves the open loan for a (book, reader) pair.
// Returns errors.ErrLoanNotFound if there is none.
func (s *Store) GetOpenLoan(ctx context.Context, bookID, readerID string) (*domain.Loan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+loanColumns+` FROM loans
		WHERE book_id = ? AND reader_id = ? AND returned_at IS NULL`,
		bookID, readerID)

	l, err := scanLoan(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrLoanNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// HasOpenLoan reports whether the reader currently holds this book.
func (s *Store) HasOpenLoan(ctx context.Context, bookID, readerID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans WHERE book_id = ? AND reader_id = ? AND returned_at IS NULL`,
		bookID, readerID).Scan(&n)
	return n > 0, err
}

// ListLoans returns the full loan history, open and returned, ordered
// by borrow time.
func (s *Store) ListLoans(ctx context.Context) ([]*domain.Loan, error) {
	return s.queryLoans(ctx,
		`SELECT `+loanColumns+` FROM loans ORDER BY borrowed_at`)
}

// ListLoansByReader returns the loan history of one reader, ordered by
// borrow time.
func (s *Store) ListLoansByReader(ctx context.Context, readerID string) ([]*domain.Loan, error) {
	return s.queryLoans(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE reader_id = ? ORDER BY borrowed_at`, readerID)
}

// ListLoansByBook returns the loan history of one book, ordered by
// borrow time.
func (s *Store) ListLoansByBook(ctx context.Context, bookID string) ([]*domain.Loan, error) {
	return s.queryLoans(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE book_id = ? ORDER BY borrowed_at`, bookID)
}

// ListOpenLoansByReader returns the reader's open loans, ordered by
// borrow time.
func (s *Store) ListOpenLoansByReader(ctx context.Context, readerID string) ([]*domain.Loan, error) {
	return s.queryLoans(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE reader_id = ? AND returned_at IS NULL ORDER BY borrowed_at`,
		readerID)
}

// CountOpenLoansByReader counts the reader's open loans.
func (s *Store) CountOpenLoansByReader(ctx context.Context, readerID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans WHERE reader_id = ? AND returned_at IS NULL`, readerID).Scan(&n)
	return n, err
}

func (s *Store) queryLoans(ctx context.Context, query string, args ...any) ([]*domain.Loan, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []*domain.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}
