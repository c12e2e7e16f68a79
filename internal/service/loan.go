package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/libris/libris-server/internal/domain"
	"github.com/libris/libris-server/internal/errors"
	"github.com/libris/libris-server/internal/store/sqlite"
)

// LoanService handles book circulation.
type LoanService struct {
	store   *sqlite.Store
	readers *ReaderService
	logger  *slog.Logger
}

// NewLoanService creates a new loan service.
func NewLoanService(store *sqlite.Store, readers *ReaderService, logger *slog.Logger) *LoanService {
	return &LoanService{
		store:   store,
		readers: readers,
		logger:  logger,
	}
}

// Borrow lends one copy of a book to a reader.
//
// The reader must pass the eligibility checks (age, open loan limit,
// no overdue loans) and must not already hold a copy of this book; the
// book must have a copy available. The availability and duplicate
// checks run inside the store transaction, so two concurrent borrows
// cannot take the same last copy.
// Returns errors.ErrReaderNotFound, errors.ErrBookNotFound,
// errors.ErrReaderTooYoung, errors.ErrReaderTooManyLoans,
// errors.ErrReaderOverdueLoans, errors.ErrReaderHasBook, or
// errors.ErrBookUnavailable.
func (s *LoanService) Borrow(ctx context.Context, bookID, readerID string) (*domain.Loan, error) {
	reader, err := s.store.GetReader(ctx, readerID)
	if err != nil {
		return nil, err
	}
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if err := s.readers.CheckEligibility(ctx, reader.ID, time.Now()); err != nil {
		return nil, err
	}

	// Checked here as well so a duplicate borrow of the last copy
	// reports the duplicate, not the missing copy.
	has, err := s.store.HasOpenLoan(ctx, book.ID, reader.ID)
	if err != nil {
		return nil, err
	}
	if has {
		return nil, errors.ErrReaderHasBook
	}

	loan := &domain.Loan{
		BookID:     book.ID,
		ReaderID:   reader.ID,
		BorrowedAt: time.Now(),
	}
	if err := s.store.Borrow(ctx, loan); err != nil {
		return nil, err
	}

	s.logger.Info("book borrowed",
		"loan_id", loan.ID,
		"book_id", book.ID,
		"reader_id", reader.ID,
	)

	return loan, nil
}

// Return closes the reader's open loan on the book, which frees the
// copy for the next borrower.
// Returns errors.ErrReaderNotFound or errors.ErrBookNotFound when the
// parties do not exist, and errors.ErrLoanNotFound if the reader has
// no open loan on the book.
func (s *LoanService) Return(ctx context.Context, bookID, readerID string) error {
	if _, err := s.store.GetReader(ctx, readerID); err != nil {
		return err
	}
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		return err
	}

	if err := s.store.Return(ctx, bookID, readerID, time.Now()); err != nil {
		return err
	}

	s.logger.Info("book returned",
		"book_id", bookID,
		"reader_id", readerID,
	)

	return nil
}

// List returns the full loan history, open and returned.
func (s *LoanService) List(ctx context.Context) ([]*domain.Loan, error) {
	return s.store.ListLoans(ctx)
}

// ListByReader returns the reader's full loan history.
// Returns errors.ErrReaderNotFound if the reader does not exist.
func (s *LoanService) ListByReader(ctx context.Context, readerID string) ([]*domain.Loan, error) {
	if _, err := s.store.GetReader(ctx, readerID); err != nil {
		return nil, err
	}
	return s.store.ListLoansByReader(ctx, readerID)
}

// ListByBook returns the book's full loan history.
// Returns errors.ErrBookNotFound if the book does not exist.
func (s *LoanService) ListByBook(ctx context.Context, bookID string) ([]*domain.Loan, error) {
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		return nil, err
	}
	return s.store.ListLoansByBook(ctx, bookID)
}
