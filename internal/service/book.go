package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/libris/libris-server/internal/domain"
	"github.com/libris/libris-server/internal/errors"
	"github.com/libris/libris-server/internal/normalize"
	"github.com/libris/libris-server/internal/store/sqlite"
	"github.com/libris/libris-server/internal/validation"
)

// BookService manages the book catalog.
type BookService struct {
	store     *sqlite.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store *sqlite.Store, validator *validation.Validator, logger *slog.Logger) *BookService {
	return &BookService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// NewBook is the input for Add.
type NewBook struct {
	Title    string `json:"title" validate:"required,max=512"`
	AuthorID string `json:"author_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

// Add registers a new book under an existing author.
// Returns errors.ErrAuthorNotFound if the author does not exist.
func (s *BookService) Add(ctx context.Context, in NewBook) (*domain.Book, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	if _, err := s.store.GetAuthor(ctx, in.AuthorID); err != nil {
		return nil, err
	}

	book := &domain.Book{
		Title:    normalize.Title(in.Title),
		AuthorID: in.AuthorID,
		Quantity: in.Quantity,
	}
	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.logger.Info("book added",
		"book_id", book.ID,
		"title", book.Title,
		"author_id", book.AuthorID,
		"quantity", book.Quantity,
	)

	return book, nil
}

// Get retrieves a book by ID, including its current availability.
func (s *BookService) Get(ctx context.Context, bookID string) (*domain.Book, error) {
	return s.store.GetBook(ctx, bookID)
}

// List returns all books.
func (s *BookService) List(ctx context.Context) ([]*domain.Book, error) {
	return s.store.ListBooks(ctx)
}

// Find returns books matching the filter. All filter fields match
// exactly, including the title.
func (s *BookService) Find(ctx context.Context, f sqlite.BookFilter) ([]*domain.Book, error) {
	return s.store.FindBooks(ctx, f)
}

// BookUpdate contains fields that can be updated. Nil fields are left
// unchanged.
type BookUpdate struct {
	Title    *string
	AuthorID *string
	Quantity *int
}

// Update applies a partial update to a book. Reassigning the author
// requires the new author to exist. Quantity may be lowered below the
// number of open loans; availability simply reads as zero until enough
// copies come back.
// Returns errors.ErrBookNotFound or errors.ErrAuthorNotFound.
func (s *BookService) Update(ctx context.Context, bookID string, update BookUpdate) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		book.Title = normalize.Title(*update.Title)
		if book.Title == "" {
			return nil, errors.Validation("book title must not be empty")
		}
	}
	if update.AuthorID != nil {
		if _, err := s.store.GetAuthor(ctx, *update.AuthorID); err != nil {
			return nil, err
		}
		book.AuthorID = *update.AuthorID
	}
	if update.Quantity != nil {
		if *update.Quantity < 0 {
			return nil, errors.Validation("book quantity must not be negative")
		}
		book.Quantity = *update.Quantity
	}

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	s.logger.Info("book updated", "book_id", book.ID)

	return s.store.GetBook(ctx, bookID)
}

// Delete removes a book. A book with copies currently out cannot be
// removed; the loan history of returned loans goes with it.
// Returns errors.ErrBookNotFound or errors.ErrBookBorrowed.
func (s *BookService) Delete(ctx context.Context, bookID string) error {
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		return err
	}

	n, err := s.store.CountOpenLoansByBook(ctx, bookID)
	if err != nil {
		return fmt.Errorf("count open loans: %w", err)
	}
	if n > 0 {
		return errors.ErrBookBorrowed
	}

	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	s.logger.Info("book deleted", "book_id", bookID)

	return nil
}
