// Package service provides the business logic layer for the library:
// catalog upkeep, reader registration, and loan circulation.
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

// AuthorService manages the author catalog.
type AuthorService struct {
	store     *sqlite.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAuthorService creates a new author service.
func NewAuthorService(store *sqlite.Store, validator *validation.Validator, logger *slog.Logger) *AuthorService {
	return &AuthorService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// NewAuthor is the input for Add.
type NewAuthor struct {
	Name    string `json:"name" validate:"required,max=256"`
	Surname string `json:"surname" validate:"required,max=256"`
}

// Add registers a new author. Names are normalized before storage and
// the (name, surname) pair must be unique.
// Returns errors.ErrAuthorExists on a duplicate.
func (s *AuthorService) Add(ctx context.Context, in NewAuthor) (*domain.Author, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	author := &domain.Author{
		Name:    normalize.PersonName(in.Name),
		Surname: normalize.PersonName(in.Surname),
	}

	n, err := s.store.CountAuthorsByName(ctx, author.Name, author.Surname, "")
	if err != nil {
		return nil, fmt.Errorf("check duplicate author: %w", err)
	}
	if n > 0 {
		return nil, errors.ErrAuthorExists
	}

	if err := s.store.CreateAuthor(ctx, author); err != nil {
		return nil, fmt.Errorf("create author: %w", err)
	}

	s.logger.Info("author added",
		"author_id", author.ID,
		"name", author.Name,
		"surname", author.Surname,
	)

	return author, nil
}

// Get retrieves an author by ID.
func (s *AuthorService) Get(ctx context.Context, authorID string) (*domain.Author, error) {
	return s.store.GetAuthor(ctx, authorID)
}

// List returns all authors.
func (s *AuthorService) List(ctx context.Context) ([]*domain.Author, error) {
	return s.store.ListAuthors(ctx)
}

// Find returns authors matching the filter. Name and surname filters
// match substrings.
func (s *AuthorService) Find(ctx context.Context, f sqlite.AuthorFilter) ([]*domain.Author, error) {
	return s.store.FindAuthors(ctx, f)
}

// AuthorUpdate contains fields that can be updated. Nil fields are
// left unchanged.
type AuthorUpdate struct {
	Name    *string
	Surname *string
}

// Update applies a partial update to an author. The duplicate check is
// re-run against the resulting name, excluding the author itself.
// Returns errors.ErrAuthorNotFound or errors.ErrAuthorExists.
func (s *AuthorService) Update(ctx context.Context, authorID string, update AuthorUpdate) (*domain.Author, error) {
	author, err := s.store.GetAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		author.Name = normalize.PersonName(*update.Name)
	}
	if update.Surname != nil {
		author.Surname = normalize.PersonName(*update.Surname)
	}
	if author.Name == "" || author.Surname == "" {
		return nil, errors.Validation("author name and surname must not be empty")
	}

	n, err := s.store.CountAuthorsByName(ctx, author.Name, author.Surname, author.ID)
	if err != nil {
		return nil, fmt.Errorf("check duplicate author: %w", err)
	}
	if n > 0 {
		return nil, errors.ErrAuthorExists
	}

	if err := s.store.UpdateAuthor(ctx, author); err != nil {
		return nil, fmt.Errorf("update author: %w", err)
	}

	s.logger.Info("author updated", "author_id", author.ID)

	return author, nil
}

// Delete removes an author from the catalog. An author with books
// cannot be removed.
// Returns errors.ErrAuthorNotFound or errors.ErrAuthorHasBooks.
func (s *AuthorService) Delete(ctx context.Context, authorID string) error {
	if _, err := s.store.GetAuthor(ctx, authorID); err != nil {
		return err
	}

	n, err := s.store.CountBooksByAuthor(ctx, authorID)
	if err != nil {
		return fmt.Errorf("count author books: %w", err)
	}
	if n > 0 {
		return errors.ErrAuthorHasBooks
	}

	if err := s.store.DeleteAuthor(ctx, authorID); err != nil {
		return fmt.Errorf("delete author: %w", err)
	}

	s.logger.Info("author deleted", "author_id", authorID)

	return nil
}

// Books returns the author's books.
// Returns errors.ErrAuthorNotFound if the author does not exist.
func (s *AuthorService) Books(ctx context.Context, authorID string) ([]*domain.Book, error) {
	if _, err := s.store.GetAuthor(ctx, authorID); err != nil {
		return nil, err
	}
	return s.store.ListBooksByAuthor(ctx, authorID)
}
