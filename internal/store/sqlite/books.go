package sqlite

import (
	"context"
	"database/sql"

	"github.com/libris/libris-server/internal/domain"
	"github.com/libris/libris-server/internal/errors"
	"github.com/libris/libris-server/internal/id"
)

// bookColumns selects the book row plus the derived availability:
// quantity minus the count of open loans, floored at zero for the case
// where quantity was lowered while copies are still out. Availability
// is never stored. Must match the scan order in scanBook.
const bookColumns = `b.id, b.created_at, b.updated_at, b.title, b.author_id, b.quantity,
	MAX(0, b.quantity - (SELECT COUNT(*) FROM loans l WHERE l.book_id = b.id AND l.returned_at IS NULL)) AS available`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var createdAt, updatedAt string

	err := scanner.Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
		&b.Title,
		&b.AuthorID,
		&b.Quantity,
		&b.Available,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// BookFilter narrows FindBooks. Zero-valued string fields and nil int
// fields are ignored. Title matches exactly.
type BookFilter struct {
	ID        string
	Title     string
	AuthorID  string
	Quantity  *int
	Available *int
}

// CreateBook inserts a new book. A fresh ID and timestamps are always
// assigned, replacing anything the caller set.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	book.ID = id.MustGenerate(id.PrefixBook)
	book.InitTimestamps()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (id, created_at, updated_at, title, author_id, quantity)
		VALUES (?, ?, ?, ?, ?, ?)`,
		book.ID,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
		book.Title,
		book.AuthorID,
		book.Quantity,
	)
	if err != nil {
		return err
	}

	// A new book has no loans.
	book.Available = book.Quantity
	return nil
}

// GetBook retrieves a book by ID, with derived availability.
// Returns errors.ErrBookNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books b WHERE b.id = ?`, bookID)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBooks returns all books ordered by title, with derived availability.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.FindBooks(ctx, BookFilter{})
}

// ListBooksByAuthor returns all books of one author, ordered by title.
func (s *Store) ListBooksByAuthor(ctx context.Context, authorID string) ([]*domain.Book, error) {
	return s.FindBooks(ctx, BookFilter{AuthorID: authorID})
}

// FindBooks returns books matching the filter, ordered by title.
// All string filters match exactly; Available filters on the derived
// value.
func (s *Store) FindBooks(ctx context.Context, f BookFilter) ([]*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books b WHERE 1=1`
	var args []any

	if f.ID != "" {
		query += ` AND b.id = ?`
		args = append(args, f.ID)
	}
	if f.Title != "" {
		query += ` AND b.title = ?`
		args = append(args, f.Title)
	}
	if f.AuthorID != "" {
		query += ` AND b.author_id = ?`
		args = append(args, f.AuthorID)
	}
	if f.Quantity != nil {
		query += ` AND b.quantity = ?`
		args = append(args, *f.Quantity)
	}
	if f.Available != nil {
		// WHERE cannot reference the select-list alias; repeat the subquery.
		query += ` AND MAX(0, b.quantity - (SELECT COUNT(*) FROM loans l WHERE l.book_id = b.id AND l.returned_at IS NULL)) = ?`
		args = append(args, *f.Available)
	}
	query += ` ORDER BY b.title`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// CountBooksByAuthor counts the books of one author.
func (s *Store) CountBooksByAuthor(ctx context.Context, authorID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books WHERE author_id = ?`, authorID).Scan(&n)
	return n, err
}

// CountOpenLoansByBook counts the open loans against one book.
func (s *Store) CountOpenLoansByBook(ctx context.Context, bookID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans WHERE book_id = ? AND returned_at IS NULL`, bookID).Scan(&n)
	return n, err
}

// UpdateBook updates a book row.
// Returns errors.ErrBookNotFound if the book does not exist.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	book.Touch()

	result, err := s.db.ExecContext(ctx, `
		UPDATE books SET
			updated_at = ?,
			title = ?,
			author_id = ?,
			quantity = ?
		WHERE id = ?`,
		formatTime(book.UpdatedAt),
		book.Title,
		book.AuthorID,
		book.Quantity,
		book.ID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.ErrBookNotFound
	}
	return nil
}

// DeleteBook performs a hard delete on a book. The ON DELETE CASCADE on
// loans removes the book's loan history in the same statement.
// Returns errors.ErrBookNotFound if the book does not exist.
func (s *Store) DeleteBook(ctx context.Context, bookID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, bookID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.ErrBookNotFound
	}
	return nil
}
