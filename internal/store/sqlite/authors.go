package sqlite

import (
	"context"
	"database/sql"

	"github.com/libris/libris-server/internal/domain"
	"github.com/libris/libris-server/internal/errors"
	"github.com/libris/libris-server/internal/id"
)

// authorColumns is the ordered list of columns selected in author queries.
// Must match the scan order in scanAuthor.
const authorColumns = `id, created_at, updated_at, name, surname`

// scanAuthor scans a sql.Row (or sql.Rows via its Scan method) into a domain.Author.
func scanAuthor(scanner interface{ Scan(dest ...any) error }) (*domain.Author, error) {
	var a domain.Author

	var createdAt, updatedAt string

	err := scanner.Scan(
		&a.ID,
		&createdAt,
		&updatedAt,
		&a.Name,
		&a.Surname,
	)
	if err != nil {
		return nil, err
	}

	a.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	a.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// AuthorFilter narrows FindAuthors. Zero-valued fields are ignored.
// Name and Surname match by containment; ID matches exactly.
type AuthorFilter struct {
	ID      string
	Name    string
	Surname string
}

// CreateAuthor inserts a new author. A fresh ID and timestamps are
// always assigned, replacing anything the caller set.
func (s *Store) CreateAuthor(ctx context.Context, author *domain.Author) error {
	author.ID = id.MustGenerate(id.PrefixAuthor)
	author.InitTimestamps()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO authors (id, created_at, updated_at, name, surname)
		VALUES (?, ?, ?, ?, ?)`,
		author.ID,
		formatTime(author.CreatedAt),
		formatTime(author.UpdatedAt),
		author.Name,
		author.Surname,
	)
	return err
}

// GetAuthor retrieves an author by ID.
// Returns errors.ErrAuthorNotFound if the author does not exist.
func (s *Store) GetAuthor(ctx context.Context, authorID string) (*domain.Author, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+authorColumns+` FROM authors WHERE id = ?`, authorID)

	a, err := scanAuthor(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrAuthorNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListAuthors returns all authors ordered by surname, name.
func (s *Store) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	return s.FindAuthors(ctx, AuthorFilter{})
}

// FindAuthors returns authors matching the filter, ordered by surname,
// name. Name and surname filters match substrings; the ID filter is
// exact.
func (s *Store) FindAuthors(ctx context.Context, f AuthorFilter) ([]*domain.Author, error) {
	query := `SELECT ` + authorColumns + ` FROM authors WHERE 1=1`
	var args []any

	if f.ID != "" {
		query += ` AND id = ?`
		args = append(args, f.ID)
	}
	if f.Name != "" {
		query += ` AND instr(name, ?) > 0`
		args = append(args, f.Name)
	}
	if f.Surname != "" {
		query += ` AND instr(surname, ?) > 0`
		args = append(args, f.Surname)
	}
	query += ` ORDER BY surname, name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []*domain.Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// CountAuthorsByName counts authors with exactly this name and surname,
// excluding the given ID. Used for the duplicate check; pass an empty
// excludeID when creating.
func (s *Store) CountAuthorsByName(ctx context.Context, name, surname, excludeID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM authors WHERE name = ? AND surname = ? AND id != ?`,
		name, surname, excludeID).Scan(&n)
	return n, err
}

// UpdateAuthor updates an author row.
// Returns errors.ErrAuthorNotFound if the author does not exist.
func (s *Store) UpdateAuthor(ctx context.Context, author *domain.Author) error {
	author.Touch()

	result, err := s.db.ExecContext(ctx, `
		UPDATE authors SET
			updated_at = ?,
			name = ?,
			surname = ?
		WHERE id = ?`,
		formatTime(author.UpdatedAt),
		author.Name,
		author.Surname,
		author.ID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.ErrAuthorNotFound
	}
	return nil
}

// DeleteAuthor performs a hard delete on an author. Callers check for
// remaining books first; the foreign key on books rejects the delete
// otherwise.
// Returns errors.ErrAuthorNotFound if the author does not exist.
func (s *Store) DeleteAuthor(ctx context.Context, authorID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM authors WHERE id = ?`, authorID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.ErrAuthorNotFound
	}
	return nil
}
