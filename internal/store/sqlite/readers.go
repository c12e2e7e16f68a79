package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/libris/libris-server/internal/domain"
	"github.com/libris/libris-server/internal/errors"
	"github.com/libris/libris-server/internal/id"
)

// dateLayout stores birth dates as calendar days, without a time part.
const dateLayout = "2006-01-02"

// readerColumns selects the reader row plus the two derived loan
// counts. Must match the scan order in scanReader.
const readerColumns = `r.id, r.created_at, r.updated_at, r.name, r.surname, r.birth_date,
	r.spec, r.address, r.phone, r.parent_id,
	(SELECT COUNT(*) FROM loans l WHERE l.reader_id = r.id AND l.returned_at IS NULL) AS current_loans,
	(SELECT COUNT(*) FROM loans l WHERE l.reader_id = r.id) AS lifetime_loans`

// scanReader scans a sql.Row (or sql.Rows via its Scan method) into a domain.Reader.
func scanReader(scanner interface{ Scan(dest ...any) error }) (*domain.Reader, error) {
	var r domain.Reader

	var (
		createdAt string
		updatedAt string
		birthDate string
		spec      string
		address   sql.NullString
		phone     sql.NullString
		parentID  sql.NullString
	)

	err := scanner.Scan(
		&r.ID,
		&createdAt,
		&updatedAt,
		&r.Name,
		&r.Surname,
		&birthDate,
		&spec,
		&address,
		&phone,
		&parentID,
		&r.CurrentLoans,
		&r.LifetimeLoans,
	)
	if err != nil {
		return nil, err
	}

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	r.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	r.BirthDate, err = time.Parse(dateLayout, birthDate)
	if err != nil {
		return nil, err
	}

	r.Spec = domain.Specialization(spec)
	if address.Valid {
		r.Address = address.String
	}
	if phone.Valid {
		r.Phone = phone.String
	}
	if parentID.Valid {
		r.ParentID = parentID.String
	}

	return &r, nil
}

// ReaderFilter narrows FindReaders. Zero-valued string fields and nil
// pointer fields are ignored. Name and surname match exactly; BirthDate
// matches the calendar day.
type ReaderFilter struct {
	ID            string
	Name          string
	Surname       string
	BirthDate     *time.Time
	Spec          domain.Specialization
	Address       string
	Phone         string
	ParentID      string
	CurrentLoans  *int
	LifetimeLoans *int
}

// CreateReader inserts a new reader of any specialization. A fresh ID
// and timestamps are always assigned, replacing anything the caller
// set. The variant shape must already hold (see domain.Reader.Validate).
func (s *Store) CreateReader(ctx context.Context, reader *domain.Reader) error {
	reader.ID = id.MustGenerate(id.PrefixReader)
	reader.InitTimestamps()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO readers (id, created_at, updated_at, name, surname, birth_date, spec, address, phone, parent_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reader.ID,
		formatTime(reader.CreatedAt),
		formatTime(reader.UpdatedAt),
		reader.Name,
		reader.Surname,
		reader.BirthDate.Format(dateLayout),
		string(reader.Spec),
		nullString(reader.Address),
		nullString(reader.Phone),
		nullString(reader.ParentID),
	)
	return err
}

// GetReader retrieves a reader by ID, with derived loan counts.
// Returns errors.ErrReaderNotFound if the reader does not exist.
func (s *Store) GetReader(ctx context.Context, readerID string) (*domain.Reader, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+readerColumns+` FROM readers r WHERE r.id = ?`, readerID)

	r, err := scanReader(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrReaderNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListReaders returns all readers ordered by surname, name.
func (s *Store) ListReaders(ctx context.Context) ([]*domain.Reader, error) {
	return s.FindReaders(ctx, ReaderFilter{})
}

// FindReaders returns readers matching the filter, ordered by surname,
// name. String filters match exactly; loan-count filters match the
// derived values.
func (s *Store) FindReaders(ctx context.Context, f ReaderFilter) ([]*domain.Reader, error) {
	query := `SELECT ` + readerColumns + ` FROM readers r WHERE 1=1`
	var args []any

	if f.ID != "" {
		query += ` AND r.id = ?`
		args = append(args, f.ID)
	}
	if f.Name != "" {
		query += ` AND r.name = ?`
		args = append(args, f.Name)
	}
	if f.Surname != "" {
		query += ` AND r.surname = ?`
		args = append(args, f.Surname)
	}
	if f.BirthDate != nil {
		query += ` AND r.birth_date = ?`
		args = append(args, f.BirthDate.Format(dateLayout))
	}
	if f.Spec != "" {
		query += ` AND r.spec = ?`
		args = append(args, string(f.Spec))
	}
	if f.Address != "" {
		query += ` AND r.address = ?`
		args = append(args, f.Address)
	}
	if f.Phone != "" {
		query += ` AND r.phone = ?`
		args = append(args, f.Phone)
	}
	if f.ParentID != "" {
		query += ` AND r.parent_id = ?`
		args = append(args, f.ParentID)
	}
	if f.CurrentLoans != nil {
		query += ` AND (SELECT COUNT(*) FROM loans l WHERE l.reader_id = r.id AND l.returned_at IS NULL) = ?`
		args = append(args, *f.CurrentLoans)
	}
	if f.LifetimeLoans != nil {
		query += ` AND (SELECT COUNT(*) FROM loans l WHERE l.reader_id = r.id) = ?`
		args = append(args, *f.LifetimeLoans)
	}
	query += ` ORDER BY r.surname, r.name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readers []*domain.Reader
	for rows.Next() {
		r, err := scanReader(rows)
		if err != nil {
			return nil, err
		}
		readers = append(readers, r)
	}
	return readers, rows.Err()
}

// UpdateReader updates a reader row, including the variant fields. The
// caller keeps the shape consistent (see domain.Reader.Validate).
// Returns errors.ErrReaderNotFound if the reader does not exist.
func (s *Store) UpdateReader(ctx context.Context, reader *domain.Reader) error {
	reader.Touch()

	result, err := s.db.ExecContext(ctx, `
		UPDATE readers SET
			updated_at = ?,
			name = ?,
			surname = ?,
			birth_date = ?,
			spec = ?,
			address = ?,
			phone = ?,
			parent_id = ?
		WHERE id = ?`,
		formatTime(reader.UpdatedAt),
		reader.Name,
		reader.Surname,
		reader.BirthDate.Format(dateLayout),
		string(reader.Spec),
		nullString(reader.Address),
		nullString(reader.Phone),
		nullString(reader.ParentID),
		reader.ID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.ErrReaderNotFound
	}
	return nil
}

// ConvertChildToParent migrates a child reader to a parent in place:
// same row, same ID, spec swapped, contact details set, parent
// reference cleared. The single UPDATE keeps the migration atomic.
// Returns errors.ErrReaderNotChild if the reader exists but is not a
// child, errors.ErrReaderNotFound if it does not exist.
func (s *Store) ConvertChildToParent(ctx context.Context, readerID, address, phone string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE readers SET
			updated_at = ?,
			spec = 'parent',
			address = ?,
			phone = ?,
			parent_id = NULL
		WHERE id = ? AND spec = 'child'`,
		formatTime(time.Now()),
		nullString(address),
		nullString(phone),
		readerID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish a missing reader from a non-child one.
		var exists int
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM readers WHERE id = ?`, readerID).Scan(&exists)
		if err != nil {
			return err
		}
		if exists == 0 {
			return errors.ErrReaderNotFound
		}
		return errors.ErrReaderNotChild
	}
	return nil
}

// DeleteReader performs a hard delete on a reader. The ON DELETE
// CASCADE on loans removes the reader's loan history in the same
// statement.
// Returns errors.ErrReaderNotFound if the reader does not exist.
func (s *Store) DeleteReader(ctx context.Context, readerID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM readers WHERE id = ?`, readerID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.ErrReaderNotFound
	}
	return nil
}
