package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/libris/libris-server/internal/domain"
	"github.com/libris/libris-server/internal/errors"
	"github.com/libris/libris-server/internal/normalize"
	"github.com/libris/libris-server/internal/store/sqlite"
	"github.com/libris/libris-server/internal/validation"
)

// ReaderService manages reader registration and borrowing eligibility.
type ReaderService struct {
	store     *sqlite.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewReaderService creates a new reader service.
func NewReaderService(store *sqlite.Store, validator *validation.Validator, logger *slog.Logger) *ReaderService {
	return &ReaderService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// NewReader is the input for Add.
type NewReader struct {
	Name      string    `json:"name" validate:"required,max=256"`
	Surname   string    `json:"surname" validate:"required,max=256"`
	BirthDate time.Time `json:"birth_date" validate:"required"`
}

// NewParent is the input for AddParent.
type NewParent struct {
	Name      string    `json:"name" validate:"required,max=256"`
	Surname   string    `json:"surname" validate:"required,max=256"`
	BirthDate time.Time `json:"birth_date" validate:"required"`
	Address   string    `json:"address" validate:"required,max=512"`
	Phone     string    `json:"phone" validate:"required,max=64"`
}

// NewChild is the input for AddChild.
type NewChild struct {
	Name      string    `json:"name" validate:"required,max=256"`
	Surname   string    `json:"surname" validate:"required,max=256"`
	BirthDate time.Time `json:"birth_date" validate:"required"`
	ParentID  string    `json:"parent_id"`
}

// Add registers a plain reader.
func (s *ReaderService) Add(ctx context.Context, in NewReader) (*domain.Reader, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	reader := &domain.Reader{
		Name:      normalize.PersonName(in.Name),
		Surname:   normalize.PersonName(in.Surname),
		BirthDate: in.BirthDate,
		Spec:      domain.SpecPlain,
	}
	return s.create(ctx, reader)
}

// AddParent registers a parent reader with contact details.
func (s *ReaderService) AddParent(ctx context.Context, in NewParent) (*domain.Reader, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	reader := &domain.Reader{
		Name:      normalize.PersonName(in.Name),
		Surname:   normalize.PersonName(in.Surname),
		BirthDate: in.BirthDate,
		Spec:      domain.SpecParent,
		Address:   in.Address,
		Phone:     in.Phone,
	}
	return s.create(ctx, reader)
}

// AddChild registers a child reader under an existing parent.
// Returns errors.ErrChildWithoutParent when no parent is given, or
// errors.ErrParentNotFound if the referenced reader does not exist or
// is not registered as a parent.
func (s *ReaderService) AddChild(ctx context.Context, in NewChild) (*domain.Reader, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if in.ParentID == "" {
		return nil, errors.ErrChildWithoutParent
	}

	if err := s.resolveParent(ctx, in.ParentID); err != nil {
		return nil, err
	}

	reader := &domain.Reader{
		Name:      normalize.PersonName(in.Name),
		Surname:   normalize.PersonName(in.Surname),
		BirthDate: in.BirthDate,
		Spec:      domain.SpecChild,
		ParentID:  in.ParentID,
	}
	return s.create(ctx, reader)
}

func (s *ReaderService) create(ctx context.Context, reader *domain.Reader) (*domain.Reader, error) {
	if err := reader.Validate(); err != nil {
		return nil, errors.Validation(err.Error())
	}
	if err := s.store.CreateReader(ctx, reader); err != nil {
		return nil, fmt.Errorf("create reader: %w", err)
	}

	s.logger.Info("reader registered",
		"reader_id", reader.ID,
		"name", reader.Name,
		"surname", reader.Surname,
		"spec", reader.Spec,
	)

	return reader, nil
}

// resolveParent checks that parentID names an existing parent reader.
func (s *ReaderService) resolveParent(ctx context.Context, parentID string) error {
	parent, err := s.store.GetReader(ctx, parentID)
	if errors.Is(err, errors.ErrReaderNotFound) {
		return errors.ErrParentNotFound
	}
	if err != nil {
		return err
	}
	if !parent.IsParent() {
		return errors.ErrParentNotFound
	}
	return nil
}

// Get retrieves a reader by ID, including the derived loan counts.
func (s *ReaderService) Get(ctx context.Context, readerID string) (*domain.Reader, error) {
	return s.store.GetReader(ctx, readerID)
}

// List returns all readers.
func (s *ReaderService) List(ctx context.Context) ([]*domain.Reader, error) {
	return s.store.ListReaders(ctx)
}

// Find returns readers matching the filter. All filter fields match
// exactly.
func (s *ReaderService) Find(ctx context.Context, f sqlite.ReaderFilter) ([]*domain.Reader, error) {
	return s.store.FindReaders(ctx, f)
}

// FindParents returns parent readers matching the filter.
func (s *ReaderService) FindParents(ctx context.Context, f sqlite.ReaderFilter) ([]*domain.Reader, error) {
	f.Spec = domain.SpecParent
	return s.store.FindReaders(ctx, f)
}

// FindChildren returns child readers matching the filter.
func (s *ReaderService) FindChildren(ctx context.Context, f sqlite.ReaderFilter) ([]*domain.Reader, error) {
	f.Spec = domain.SpecChild
	return s.store.FindReaders(ctx, f)
}

// ReaderUpdate contains the common fields that can be updated on any
// reader. Nil fields are left unchanged.
type ReaderUpdate struct {
	Name      *string
	Surname   *string
	BirthDate *time.Time
}

// ParentUpdate extends ReaderUpdate with the parent-only fields.
type ParentUpdate struct {
	ReaderUpdate
	Address *string
	Phone   *string
}

// ChildUpdate extends ReaderUpdate with the child-only field.
type ChildUpdate struct {
	ReaderUpdate
	ParentID *string
}

// Update applies a partial update to a reader's common fields. It works
// on any specialization and never touches the variant fields.
func (s *ReaderService) Update(ctx context.Context, readerID string, update ReaderUpdate) (*domain.Reader, error) {
	reader, err := s.store.GetReader(ctx, readerID)
	if err != nil {
		return nil, err
	}
	return s.applyUpdate(ctx, reader, update)
}

// UpdateParent applies a partial update to a parent reader, including
// its contact details.
// Returns errors.ErrReaderNotParent if the reader is not a parent.
func (s *ReaderService) UpdateParent(ctx context.Context, readerID string, update ParentUpdate) (*domain.Reader, error) {
	reader, err := s.store.GetReader(ctx, readerID)
	if err != nil {
		return nil, err
	}
	if !reader.IsParent() {
		return nil, errors.ErrReaderNotParent
	}

	if update.Address != nil {
		if *update.Address == "" {
			return nil, errors.Validation("parent address must not be empty")
		}
		reader.Address = *update.Address
	}
	if update.Phone != nil {
		if *update.Phone == "" {
			return nil, errors.Validation("parent phone must not be empty")
		}
		reader.Phone = *update.Phone
	}
	return s.applyUpdate(ctx, reader, update.ReaderUpdate)
}

// UpdateChild applies a partial update to a child reader, including a
// move to a different parent.
// Returns errors.ErrReaderNotChild if the reader is not a child, or
// errors.ErrParentNotFound if the new parent cannot be resolved.
func (s *ReaderService) UpdateChild(ctx context.Context, readerID string, update ChildUpdate) (*domain.Reader, error) {
	reader, err := s.store.GetReader(ctx, readerID)
	if err != nil {
		return nil, err
	}
	if !reader.IsChild() {
		return nil, errors.ErrReaderNotChild
	}

	if update.ParentID != nil {
		if err := s.resolveParent(ctx, *update.ParentID); err != nil {
			return nil, err
		}
		reader.ParentID = *update.ParentID
	}
	return s.applyUpdate(ctx, reader, update.ReaderUpdate)
}

func (s *ReaderService) applyUpdate(ctx context.Context, reader *domain.Reader, update ReaderUpdate) (*domain.Reader, error) {
	if update.Name != nil {
		reader.Name = normalize.PersonName(*update.Name)
	}
	if update.Surname != nil {
		reader.Surname = normalize.PersonName(*update.Surname)
	}
	if reader.Name == "" || reader.Surname == "" {
		return nil, errors.Validation("reader name and surname must not be empty")
	}
	if update.BirthDate != nil {
		if update.BirthDate.IsZero() {
			return nil, errors.Validation("reader birth date must not be empty")
		}
		reader.BirthDate = *update.BirthDate
	}

	if err := s.store.UpdateReader(ctx, reader); err != nil {
		return nil, fmt.Errorf("update reader: %w", err)
	}

	s.logger.Info("reader updated", "reader_id", reader.ID)

	return s.store.GetReader(ctx, reader.ID)
}

// ConvertChildToParent promotes a child reader to a parent in place.
// The reader keeps its ID, loan history, and open loans; the parent
// reference is dropped and the given contact details take its place.
// Returns errors.ErrReaderNotFound or errors.ErrReaderNotChild.
func (s *ReaderService) ConvertChildToParent(ctx context.Context, readerID, address, phone string) (*domain.Reader, error) {
	if address == "" || phone == "" {
		return nil, errors.Validation("converting to parent requires address and phone")
	}

	if err := s.store.ConvertChildToParent(ctx, readerID, address, phone); err != nil {
		return nil, err
	}

	s.logger.Info("reader converted to parent", "reader_id", readerID)

	return s.store.GetReader(ctx, readerID)
}

// Delete removes a reader. A reader with books still out cannot be
// removed; past loan history is removed along with the reader.
// Returns errors.ErrReaderNotFound or errors.ErrReaderHasLoan.
func (s *ReaderService) Delete(ctx context.Context, readerID string) error {
	if _, err := s.store.GetReader(ctx, readerID); err != nil {
		return err
	}

	n, err := s.store.CountOpenLoansByReader(ctx, readerID)
	if err != nil {
		return fmt.Errorf("count open loans: %w", err)
	}
	if n > 0 {
		return errors.ErrReaderHasLoan
	}

	if err := s.store.DeleteReader(ctx, readerID); err != nil {
		return fmt.Errorf("delete reader: %w", err)
	}

	s.logger.Info("reader deleted", "reader_id", readerID)

	return nil
}

// CheckEligibility reports whether the reader may borrow another book
// today. Checks run in a fixed order and the first failure wins:
// minimum age, then the open loan limit, then overdue loans.
// Returns nil when the reader is eligible, or one of
// errors.ErrReaderTooYoung, errors.ErrReaderTooManyLoans,
// errors.ErrReaderOverdueLoans.
func (s *ReaderService) CheckEligibility(ctx context.Context, readerID string, today time.Time) error {
	reader, err := s.store.GetReader(ctx, readerID)
	if err != nil {
		return err
	}
	policy, err := s.store.GetPolicy(ctx)
	if err != nil {
		return fmt.Errorf("load circulation policy: %w", err)
	}

	if domain.Age(reader.BirthDate, today) < policy.MinBorrowerAge {
		return errors.ErrReaderTooYoung
	}

	open, err := s.store.ListOpenLoansByReader(ctx, readerID)
	if err != nil {
		return fmt.Errorf("list open loans: %w", err)
	}
	if len(open) >= policy.MaxOpenLoans {
		return errors.ErrReaderTooManyLoans
	}
	for _, loan := range open {
		if loan.IsOverdue(policy.MaxLoanDays, today) {
			return errors.ErrReaderOverdueLoans
		}
	}
	return nil
}

// OverdueLoans returns the reader's open loans that are past their due
// date as of today.
func (s *ReaderService) OverdueLoans(ctx context.Context, readerID string, today time.Time) ([]*domain.Loan, error) {
	if _, err := s.store.GetReader(ctx, readerID); err != nil {
		return nil, err
	}
	policy, err := s.store.GetPolicy(ctx)
	if err != nil {
		return nil, fmt.Errorf("load circulation policy: %w", err)
	}

	open, err := s.store.ListOpenLoansByReader(ctx, readerID)
	if err != nil {
		return nil, fmt.Errorf("list open loans: %w", err)
	}

	overdue := make([]*domain.Loan, 0)
	for _, loan := range open {
		if loan.IsOverdue(policy.MaxLoanDays, today) {
			overdue = append(overdue, loan)
		}
	}
	return overdue, nil
}
