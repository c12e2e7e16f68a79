package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/libris/libris-server/internal/domain"
	"github.com/libris/libris-server/internal/errors"
)

func birthday(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// createTestParent inserts a parent reader with contact details.
func createTestParent(t *testing.T, s *Store, name, surname string) *domain.Reader {
	t.Helper()
	r := &domain.Reader{
		Name:      name,
		Surname:   surname,
		BirthDate: birthday(1980, time.May, 12),
		Spec:      domain.SpecParent,
		Address:   "Main St 1",
		Phone:     "555-0101",
	}
	if err := s.CreateReader(context.Background(), r); err != nil {
		t.Fatalf("create parent %s %s: %v", name, surname, err)
	}
	return r
}

// createTestChild inserts a child reader under the given parent.
func createTestChild(t *testing.T, s *Store, name, surname, parentID string, birth time.Time) *domain.Reader {
	t.Helper()
	r := &domain.Reader{
		Name:      name,
		Surname:   surname,
		BirthDate: birth,
		Spec:      domain.SpecChild,
		ParentID:  parentID,
	}
	if err := s.CreateReader(context.Background(), r); err != nil {
		t.Fatalf("create child %s %s: %v", name, surname, err)
	}
	return r
}

func TestCreateAndGetReader(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := createTestReader(t, s, "Anna", "Kowalska", birthday(1990, time.March, 7))

	got, err := s.GetReader(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetReader: %v", err)
	}
	if got.Name != "Anna" || got.Surname != "Kowalska" {
		t.Errorf("got %q %q, want Anna Kowalska", got.Name, got.Surname)
	}
	if !got.BirthDate.Equal(birthday(1990, time.March, 7)) {
		t.Errorf("BirthDate: got %v", got.BirthDate)
	}
	if got.Spec != domain.SpecPlain {
		t.Errorf("Spec: got %q, want plain", got.Spec)
	}
	if got.CurrentLoans != 0 || got.LifetimeLoans != 0 {
		t.Errorf("loan counts: got %d/%d, want 0/0", got.CurrentLoans, got.LifetimeLoans)
	}
}

func TestCreateReader_VariantRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := createTestParent(t, s, "Maria", "Nowak")
	c := createTestChild(t, s, "Tomek", "Nowak", p.ID, birthday(2015, time.June, 1))

	gotParent, err := s.GetReader(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetReader parent: %v", err)
	}
	if !gotParent.IsParent() || gotParent.Address != "Main St 1" || gotParent.Phone != "555-0101" {
		t.Errorf("parent round-trip: got %+v", gotParent)
	}
	if gotParent.ParentID != "" {
		t.Errorf("parent should carry no parent reference, got %q", gotParent.ParentID)
	}

	gotChild, err := s.GetReader(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetReader child: %v", err)
	}
	if !gotChild.IsChild() || gotChild.ParentID != p.ID {
		t.Errorf("child round-trip: got %+v", gotChild)
	}
	if gotChild.Address != "" || gotChild.Phone != "" {
		t.Errorf("child should carry no contact details, got %q %q", gotChild.Address, gotChild.Phone)
	}
}

func TestCreateReader_ShapeRejectedBySchema(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Child without a parent reference.
	err := s.CreateReader(ctx, &domain.Reader{
		Name: "Tomek", Surname: "Nowak",
		BirthDate: birthday(2015, time.June, 1),
		Spec:      domain.SpecChild,
	})
	if err == nil {
		t.Error("child without parent_id should violate the CHECK constraint")
	}

	// Plain reader with contact details.
	err = s.CreateReader(ctx, &domain.Reader{
		Name: "Anna", Surname: "Kowalska",
		BirthDate: birthday(1990, time.March, 7),
		Spec:      domain.SpecPlain,
		Address:   "Main St 1",
	})
	if err == nil {
		t.Error("plain reader with address should violate the CHECK constraint")
	}
}

func TestGetReader_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetReader(context.Background(), "nonexistent")
	if !errors.Is(err, errors.ErrReaderNotFound) {
		t.Fatalf("expected ErrReaderNotFound, got %v", err)
	}
}

func TestGetReader_DerivedLoanCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := createTestAuthor(t, s, "Stanisław", "Lem")
	b1 := createTestBook(t, s, "Solaris", a.ID, 1)
	b2 := createTestBook(t, s, "The Invincible", a.ID, 1)
	r := createTestReader(t, s, "Anna", "Kowalska", birthday(1990, time.March, 7))

	if err := s.Borrow(ctx, &domain.Loan{BookID: b1.ID, ReaderID: r.ID}); err != nil {
		t.Fatalf("Borrow b1: %v", err)
	}
	if err := s.Borrow(ctx, &domain.Loan{BookID: b2.ID, ReaderID: r.ID}); err != nil {
		t.Fatalf("Borrow b2: %v", err)
	}
	if err := s.Return(ctx, b1.ID, r.ID, time.Now()); err != nil {
		t.Fatalf("Return: %v", err)
	}

	got, err := s.GetReader(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetReader: %v", err)
	}
	if got.CurrentLoans != 1 {
		t.Errorf("CurrentLoans: got %d, want 1", got.CurrentLoans)
	}
	if got.LifetimeLoans != 2 {
		t.Errorf("LifetimeLoans: got %d, want 2", got.LifetimeLoans)
	}
}

func TestFindReaders_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := createTestParent(t, s, "Maria", "Nowak")
	createTestChild(t, s, "Tomek", "Nowak", p.ID, birthday(2015, time.June, 1))
	createTestReader(t, s, "Anna", "Kowalska", birthday(1990, time.March, 7))

	// Exact surname match; no substring matching for readers.
	got, err := s.FindReaders(ctx, ReaderFilter{Surname: "Nowak"})
	if err != nil {
		t.Fatalf("FindReaders: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("surname Nowak: got %d, want 2", len(got))
	}

	got, err = s.FindReaders(ctx, ReaderFilter{Surname: "Now"})
	if err != nil {
		t.Fatalf("FindReaders: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("partial surname: got %d, want 0", len(got))
	}

	// Spec filter.
	got, err = s.FindReaders(ctx, ReaderFilter{Spec: domain.SpecParent})
	if err != nil {
		t.Fatalf("FindReaders: %v", err)
	}
	if len(got) != 1 || got[0].ID != p.ID {
		t.Fatalf("spec parent: got %v", got)
	}

	// Parent-id filter.
	got, err = s.FindReaders(ctx, ReaderFilter{ParentID: p.ID})
	if err != nil {
		t.Fatalf("FindReaders: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Tomek" {
		t.Fatalf("by parent: got %v", got)
	}

	// Contact-detail filter.
	got, err = s.FindReaders(ctx, ReaderFilter{Phone: "555-0101"})
	if err != nil {
		t.Fatalf("FindReaders: %v", err)
	}
	if len(got) != 1 || got[0].ID != p.ID {
		t.Fatalf("by phone: got %v", got)
	}

	// Birth-date filter matches the calendar day.
	born := birthday(2015, time.June, 1)
	got, err = s.FindReaders(ctx, ReaderFilter{BirthDate: &born})
	if err != nil {
		t.Fatalf("FindReaders: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Tomek" {
		t.Fatalf("by birth date: got %v", got)
	}

	other := birthday(2015, time.June, 2)
	got, err = s.FindReaders(ctx, ReaderFilter{BirthDate: &other})
	if err != nil {
		t.Fatalf("FindReaders: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("no reader born that day: got %d, want 0", len(got))
	}
}

func TestFindReaders_LoanCountFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := createTestAuthor(t, s, "Stanisław", "Lem")
	b := createTestBook(t, s, "Solaris", a.ID, 1)
	r1 := createTestReader(t, s, "Anna", "Kowalska", birthday(1990, time.March, 7))
	createTestReader(t, s, "Jan", "Nowak", birthday(1985, time.January, 1))

	if err := s.Borrow(ctx, &domain.Loan{BookID: b.ID, ReaderID: r1.ID}); err != nil {
		t.Fatalf("Borrow: %v", err)
	}

	one := 1
	got, err := s.FindReaders(ctx, ReaderFilter{CurrentLoans: &one})
	if err != nil {
		t.Fatalf("FindReaders: %v", err)
	}
	if len(got) != 1 || got[0].ID != r1.ID {
		t.Fatalf("current loans = 1: got %v", got)
	}

	zero := 0
	got, err = s.FindReaders(ctx, ReaderFilter{LifetimeLoans: &zero})
	if err != nil {
		t.Fatalf("FindReaders: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Jan" {
		t.Fatalf("lifetime loans = 0: got %v", got)
	}
}

func TestUpdateReader(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := createTestReader(t, s, "Anna", "Kowalski", birthday(1990, time.March, 7))

	r.Surname = "Kowalska"
	r.BirthDate = birthday(1990, time.March, 8)
	if err := s.UpdateReader(ctx, r); err != nil {
		t.Fatalf("UpdateReader: %v", err)
	}

	got, err := s.GetReader(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetReader: %v", err)
	}
	if got.Surname != "Kowalska" || !got.BirthDate.Equal(birthday(1990, time.March, 8)) {
		t.Errorf("got %+v, want updated fields", got)
	}
}

func TestUpdateReader_NotFound(t *testing.T) {
	s := newTestStore(t)

	r := createTestReader(t, s, "Anna", "Kowalska", birthday(1990, time.March, 7))
	r.ID = "reader-gone"

	err := s.UpdateReader(context.Background(), r)
	if !errors.Is(err, errors.ErrReaderNotFound) {
		t.Fatalf("expected ErrReaderNotFound, got %v", err)
	}
}

func TestConvertChildToParent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := createTestParent(t, s, "Maria", "Nowak")
	c := createTestChild(t, s, "Tomek", "Nowak", p.ID, birthday(2007, time.June, 1))

	if err := s.ConvertChildToParent(ctx, c.ID, "Oak Ave 9", "555-0202"); err != nil {
		t.Fatalf("ConvertChildToParent: %v", err)
	}

	got, err := s.GetReader(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetReader: %v", err)
	}
	// Identity preserved, variant swapped.
	if got.ID != c.ID {
		t.Errorf("ID changed: got %q, want %q", got.ID, c.ID)
	}
	if !got.IsParent() {
		t.Errorf("Spec: got %q, want parent", got.Spec)
	}
	if got.Address != "Oak Ave 9" || got.Phone != "555-0202" {
		t.Errorf("contact details: got %q %q", got.Address, got.Phone)
	}
	if got.ParentID != "" {
		t.Errorf("parent reference should be cleared, got %q", got.ParentID)
	}
}

func TestConvertChildToParent_NotChild(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := createTestReader(t, s, "Anna", "Kowalska", birthday(1990, time.March, 7))

	err := s.ConvertChildToParent(ctx, r.ID, "Oak Ave 9", "555-0202")
	if !errors.Is(err, errors.ErrReaderNotChild) {
		t.Fatalf("expected ErrReaderNotChild, got %v", err)
	}
}

func TestConvertChildToParent_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.ConvertChildToParent(context.Background(), "nonexistent", "Oak Ave 9", "555-0202")
	if !errors.Is(err, errors.ErrReaderNotFound) {
		t.Fatalf("expected ErrReaderNotFound, got %v", err)
	}
}

func TestDeleteReader_CascadesLoans(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := createTestAuthor(t, s, "Stanisław", "Lem")
	b := createTestBook(t, s, "Solaris", a.ID, 1)
	r := createTestReader(t, s, "Anna", "Kowalska", birthday(1990, time.March, 7))

	if err := s.Borrow(ctx, &domain.Loan{BookID: b.ID, ReaderID: r.ID}); err != nil {
		t.Fatalf("Borrow: %v", err)
	}

	if err := s.DeleteReader(ctx, r.ID); err != nil {
		t.Fatalf("DeleteReader: %v", err)
	}

	loans, err := s.ListLoansByReader(ctx, r.ID)
	if err != nil {
		t.Fatalf("ListLoansByReader: %v", err)
	}
	if len(loans) != 0 {
		t.Errorf("loans after delete: got %d, want 0", len(loans))
	}

	// The copy is free again.
	book, err := s.GetBook(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if book.Available != 1 {
		t.Errorf("Available after reader delete: got %d, want 1", book.Available)
	}
}

func TestDeleteReader_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.DeleteReader(context.Background(), "nonexistent")
	if !errors.Is(err, errors.ErrReaderNotFound) {
		t.Fatalf("expected ErrReaderNotFound, got %v", err)
	}
}
