package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/libris/libris-server/internal/domain"
	"github.com/libris/libris-server/internal/errors"
)

func TestCreateAndGetBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := createTestAuthor(t, s, "Stanisław", "Lem")
	b := createTestBook(t, s, "Solaris", a.ID, 3)

	got, err := s.GetBook(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != "Solaris" {
		t.Errorf("Title: got %q, want %q", got.Title, "Solaris")
	}
	if got.AuthorID != a.ID {
		t.Errorf("AuthorID: got %q, want %q", got.AuthorID, a.ID)
	}
	if got.Quantity != 3 {
		t.Errorf("Quantity: got %d, want 3", got.Quantity)
	}
	// No loans yet, all copies free.
	if got.Available != 3 {
		t.Errorf("Available: got %d, want 3", got.Available)
	}
}

func TestGetBook_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetBook(context.Background(), "nonexistent")
	if !errors.Is(err, errors.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}

func TestCreateBook_UnknownAuthorRejected(t *testing.T) {
	s := newTestStore(t)

	b := &domain.Book{Title: "Orphan", AuthorID: "author-missing", Quantity: 1}
	if err := s.CreateBook(context.Background(), b); err == nil {
		t.Fatal("expected foreign key error, got nil")
	}
}

func TestGetBook_AvailabilityTracksOpenLoans(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := createTestAuthor(t, s, "Stanisław", "Lem")
	b := createTestBook(t, s, "Solaris", a.ID, 2)
	r1 := createTestReader(t, s, "Anna", "Kowalska", time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC))
	r2 := createTestReader(t, s, "Jan", "Nowak", time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC))

	if err := s.Borrow(ctx, &domain.Loan{BookID: b.ID, ReaderID: r1.ID}); err != nil {
		t.Fatalf("Borrow r1: %v", err)
	}

	got, err := s.GetBook(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Available != 1 {
		t.Errorf("after one borrow: Available got %d, want 1", got.Available)
	}

	if err := s.Borrow(ctx, &domain.Loan{BookID: b.ID, ReaderID: r2.ID}); err != nil {
		t.Fatalf("Borrow r2: %v", err)
	}

	got, err = s.GetBook(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Available != 0 {
		t.Errorf("after two borrows: Available got %d, want 0", got.Available)
	}

	// Returning frees a copy.
	if err := s.Return(ctx, b.ID, r1.ID, time.Now()); err != nil {
		t.Fatalf("Return: %v", err)
	}
	got, err = s.GetBook(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Available != 1 {
		t.Errorf("after return: Available got %d, want 1", got.Available)
	}
}

func TestFindBooks_ExactMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := createTestAuthor(t, s, "Stanisław", "Lem")
	createTestBook(t, s, "Solaris", a.ID, 3)
	createTestBook(t, s, "The Invincible", a.ID, 1)

	// Titles match exactly, not by substring.
	got, err := s.FindBooks(ctx, BookFilter{Title: "Solaris"})
	if err != nil {
		t.Fatalf("FindBooks: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("exact title: got %d books, want 1", len(got))
	}

	got, err = s.FindBooks(ctx, BookFilter{Title: "Sola"})
	if err != nil {
		t.Fatalf("FindBooks: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("partial title: got %d books, want 0", len(got))
	}
}

func TestFindBooks_ByAuthorAndCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lem := createTestAuthor(t, s, "Stanisław", "Lem")
	herbert := createTestAuthor(t, s, "Frank", "Herbert")
	createTestBook(t, s, "Solaris", lem.ID, 3)
	createTestBook(t, s, "The Invincible", lem.ID, 1)
	createTestBook(t, s, "Dune", herbert.ID, 3)

	got, err := s.FindBooks(ctx, BookFilter{AuthorID: lem.ID})
	if err != nil {
		t.Fatalf("FindBooks: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("by author: got %d books, want 2", len(got))
	}

	qty := 3
	got, err = s.FindBooks(ctx, BookFilter{Quantity: &qty})
	if err != nil {
		t.Fatalf("FindBooks: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("by quantity: got %d books, want 2", len(got))
	}

	avail := 3
	got, err = s.FindBooks(ctx, BookFilter{AuthorID: lem.ID, Available: &avail})
	if err != nil {
		t.Fatalf("FindBooks: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Solaris" {
		t.Fatalf("by availability: got %v, want Solaris only", got)
	}
}

func TestCountBooksByAuthor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lem := createTestAuthor(t, s, "Stanisław", "Lem")
	herbert := createTestAuthor(t, s, "Frank", "Herbert")
	createTestBook(t, s, "Solaris", lem.ID, 1)
	createTestBook(t, s, "The Invincible", lem.ID, 1)

	n, err := s.CountBooksByAuthor(ctx, lem.ID)
	if err != nil {
		t.Fatalf("CountBooksByAuthor: %v", err)
	}
	if n != 2 {
		t.Errorf("got %d, want 2", n)
	}

	n, err = s.CountBooksByAuthor(ctx, herbert.ID)
	if err != nil {
		t.Fatalf("CountBooksByAuthor: %v", err)
	}
	if n != 0 {
		t.Errorf("got %d, want 0", n)
	}
}

func TestUpdateBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lem := createTestAuthor(t, s, "Stanisław", "Lem")
	herbert := createTestAuthor(t, s, "Frank", "Herbert")
	b := createTestBook(t, s, "Solariss", lem.ID, 1)

	b.Title = "Solaris"
	b.AuthorID = herbert.ID
	b.Quantity = 5
	if err := s.UpdateBook(ctx, b); err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}

	got, err := s.GetBook(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != "Solaris" || got.AuthorID != herbert.ID || got.Quantity != 5 {
		t.Errorf("got %+v, want updated fields", got)
	}
}

func TestUpdateBook_NotFound(t *testing.T) {
	s := newTestStore(t)

	a := createTestAuthor(t, s, "Stanisław", "Lem")
	b := createTestBook(t, s, "Solaris", a.ID, 1)
	b.ID = "book-gone"

	err := s.UpdateBook(context.Background(), b)
	if !errors.Is(err, errors.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}

func TestDeleteBook_CascadesLoans(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := createTestAuthor(t, s, "Stanisław", "Lem")
	b := createTestBook(t, s, "Solaris", a.ID, 1)
	r := createTestReader(t, s, "Anna", "Kowalska", time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC))

	if err := s.Borrow(ctx, &domain.Loan{BookID: b.ID, ReaderID: r.ID}); err != nil {
		t.Fatalf("Borrow: %v", err)
	}

	if err := s.DeleteBook(ctx, b.ID); err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}

	loans, err := s.ListLoansByBook(ctx, b.ID)
	if err != nil {
		t.Fatalf("ListLoansByBook: %v", err)
	}
	if len(loans) != 0 {
		t.Errorf("loans after delete: got %d, want 0", len(loans))
	}
}

func TestDeleteBook_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.DeleteBook(context.Background(), "nonexistent")
	if !errors.Is(err, errors.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}
