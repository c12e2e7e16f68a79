package service

import (
	"context"
	"testing"

	"github.com/libris/libris-server/internal/errors"
	"github.com/libris/libris-server/internal/store/sqlite"
)

func TestAuthorAdd(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	a, err := svc.authors.Add(ctx, NewAuthor{Name: "Ursula", Surname: "Le Guin"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if a.ID == "" {
		t.Error("Add should assign an ID")
	}
	if a.Name != "Ursula" || a.Surname != "Le Guin" {
		t.Errorf("got %q %q", a.Name, a.Surname)
	}
}

func TestAuthorAdd_NormalizesNames(t *testing.T) {
	svc := newTestServices(t)

	a, err := svc.authors.Add(context.Background(), NewAuthor{
		Name:    "  Ursula \t K.",
		Surname: " Le  Guin ",
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if a.Name != "Ursula K." {
		t.Errorf("Name: got %q, want %q", a.Name, "Ursula K.")
	}
	if a.Surname != "Le Guin" {
		t.Errorf("Surname: got %q, want %q", a.Surname, "Le Guin")
	}
}

func TestAuthorAdd_Validation(t *testing.T) {
	svc := newTestServices(t)

	_, err := svc.authors.Add(context.Background(), NewAuthor{Name: "Ursula"})
	if !errors.Is(err, errors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthorAdd_Duplicate(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	if _, err := svc.authors.Add(ctx, NewAuthor{Name: "Stanisław", Surname: "Lem"}); err != nil {
		t.Fatalf("first Add: %v", err)
	}

	// Whitespace differences normalize away before the duplicate check.
	_, err := svc.authors.Add(ctx, NewAuthor{Name: " Stanisław ", Surname: "Lem"})
	if !errors.Is(err, errors.ErrAuthorExists) {
		t.Fatalf("expected ErrAuthorExists, got %v", err)
	}

	// Same surname with a different name is fine.
	if _, err := svc.authors.Add(ctx, NewAuthor{Name: "Tomasz", Surname: "Lem"}); err != nil {
		t.Fatalf("different name: %v", err)
	}
}

func TestAuthorGet_NotFound(t *testing.T) {
	svc := newTestServices(t)

	_, err := svc.authors.Get(context.Background(), "author-missing")
	if !errors.Is(err, errors.ErrAuthorNotFound) {
		t.Fatalf("expected ErrAuthorNotFound, got %v", err)
	}
}

func TestAuthorFind_Substring(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	names := []NewAuthor{
		{Name: "Ursula", Surname: "Le Guin"},
		{Name: "Stanisław", Surname: "Lem"},
		{Name: "Frank", Surname: "Herbert"},
	}
	for _, n := range names {
		if _, err := svc.authors.Add(ctx, n); err != nil {
			t.Fatalf("Add %s: %v", n.Surname, err)
		}
	}

	got, err := svc.authors.Find(ctx, sqlite.AuthorFilter{Surname: "Le"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("surname 'Le': got %d authors, want 2", len(got))
	}
}

func TestAuthorUpdate(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	a, err := svc.authors.Add(ctx, NewAuthor{Name: "Ursula", Surname: "LeGuin"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	updated, err := svc.authors.Update(ctx, a.ID, AuthorUpdate{Surname: strPtr("Le Guin")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Surname != "Le Guin" {
		t.Errorf("Surname: got %q", updated.Surname)
	}
	if updated.Name != "Ursula" {
		t.Errorf("Name should be unchanged, got %q", updated.Name)
	}
}

func TestAuthorUpdate_DuplicateExcludesSelf(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	a, err := svc.authors.Add(ctx, NewAuthor{Name: "Stanisław", Surname: "Lem"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := svc.authors.Add(ctx, NewAuthor{Name: "Frank", Surname: "Herbert"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Keeping the same name is not a collision with yourself.
	if _, err := svc.authors.Update(ctx, a.ID, AuthorUpdate{Name: strPtr("Stanisław")}); err != nil {
		t.Fatalf("no-op rename: %v", err)
	}

	// Renaming onto another author is.
	_, err = svc.authors.Update(ctx, a.ID, AuthorUpdate{
		Name:    strPtr("Frank"),
		Surname: strPtr("Herbert"),
	})
	if !errors.Is(err, errors.ErrAuthorExists) {
		t.Fatalf("expected ErrAuthorExists, got %v", err)
	}
}

func TestAuthorDelete(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	a, err := svc.authors.Add(ctx, NewAuthor{Name: "Frank", Surname: "Herbert"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := svc.authors.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.authors.Get(ctx, a.ID); !errors.Is(err, errors.ErrAuthorNotFound) {
		t.Fatalf("expected ErrAuthorNotFound after delete, got %v", err)
	}
}

func TestAuthorDelete_WithBooks(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	a, err := svc.authors.Add(ctx, NewAuthor{Name: "Frank", Surname: "Herbert"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := svc.books.Add(ctx, NewBook{Title: "Dune", AuthorID: a.ID, Quantity: 3}); err != nil {
		t.Fatalf("Add book: %v", err)
	}

	err = svc.authors.Delete(ctx, a.ID)
	if !errors.Is(err, errors.ErrAuthorHasBooks) {
		t.Fatalf("expected ErrAuthorHasBooks, got %v", err)
	}
}

func TestAuthorBooks(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	a, err := svc.authors.Add(ctx, NewAuthor{Name: "Frank", Surname: "Herbert"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	for _, title := range []string{"Dune", "Dune Messiah"} {
		if _, err := svc.books.Add(ctx, NewBook{Title: title, AuthorID: a.ID, Quantity: 1}); err != nil {
			t.Fatalf("Add %s: %v", title, err)
		}
	}

	books, err := svc.authors.Books(ctx, a.ID)
	if err != nil {
		t.Fatalf("Books: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("got %d books, want 2", len(books))
	}

	if _, err := svc.authors.Books(ctx, "author-missing"); !errors.Is(err, errors.ErrAuthorNotFound) {
		t.Fatalf("expected ErrAuthorNotFound, got %v", err)
	}
}
