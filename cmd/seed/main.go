// Package main provides a tool to seed the database with sample
// library data.
//
// It goes through the regular services, so seeded data passes the same
// normalization, duplicate, and eligibility checks as real input.
//
// Usage:
//
//	go run ./cmd/seed -db-path ~/Libris/libris.db
//	DB_PATH=~/Libris/libris.db go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/samber/do/v2"

	"github.com/libris/libris-server/internal/di"
	"github.com/libris/libris-server/internal/service"
)

type seedAuthor struct {
	name    string
	surname string
	books   []seedBook
}

type seedBook struct {
	title    string
	quantity int
}

var catalog = []seedAuthor{
	{"Stanisław", "Lem", []seedBook{
		{"Solaris", 3},
		{"The Invincible", 2},
		{"The Cyberiad", 2},
	}},
	{"Ursula", "Le Guin", []seedBook{
		{"A Wizard of Earthsea", 4},
		{"The Dispossessed", 2},
	}},
	{"Frank", "Herbert", []seedBook{
		{"Dune", 5},
		{"Dune Messiah", 2},
	}},
	{"Terry", "Pratchett", []seedBook{
		{"Guards! Guards!", 3},
		{"Small Gods", 1},
	}},
}

func main() {
	injector := di.NewContainer()
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer injector.Shutdown()

	authors := do.MustInvoke[*service.AuthorService](injector)
	books := do.MustInvoke[*service.BookService](injector)
	readers := do.MustInvoke[*service.ReaderService](injector)
	loans := do.MustInvoke[*service.LoanService](injector)

	ctx := context.Background()

	// Catalog.
	var bookIDs []string
	for _, sa := range catalog {
		author, err := authors.Add(ctx, service.NewAuthor{Name: sa.name, Surname: sa.surname})
		if err != nil {
			log.Fatalf("Failed to add author %s %s: %v", sa.name, sa.surname, err)
		}
		fmt.Printf("Author: %s %s (%s)\n", author.Name, author.Surname, author.ID)

		for _, sb := range sa.books {
			book, err := books.Add(ctx, service.NewBook{
				Title:    sb.title,
				AuthorID: author.ID,
				Quantity: sb.quantity,
			})
			if err != nil {
				log.Fatalf("Failed to add book %s: %v", sb.title, err)
			}
			fmt.Printf("  Book: %s (%d copies)\n", book.Title, book.Quantity)
			bookIDs = append(bookIDs, book.ID)
		}
	}

	// Readers: two plain adults, one family.
	var readerIDs []string
	for _, r := range []service.NewReader{
		{Name: "Anna", Surname: "Kowalska", BirthDate: date(1990, 3, 7)},
		{Name: "Jan", Surname: "Nowak", BirthDate: date(1985, 11, 23)},
	} {
		reader, err := readers.Add(ctx, r)
		if err != nil {
			log.Fatalf("Failed to add reader %s: %v", r.Surname, err)
		}
		fmt.Printf("Reader: %s %s (%s)\n", reader.Name, reader.Surname, reader.ID)
		readerIDs = append(readerIDs, reader.ID)
	}

	parent, err := readers.AddParent(ctx, service.NewParent{
		Name:      "Maria",
		Surname:   "Wiśniewska",
		BirthDate: date(1982, 6, 14),
		Address:   "ul. Długa 1, Kraków",
		Phone:     "+48 600 100 200",
	})
	if err != nil {
		log.Fatalf("Failed to add parent: %v", err)
	}
	fmt.Printf("Parent: %s %s (%s)\n", parent.Name, parent.Surname, parent.ID)
	readerIDs = append(readerIDs, parent.ID)

	child, err := readers.AddChild(ctx, service.NewChild{
		Name:      "Zosia",
		Surname:   "Wiśniewska",
		BirthDate: date(2015, 9, 2),
		ParentID:  parent.ID,
	})
	if err != nil {
		log.Fatalf("Failed to add child: %v", err)
	}
	fmt.Printf("Child: %s %s (parent %s)\n", child.Name, child.Surname, child.ParentID)
	readerIDs = append(readerIDs, child.ID)

	// A few loans so the derived counts have something to show.
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	loansCreated := 0
	for _, readerID := range readerIDs {
		for range 2 {
			bookID := bookIDs[rng.Intn(len(bookIDs))]
			if _, err := loans.Borrow(ctx, bookID, readerID); err != nil {
				// Ineligible reader or copy already out; move on.
				continue
			}
			loansCreated++
		}
	}
	fmt.Printf("\nSeeded %d authors, %d books, %d readers, %d loans\n",
		len(catalog), len(bookIDs), len(readerIDs), loansCreated)
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}
