// Package main prints a summary of the library database: table counts
// and the open and overdue loans.
//
// Usage:
//
//	DB_PATH=~/Libris/libris.db go run ./cmd/dbinspect
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/libris/libris-server/internal/store/sqlite"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/Libris/libris.db")
	}

	s, err := sqlite.Open(dbPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	fmt.Println("=== Library Database Inspection ===")
	fmt.Println()

	authors, err := s.ListAuthors(ctx)
	if err != nil {
		log.Fatalf("Failed to list authors: %v", err)
	}
	books, err := s.ListBooks(ctx)
	if err != nil {
		log.Fatalf("Failed to list books: %v", err)
	}
	readers, err := s.ListReaders(ctx)
	if err != nil {
		log.Fatalf("Failed to list readers: %v", err)
	}
	loans, err := s.ListLoans(ctx)
	if err != nil {
		log.Fatalf("Failed to list loans: %v", err)
	}
	policy, err := s.GetPolicy(ctx)
	if err != nil {
		log.Fatalf("Failed to load policy: %v", err)
	}

	copies, available := 0, 0
	for _, b := range books {
		copies += b.Quantity
		available += b.Available
	}

	open, overdue := 0, 0
	now := time.Now()
	for _, l := range loans {
		if !l.IsOpen() {
			continue
		}
		open++
		if l.IsOverdue(policy.MaxLoanDays, now) {
			overdue++
			fmt.Printf("OVERDUE: loan %s, book %s, reader %s, due %s\n",
				l.ID, l.BookID, l.ReaderID,
				l.DueDate(policy.MaxLoanDays).Format("2006-01-02"))
		}
	}
	if overdue > 0 {
		fmt.Println()
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Authors:  %d\n", len(authors))
	fmt.Printf("Books:    %d titles, %d copies (%d available)\n", len(books), copies, available)
	fmt.Printf("Readers:  %d\n", len(readers))
	fmt.Printf("Loans:    %d total, %d open, %d overdue\n", len(loans), open, overdue)
	fmt.Printf("Policy:   %d loan days, %d open loans max, min age %d\n",
		policy.MaxLoanDays, policy.MaxOpenLoans, policy.MinBorrowerAge)
}
