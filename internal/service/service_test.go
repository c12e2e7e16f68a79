package service

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/libris/libris-server/internal/store/sqlite"
	"github.com/libris/libris-server/internal/validation"
)

// services bundles everything the tests exercise, backed by one real
// sqlite store in a temp directory.
type services struct {
	authors *AuthorService
	books   *BookService
	readers *ReaderService
	loans   *LoanService
	policy  *PolicyService
}

func newTestServices(t *testing.T) *services {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	store, err := sqlite.Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	v := validation.New()
	readers := NewReaderService(store, v, logger)
	return &services{
		authors: NewAuthorService(store, v, logger),
		books:   NewBookService(store, v, logger),
		readers: readers,
		loans:   NewLoanService(store, readers, logger),
		policy:  NewPolicyService(store, logger),
	}
}

func birthday(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// adultBirthday is old enough to pass any reasonable age policy.
func adultBirthday() time.Time {
	return birthday(1980, time.May, 12)
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }
