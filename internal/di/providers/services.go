package providers

import (
	"github.com/samber/do/v2"

	"github.com/libris/libris-server/internal/logger"
	"github.com/libris/libris-server/internal/service"
	"github.com/libris/libris-server/internal/validation"
)

// ProvideAuthorService provides the author catalog service.
func ProvideAuthorService(i do.Injector) (*service.AuthorService, error) {
	store := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthorService(store.Store, v, log.Logger), nil
}

// ProvideBookService provides the book catalog service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	store := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(store.Store, v, log.Logger), nil
}

// ProvideReaderService provides the reader registration service.
func ProvideReaderService(i do.Injector) (*service.ReaderService, error) {
	store := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReaderService(store.Store, v, log.Logger), nil
}

// ProvideLoanService provides the circulation service.
func ProvideLoanService(i do.Injector) (*service.LoanService, error) {
	store := do.MustInvoke[*StoreHandle](i)
	readers := do.MustInvoke[*service.ReaderService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLoanService(store.Store, readers, log.Logger), nil
}

// ProvidePolicyService provides the circulation policy service.
func ProvidePolicyService(i do.Injector) (*service.PolicyService, error) {
	store := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPolicyService(store.Store, log.Logger), nil
}
