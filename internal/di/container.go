// Package di provides dependency injection configuration for the
// Libris server.
package di

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/libris/libris-server/internal/config"
	"github.com/libris/libris-server/internal/di/providers"
	"github.com/libris/libris-server/internal/logger"
	"github.com/libris/libris-server/internal/service"
	"github.com/libris/libris-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Business services
	do.Provide(injector, providers.ProvideAuthorService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideReaderService)
	do.Provide(injector, providers.ProvideLoanService)
	do.Provide(injector, providers.ProvidePolicyService)

	return injector
}

// Bootstrap initializes all services and seeds the circulation policy
// from config on first run.
func Bootstrap(injector *do.RootScope) error {
	cfg := do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)

	_ = do.MustInvoke[*service.AuthorService](injector)
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.ReaderService](injector)
	_ = do.MustInvoke[*service.LoanService](injector)
	policy := do.MustInvoke[*service.PolicyService](injector)

	return policy.EnsureDefaults(context.Background(), cfg.Circulation)
}
