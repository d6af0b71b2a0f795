package cheque

import (
	"context"

	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/cheque"
)

// TransactionScope provides transactional access to the cheque and invoice
// repositories. When a function is executed within a transaction scope, all
// repository operations belong to the same database transaction and commit or
// roll back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories within a
// transaction. Both repositories share the same underlying transaction, which
// is what makes clear-and-reconcile and bounce-and-replace single units of
// work.
type TransactionalRepositories interface {
	// PDCRepo returns the cheque repository scoped to the current transaction
	PDCRepo() cheque.PDCRepository
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() billing.InvoiceRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing or when transaction support is not
// required.
type NoOpTransactionScope struct {
	pdcRepo     cheque.PDCRepository
	invoiceRepo billing.InvoiceRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(pdcRepo cheque.PDCRepository, invoiceRepo billing.InvoiceRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		pdcRepo:     pdcRepo,
		invoiceRepo: invoiceRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// PDCRepo returns the cheque repository.
func (s *NoOpTransactionScope) PDCRepo() cheque.PDCRepository {
	return s.pdcRepo
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() billing.InvoiceRepository {
	return s.invoiceRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
