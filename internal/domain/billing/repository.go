package billing

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceRepository is the engine's read/write contract with the invoice
// ledger. The engine reads invoices and applies payments; it never creates
// or deletes them. Finders return shared.ErrNotFound on a miss, never a
// nil invoice with a nil error.
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// FindByIDForUpdate reads the invoice under a row lock so that
	// concurrent clears against the same invoice serialize their updates.
	// Only meaningful inside a transaction scope.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)
	Save(ctx context.Context, invoice *Invoice) error
}
