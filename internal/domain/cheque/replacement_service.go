package cheque

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// ReplacementInput carries the fields of the replacement cheque issued for a
// bounced original. Tenant and invoice default to the original's unless an
// invoice override is supplied.
type ReplacementInput struct {
	ChequeNumber string
	BankName     string
	Amount       valueobject.Money
	ChequeDate   time.Time
	InvoiceID    *uuid.UUID // Optional override; nil inherits the original's invoice
	Notes        string
}

// ReplacementService links a bounced cheque to the replacement issued in its
// place. It is a pure domain service: persistence of both records in a single
// transaction is the application layer's responsibility.
type ReplacementService struct{}

// NewReplacementService creates a new ReplacementService
func NewReplacementService() *ReplacementService {
	return &ReplacementService{}
}

// Replace creates the replacement cheque for a bounced original and wires the
// chain in both directions: the original becomes REPLACED with a forward
// pointer, the new record starts RECEIVED with a back pointer.
//
// A record acquires a replacement pointer at most once, and only from the
// BOUNCED state, which keeps every chain acyclic by construction.
func (s *ReplacementService) Replace(original *PDC, input ReplacementInput) (*PDC, error) {
	if original == nil {
		return nil, shared.ErrNotFound
	}
	if original.HasReplacement() || original.Status == PDCStatusReplaced {
		return nil, shared.NewDomainError("ALREADY_REPLACED",
			"A replacement cheque has already been issued for this cheque")
	}
	if original.Status != PDCStatusBounced {
		return nil, original.invalidTransition("replace")
	}
	if strings.EqualFold(strings.TrimSpace(input.ChequeNumber), original.ChequeNumber) {
		return nil, shared.NewDomainError("INVALID_CHEQUE_NUMBER",
			"Replacement cheque number must differ from the bounced cheque")
	}

	invoiceID := original.InvoiceID
	if input.InvoiceID != nil {
		invoiceID = input.InvoiceID
	}

	replacement, err := NewPDC(
		original.TenantID,
		input.ChequeNumber,
		input.BankName,
		input.Amount,
		input.ChequeDate,
		invoiceID,
		original.LeaseID,
		input.Notes,
	)
	if err != nil {
		return nil, err
	}

	replacement.linkOriginal(original.ID)
	original.markReplaced(replacement.ID)

	return replacement, nil
}
