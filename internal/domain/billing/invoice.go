package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the billing status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusSent          InvoiceStatus = "SENT"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusOverdue       InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartiallyPaid,
		InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// Invoice is the invoice-ledger collaborator as seen from the cheque engine.
// The engine only ever applies payments: paid amount grows, balance and
// status are recomputed, nothing is ever decremented or deleted here.
type Invoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber string
	LeaseID       *uuid.UUID
	TotalAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
	BalanceAmount decimal.Decimal
	Status        InvoiceStatus
	DueDate       *time.Time
	PaidAt        *time.Time
}

// NewInvoice creates an invoice. Exposed mainly for collaborator setup in
// tests and migrations; invoice creation in production belongs to the
// billing service, not this engine.
func NewInvoice(tenantID uuid.UUID, invoiceNumber string, totalAmount valueobject.Money, dueDate *time.Time) (*Invoice, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if !totalAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice total must be positive")
	}

	return &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceNumber:       invoiceNumber,
		TotalAmount:         totalAmount.Amount(),
		PaidAmount:          decimal.Zero,
		BalanceAmount:       totalAmount.Amount(),
		Status:              InvoiceStatusSent,
		DueDate:             dueDate,
	}, nil
}

// ApplyPayment credits a cleared cheque amount against the invoice.
// The balance never goes below zero even when cheques overpay the total,
// and the status is recomputed from the new amounts.
func (inv *Invoice) ApplyPayment(amount valueobject.Money) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot apply payment to a %s invoice", inv.Status))
	}

	inv.PaidAmount = inv.PaidAmount.Add(amount.Amount())
	balance := inv.TotalAmount.Sub(inv.PaidAmount)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	inv.BalanceAmount = balance

	switch {
	case inv.BalanceAmount.IsZero():
		now := time.Now()
		inv.Status = InvoiceStatusPaid
		inv.PaidAt = &now
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	case inv.PaidAmount.IsPositive():
		inv.Status = InvoiceStatusPartiallyPaid
		inv.AddDomainEvent(NewInvoicePaymentAppliedEvent(inv, amount.Amount()))
	}

	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	return nil
}

// IsPaid returns true if the invoice is fully paid
func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// GetBalanceMoney returns the outstanding balance as Money
func (inv *Invoice) GetBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyAED(inv.BalanceAmount)
}
