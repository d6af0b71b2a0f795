package cheque

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PDCStatus represents the lifecycle status of a post-dated cheque
type PDCStatus string

const (
	PDCStatusReceived  PDCStatus = "RECEIVED"  // Registered, waiting for its cheque date
	PDCStatusDue       PDCStatus = "DUE"       // Cheque date reached, ready for deposit
	PDCStatusDeposited PDCStatus = "DEPOSITED" // Handed to the bank, awaiting clearance
	PDCStatusCleared   PDCStatus = "CLEARED"   // Funds received; reconciled against the invoice
	PDCStatusBounced   PDCStatus = "BOUNCED"   // Returned by the bank; may spawn a replacement
	PDCStatusCancelled PDCStatus = "CANCELLED" // Voided before deposit
	PDCStatusReplaced  PDCStatus = "REPLACED"  // Bounced and superseded by a replacement cheque
	PDCStatusWithdrawn PDCStatus = "WITHDRAWN" // Pulled back by the tenant, possibly settled another way
)

// IsValid checks if the status is a valid PDCStatus
func (s PDCStatus) IsValid() bool {
	switch s {
	case PDCStatusReceived, PDCStatusDue, PDCStatusDeposited, PDCStatusCleared,
		PDCStatusBounced, PDCStatusCancelled, PDCStatusReplaced, PDCStatusWithdrawn:
		return true
	}
	return false
}

// String returns the string representation of PDCStatus
func (s PDCStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transition is permitted from this status
func (s PDCStatus) IsTerminal() bool {
	return s == PDCStatusCleared || s == PDCStatusCancelled ||
		s == PDCStatusReplaced || s == PDCStatusWithdrawn
}

// IsPending returns true while the cheque still counts toward upcoming dues
func (s PDCStatus) IsPending() bool {
	return s == PDCStatusReceived || s == PDCStatusDue
}

// CanTransitionTo checks if the status can transition to the target status.
// This table is the single transition authority; every mutating operation
// on the aggregate consults it.
func (s PDCStatus) CanTransitionTo(target PDCStatus) bool {
	switch s {
	case PDCStatusReceived:
		return target == PDCStatusDue || target == PDCStatusDeposited ||
			target == PDCStatusWithdrawn || target == PDCStatusCancelled
	case PDCStatusDue:
		return target == PDCStatusDeposited || target == PDCStatusWithdrawn ||
			target == PDCStatusCancelled
	case PDCStatusDeposited:
		return target == PDCStatusCleared || target == PDCStatusBounced
	case PDCStatusBounced:
		return target == PDCStatusReplaced || target == PDCStatusWithdrawn
	case PDCStatusCleared, PDCStatusCancelled, PDCStatusReplaced, PDCStatusWithdrawn:
		return false
	}
	return false
}

// PaymentMethod is the alternate settlement method recorded on withdrawal
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodOnline       PaymentMethod = "ONLINE"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodCash, PaymentMethodCard, PaymentMethodOnline:
		return true
	}
	return false
}

// PDC represents a post-dated cheque aggregate root.
// The record is created once at registration and then advances only through
// the transition methods below; amount, tenant and invoice links are
// immutable after creation.
type PDC struct {
	shared.TenantAggregateRoot
	ChequeNumber string
	BankName     string
	InvoiceID    *uuid.UUID // Invoice this cheque is expected to settle
	LeaseID      *uuid.UUID // Informational lease reference
	Amount       decimal.Decimal
	ChequeDate   time.Time // Date printed on the cheque
	Status       PDCStatus

	DepositDate    *time.Time
	ClearedDate    *time.Time
	BouncedDate    *time.Time
	WithdrawalDate *time.Time

	// Chain pointers: forward to the replacement issued for this cheque,
	// backward to the bounced original this cheque replaces.
	ReplacementPDCID *uuid.UUID
	OriginalPDCID    *uuid.UUID

	BankAccountID    *uuid.UUID // Company account used for deposit
	BounceReason     string
	WithdrawalReason string
	NewPaymentMethod PaymentMethod
	TransactionID    string // Reference of the alternate payment, when any
	Notes            string
}

// NewPDC creates a new post-dated cheque in RECEIVED status.
// invoiceID and leaseID are optional links to collaborator entities.
func NewPDC(
	tenantID uuid.UUID,
	chequeNumber string,
	bankName string,
	amount valueobject.Money,
	chequeDate time.Time,
	invoiceID *uuid.UUID,
	leaseID *uuid.UUID,
	notes string,
) (*PDC, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	chequeNumber = strings.TrimSpace(chequeNumber)
	if chequeNumber == "" {
		return nil, shared.NewDomainError("INVALID_CHEQUE_NUMBER", "Cheque number cannot be empty")
	}
	if len(chequeNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_CHEQUE_NUMBER", "Cheque number cannot exceed 50 characters")
	}
	if strings.TrimSpace(bankName) == "" {
		return nil, shared.NewDomainError("INVALID_BANK_NAME", "Bank name cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Cheque amount must be positive")
	}
	if chequeDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_CHEQUE_DATE", "Cheque date is required")
	}

	p := &PDC{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ChequeNumber:        chequeNumber,
		BankName:            strings.TrimSpace(bankName),
		InvoiceID:           invoiceID,
		LeaseID:             leaseID,
		Amount:              amount.Amount(),
		ChequeDate:          chequeDate,
		Status:              PDCStatusReceived,
		Notes:               notes,
	}

	p.AddDomainEvent(NewPDCRegisteredEvent(p))

	return p, nil
}

// invalidTransition reports an attempted transition not permitted by the
// status table, naming both the attempted action and the current status.
func (p *PDC) invalidTransition(action string) error {
	return shared.NewDomainError("INVALID_TRANSITION",
		fmt.Sprintf("cannot %s a %s cheque", action, p.Status))
}

func (p *PDC) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// MarkDue reclassifies a RECEIVED cheque whose cheque date has arrived.
// Driven by the scheduled reclassification job, but any caller goes through
// the same transition check.
func (p *PDC) MarkDue() error {
	if !p.Status.CanTransitionTo(PDCStatusDue) || p.Status != PDCStatusReceived {
		return p.invalidTransition("mark due")
	}

	p.Status = PDCStatusDue
	p.touch()
	p.AddDomainEvent(NewPDCStatusChangedEvent(p, PDCStatusReceived, PDCStatusDue))

	return nil
}

// Deposit records that the cheque was handed to the bank against the given
// company account.
func (p *PDC) Deposit(depositDate time.Time, bankAccountID uuid.UUID) error {
	if !p.Status.CanTransitionTo(PDCStatusDeposited) {
		return p.invalidTransition("deposit")
	}
	if depositDate.IsZero() {
		return shared.NewDomainError("INVALID_DEPOSIT_DATE", "Deposit date is required")
	}
	if bankAccountID == uuid.Nil {
		return shared.NewDomainError("INVALID_BANK_ACCOUNT", "Bank account ID is required for deposit")
	}

	from := p.Status
	p.Status = PDCStatusDeposited
	p.DepositDate = &depositDate
	p.BankAccountID = &bankAccountID
	p.touch()
	p.AddDomainEvent(NewPDCDepositedEvent(p, from))

	return nil
}

// Clear records that the deposited cheque cleared. Invoice reconciliation
// happens in the application layer within the same unit of work.
func (p *PDC) Clear(clearedDate time.Time) error {
	if !p.Status.CanTransitionTo(PDCStatusCleared) {
		return p.invalidTransition("clear")
	}
	if clearedDate.IsZero() {
		return shared.NewDomainError("INVALID_CLEARED_DATE", "Cleared date is required")
	}

	from := p.Status
	p.Status = PDCStatusCleared
	p.ClearedDate = &clearedDate
	p.touch()
	p.AddDomainEvent(NewPDCClearedEvent(p, from))

	return nil
}

// Bounce records that the bank returned the cheque unpaid.
func (p *PDC) Bounce(bouncedDate time.Time, reason string) error {
	if !p.Status.CanTransitionTo(PDCStatusBounced) {
		return p.invalidTransition("bounce")
	}
	if bouncedDate.IsZero() {
		return shared.NewDomainError("INVALID_BOUNCED_DATE", "Bounced date is required")
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_BOUNCE_REASON", "Bounce reason is required")
	}

	from := p.Status
	p.Status = PDCStatusBounced
	p.BouncedDate = &bouncedDate
	p.BounceReason = strings.TrimSpace(reason)
	p.touch()
	p.AddDomainEvent(NewPDCBouncedEvent(p, from))

	return nil
}

// Withdraw pulls the cheque back at the tenant's request. When the amount was
// settled through an alternate payment method, both the method and its
// transaction reference must be supplied together.
func (p *PDC) Withdraw(withdrawalDate time.Time, reason string, method PaymentMethod, transactionID string) error {
	if !p.Status.CanTransitionTo(PDCStatusWithdrawn) {
		return p.invalidTransition("withdraw")
	}
	if withdrawalDate.IsZero() {
		return shared.NewDomainError("INVALID_WITHDRAWAL_DATE", "Withdrawal date is required")
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_WITHDRAWAL_REASON", "Withdrawal reason is required")
	}
	if method != "" {
		if !method.IsValid() {
			return shared.NewDomainError("INVALID_PAYMENT_METHOD",
				fmt.Sprintf("Unknown payment method %q", string(method)))
		}
		if strings.TrimSpace(transactionID) == "" {
			return shared.NewDomainError("INVALID_TRANSACTION_ID",
				"Transaction ID is required when an alternate payment method is recorded")
		}
	} else if strings.TrimSpace(transactionID) != "" {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD",
			"Payment method is required when a transaction ID is recorded")
	}

	from := p.Status
	p.Status = PDCStatusWithdrawn
	p.WithdrawalDate = &withdrawalDate
	p.WithdrawalReason = strings.TrimSpace(reason)
	p.NewPaymentMethod = method
	p.TransactionID = strings.TrimSpace(transactionID)
	p.touch()
	p.AddDomainEvent(NewPDCWithdrawnEvent(p, from))

	return nil
}

// Cancel voids a cheque that was never deposited.
func (p *PDC) Cancel() error {
	if !p.Status.CanTransitionTo(PDCStatusCancelled) {
		return p.invalidTransition("cancel")
	}

	from := p.Status
	p.Status = PDCStatusCancelled
	p.touch()
	p.AddDomainEvent(NewPDCStatusChangedEvent(p, from, PDCStatusCancelled))

	return nil
}

// markReplaced finalizes the bounced side of a replacement. Only the
// ReplacementService calls this; the at-most-one-replacement invariant is
// checked there before the link is made.
func (p *PDC) markReplaced(replacementID uuid.UUID) {
	p.Status = PDCStatusReplaced
	p.ReplacementPDCID = &replacementID
	p.touch()
	p.AddDomainEvent(NewPDCReplacedEvent(p, replacementID))
}

// linkOriginal sets the back pointer on a freshly created replacement cheque.
func (p *PDC) linkOriginal(originalID uuid.UUID) {
	p.OriginalPDCID = &originalID
}

// GetAmountMoney returns the cheque amount as Money
func (p *PDC) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyAED(p.Amount)
}

// IsReplacement returns true when this cheque was issued to replace a bounced one
func (p *PDC) IsReplacement() bool {
	return p.OriginalPDCID != nil
}

// HasReplacement returns true when a replacement cheque was issued for this one
func (p *PDC) HasReplacement() bool {
	return p.ReplacementPDCID != nil
}

// IsDueWithin reports whether a pending cheque's date falls inside the
// window [now, now+days).
func (p *PDC) IsDueWithin(now time.Time, days int) bool {
	if !p.Status.IsPending() {
		return false
	}
	end := now.AddDate(0, 0, days)
	return !p.ChequeDate.Before(now) && p.ChequeDate.Before(end)
}
