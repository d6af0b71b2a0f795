package cheque

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PDCRegisteredEvent is raised when a new post-dated cheque is registered
type PDCRegisteredEvent struct {
	shared.BaseDomainEvent
	PDCID        uuid.UUID       `json:"pdc_id"`
	ChequeNumber string          `json:"cheque_number"`
	BankName     string          `json:"bank_name"`
	Amount       decimal.Decimal `json:"amount"`
	ChequeDate   time.Time       `json:"cheque_date"`
	InvoiceID    *uuid.UUID      `json:"invoice_id,omitempty"`
}

// NewPDCRegisteredEvent creates a new PDCRegisteredEvent
func NewPDCRegisteredEvent(p *PDC) *PDCRegisteredEvent {
	return &PDCRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PDCRegistered", "PDC", p.ID, p.TenantID),
		PDCID:           p.ID,
		ChequeNumber:    p.ChequeNumber,
		BankName:        p.BankName,
		Amount:          p.Amount,
		ChequeDate:      p.ChequeDate,
		InvoiceID:       p.InvoiceID,
	}
}

// PDCStatusChangedEvent is raised for plain status moves that carry no extra
// metadata (RECEIVED→DUE, cancellation).
type PDCStatusChangedEvent struct {
	shared.BaseDomainEvent
	PDCID      uuid.UUID `json:"pdc_id"`
	FromStatus PDCStatus `json:"from_status"`
	ToStatus   PDCStatus `json:"to_status"`
}

// NewPDCStatusChangedEvent creates a new PDCStatusChangedEvent
func NewPDCStatusChangedEvent(p *PDC, from, to PDCStatus) *PDCStatusChangedEvent {
	return &PDCStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PDCStatusChanged", "PDC", p.ID, p.TenantID),
		PDCID:           p.ID,
		FromStatus:      from,
		ToStatus:        to,
	}
}

// PDCDepositedEvent is raised when a cheque is handed to the bank
type PDCDepositedEvent struct {
	shared.BaseDomainEvent
	PDCID         uuid.UUID  `json:"pdc_id"`
	FromStatus    PDCStatus  `json:"from_status"`
	DepositDate   time.Time  `json:"deposit_date"`
	BankAccountID *uuid.UUID `json:"bank_account_id"`
}

// NewPDCDepositedEvent creates a new PDCDepositedEvent
func NewPDCDepositedEvent(p *PDC, from PDCStatus) *PDCDepositedEvent {
	evt := &PDCDepositedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PDCDeposited", "PDC", p.ID, p.TenantID),
		PDCID:           p.ID,
		FromStatus:      from,
		BankAccountID:   p.BankAccountID,
	}
	if p.DepositDate != nil {
		evt.DepositDate = *p.DepositDate
	}
	return evt
}

// PDCClearedEvent is raised when a deposited cheque clears
type PDCClearedEvent struct {
	shared.BaseDomainEvent
	PDCID       uuid.UUID       `json:"pdc_id"`
	FromStatus  PDCStatus       `json:"from_status"`
	Amount      decimal.Decimal `json:"amount"`
	InvoiceID   *uuid.UUID      `json:"invoice_id,omitempty"`
	ClearedDate time.Time       `json:"cleared_date"`
}

// NewPDCClearedEvent creates a new PDCClearedEvent
func NewPDCClearedEvent(p *PDC, from PDCStatus) *PDCClearedEvent {
	evt := &PDCClearedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PDCCleared", "PDC", p.ID, p.TenantID),
		PDCID:           p.ID,
		FromStatus:      from,
		Amount:          p.Amount,
		InvoiceID:       p.InvoiceID,
	}
	if p.ClearedDate != nil {
		evt.ClearedDate = *p.ClearedDate
	}
	return evt
}

// PDCBouncedEvent is raised when the bank returns a cheque unpaid
type PDCBouncedEvent struct {
	shared.BaseDomainEvent
	PDCID        uuid.UUID       `json:"pdc_id"`
	FromStatus   PDCStatus       `json:"from_status"`
	Amount       decimal.Decimal `json:"amount"`
	BouncedDate  time.Time       `json:"bounced_date"`
	BounceReason string          `json:"bounce_reason"`
}

// NewPDCBouncedEvent creates a new PDCBouncedEvent
func NewPDCBouncedEvent(p *PDC, from PDCStatus) *PDCBouncedEvent {
	evt := &PDCBouncedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PDCBounced", "PDC", p.ID, p.TenantID),
		PDCID:           p.ID,
		FromStatus:      from,
		Amount:          p.Amount,
		BounceReason:    p.BounceReason,
	}
	if p.BouncedDate != nil {
		evt.BouncedDate = *p.BouncedDate
	}
	return evt
}

// PDCWithdrawnEvent is raised when a cheque is pulled back by the tenant
type PDCWithdrawnEvent struct {
	shared.BaseDomainEvent
	PDCID            uuid.UUID     `json:"pdc_id"`
	FromStatus       PDCStatus     `json:"from_status"`
	WithdrawalDate   time.Time     `json:"withdrawal_date"`
	WithdrawalReason string        `json:"withdrawal_reason"`
	NewPaymentMethod PaymentMethod `json:"new_payment_method,omitempty"`
	TransactionID    string        `json:"transaction_id,omitempty"`
}

// NewPDCWithdrawnEvent creates a new PDCWithdrawnEvent
func NewPDCWithdrawnEvent(p *PDC, from PDCStatus) *PDCWithdrawnEvent {
	evt := &PDCWithdrawnEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("PDCWithdrawn", "PDC", p.ID, p.TenantID),
		PDCID:            p.ID,
		FromStatus:       from,
		WithdrawalReason: p.WithdrawalReason,
		NewPaymentMethod: p.NewPaymentMethod,
		TransactionID:    p.TransactionID,
	}
	if p.WithdrawalDate != nil {
		evt.WithdrawalDate = *p.WithdrawalDate
	}
	return evt
}

// PDCReplacedEvent is raised on the bounced original when a replacement
// cheque is issued for it
type PDCReplacedEvent struct {
	shared.BaseDomainEvent
	PDCID            uuid.UUID `json:"pdc_id"`
	ReplacementPDCID uuid.UUID `json:"replacement_pdc_id"`
}

// NewPDCReplacedEvent creates a new PDCReplacedEvent
func NewPDCReplacedEvent(p *PDC, replacementID uuid.UUID) *PDCReplacedEvent {
	return &PDCReplacedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("PDCReplaced", "PDC", p.ID, p.TenantID),
		PDCID:            p.ID,
		ReplacementPDCID: replacementID,
	}
}
