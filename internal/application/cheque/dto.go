package cheque

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/cheque"
	"github.com/shopspring/decimal"
)

// PDCResponse represents a post-dated cheque in API responses
type PDCResponse struct {
	ID               uuid.UUID       `json:"id"`
	TenantID         uuid.UUID       `json:"tenant_id"`
	ChequeNumber     string          `json:"cheque_number"`
	BankName         string          `json:"bank_name"`
	InvoiceID        *uuid.UUID      `json:"invoice_id,omitempty"`
	LeaseID          *uuid.UUID      `json:"lease_id,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	ChequeDate       time.Time       `json:"cheque_date"`
	Status           string          `json:"status"`
	DepositDate      *time.Time      `json:"deposit_date,omitempty"`
	ClearedDate      *time.Time      `json:"cleared_date,omitempty"`
	BouncedDate      *time.Time      `json:"bounced_date,omitempty"`
	WithdrawalDate   *time.Time      `json:"withdrawal_date,omitempty"`
	ReplacementPDCID *uuid.UUID      `json:"replacement_pdc_id,omitempty"`
	OriginalPDCID    *uuid.UUID      `json:"original_pdc_id,omitempty"`
	BankAccountID    *uuid.UUID      `json:"bank_account_id,omitempty"`
	BounceReason     string          `json:"bounce_reason,omitempty"`
	WithdrawalReason string          `json:"withdrawal_reason,omitempty"`
	NewPaymentMethod string          `json:"new_payment_method,omitempty"`
	TransactionID    string          `json:"transaction_id,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

func toPDCResponse(p *cheque.PDC) *PDCResponse {
	return &PDCResponse{
		ID:               p.ID,
		TenantID:         p.TenantID,
		ChequeNumber:     p.ChequeNumber,
		BankName:         p.BankName,
		InvoiceID:        p.InvoiceID,
		LeaseID:          p.LeaseID,
		Amount:           p.Amount,
		ChequeDate:       p.ChequeDate,
		Status:           p.Status.String(),
		DepositDate:      p.DepositDate,
		ClearedDate:      p.ClearedDate,
		BouncedDate:      p.BouncedDate,
		WithdrawalDate:   p.WithdrawalDate,
		ReplacementPDCID: p.ReplacementPDCID,
		OriginalPDCID:    p.OriginalPDCID,
		BankAccountID:    p.BankAccountID,
		BounceReason:     p.BounceReason,
		WithdrawalReason: p.WithdrawalReason,
		NewPaymentMethod: string(p.NewPaymentMethod),
		TransactionID:    p.TransactionID,
		Notes:            p.Notes,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		Version:          p.Version,
	}
}

func toPDCResponses(items []cheque.PDC) []PDCResponse {
	out := make([]PDCResponse, len(items))
	for i := range items {
		out[i] = *toPDCResponse(&items[i])
	}
	return out
}

// RegisterPDCRequest carries the fields of a new cheque registration
type RegisterPDCRequest struct {
	ChequeNumber string          `json:"cheque_number" binding:"required,min=1,max=50"`
	BankName     string          `json:"bank_name" binding:"required,min=1,max=200"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	ChequeDate   time.Time       `json:"cheque_date" binding:"required"`
	InvoiceID    *uuid.UUID      `json:"invoice_id,omitempty"`
	LeaseID      *uuid.UUID      `json:"lease_id,omitempty"`
	Notes        string          `json:"notes,omitempty" binding:"omitempty,max=1000"`
}

// BulkRegisterRequest registers a batch of cheques atomically. A batch-level
// invoice applies to every entry that does not carry its own.
type BulkRegisterRequest struct {
	InvoiceID *uuid.UUID           `json:"invoice_id,omitempty"`
	LeaseID   *uuid.UUID           `json:"lease_id,omitempty"`
	Items     []RegisterPDCRequest `json:"items" binding:"required,min=1,dive"`
}

// PDCListFilter defines filtering options for cheque list queries
type PDCListFilter struct {
	Status   string     `form:"status"`
	BankName string     `form:"bank_name"`
	DateFrom *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page     int        `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by,default=cheque_date"`
	OrderDir string     `form:"order_dir,default=asc" binding:"omitempty,oneof=asc desc"`
}

// DepositRequest records handing the cheque to the bank
type DepositRequest struct {
	DepositDate     time.Time `json:"deposit_date" binding:"required"`
	BankAccountID   uuid.UUID `json:"bank_account_id" binding:"required"`
	ExpectedVersion *int      `json:"expected_version,omitempty"`
}

// ClearRequest records bank clearance
type ClearRequest struct {
	ClearedDate     time.Time `json:"cleared_date" binding:"required"`
	ExpectedVersion *int      `json:"expected_version,omitempty"`
}

// ClearResult is the outcome of a clear operation. Warning is set when the
// cheque cleared but reconciliation could not run; the clear itself stands.
type ClearResult struct {
	PDC            *PDCResponse     `json:"pdc"`
	Invoice        *InvoiceSnapshot `json:"invoice,omitempty"`
	Warning        string           `json:"warning,omitempty"`
	InvoiceUpdated bool             `json:"invoice_updated"`
}

// InvoiceSnapshot is the invoice state after reconciliation
type InvoiceSnapshot struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	Status        string          `json:"status"`
}

// BounceRequest records a bank return
type BounceRequest struct {
	BouncedDate     time.Time `json:"bounced_date" binding:"required"`
	Reason          string    `json:"reason" binding:"required,min=1,max=500"`
	ExpectedVersion *int      `json:"expected_version,omitempty"`
}

// ReplaceRequest issues a replacement cheque for a bounced one
type ReplaceRequest struct {
	ChequeNumber string          `json:"cheque_number" binding:"required,min=1,max=50"`
	BankName     string          `json:"bank_name" binding:"required,min=1,max=200"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	ChequeDate   time.Time       `json:"cheque_date" binding:"required"`
	InvoiceID    *uuid.UUID      `json:"invoice_id,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

// ReplaceResult returns both sides of a completed replacement
type ReplaceResult struct {
	Original    *PDCResponse `json:"original"`
	Replacement *PDCResponse `json:"replacement"`
}

// WithdrawRequest pulls a cheque back at the tenant's request
type WithdrawRequest struct {
	WithdrawalDate   time.Time `json:"withdrawal_date" binding:"required"`
	Reason           string    `json:"reason" binding:"required,min=1,max=500"`
	NewPaymentMethod string    `json:"new_payment_method,omitempty"`
	TransactionID    string    `json:"transaction_id,omitempty"`
	ExpectedVersion  *int      `json:"expected_version,omitempty"`
}

// ChainLinkResponse is one hop of a replacement chain
type ChainLinkResponse struct {
	Position int         `json:"position"`
	PDC      PDCResponse `json:"pdc"`
}
