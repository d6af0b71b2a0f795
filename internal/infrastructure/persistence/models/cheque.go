package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/cheque"
	"github.com/shopspring/decimal"
)

// PDCModel is the persistence model for the PDC aggregate root.
// The composite unique index over (tenant_id, cheque_number) enforces one
// cheque number per tenant; it is created by the SQL migration, since the
// tenant column lives on the embedded TenantAggregateModel and cannot carry
// a per-table index tag. The application's pre-flight duplicate check runs
// over the same predicate.
type PDCModel struct {
	TenantAggregateModel
	ChequeNumber     string           `gorm:"type:varchar(50);not null"`
	BankName         string           `gorm:"type:varchar(200);not null;index"`
	InvoiceID        *uuid.UUID       `gorm:"type:uuid;index"`
	LeaseID          *uuid.UUID       `gorm:"type:uuid;index"`
	Amount           decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	ChequeDate       time.Time        `gorm:"not null;index"`
	Status           cheque.PDCStatus `gorm:"type:varchar(20);not null;default:'RECEIVED';index"`
	DepositDate      *time.Time
	ClearedDate      *time.Time
	BouncedDate      *time.Time
	WithdrawalDate   *time.Time `gorm:"index"`
	ReplacementPDCID *uuid.UUID `gorm:"type:uuid;index"`
	OriginalPDCID    *uuid.UUID `gorm:"type:uuid;index"`
	BankAccountID    *uuid.UUID `gorm:"type:uuid"`
	BounceReason     string     `gorm:"type:varchar(500)"`
	WithdrawalReason string     `gorm:"type:varchar(500)"`
	NewPaymentMethod string     `gorm:"type:varchar(30)"`
	TransactionID    string     `gorm:"type:varchar(100)"`
	Notes            string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PDCModel) TableName() string {
	return "post_dated_cheques"
}

// ToDomain converts the persistence model to a domain PDC entity
func (m *PDCModel) ToDomain() *cheque.PDC {
	p := &cheque.PDC{
		ChequeNumber:     m.ChequeNumber,
		BankName:         m.BankName,
		InvoiceID:        m.InvoiceID,
		LeaseID:          m.LeaseID,
		Amount:           m.Amount,
		ChequeDate:       m.ChequeDate,
		Status:           m.Status,
		DepositDate:      m.DepositDate,
		ClearedDate:      m.ClearedDate,
		BouncedDate:      m.BouncedDate,
		WithdrawalDate:   m.WithdrawalDate,
		ReplacementPDCID: m.ReplacementPDCID,
		OriginalPDCID:    m.OriginalPDCID,
		BankAccountID:    m.BankAccountID,
		BounceReason:     m.BounceReason,
		WithdrawalReason: m.WithdrawalReason,
		NewPaymentMethod: cheque.PaymentMethod(m.NewPaymentMethod),
		TransactionID:    m.TransactionID,
		Notes:            m.Notes,
	}
	m.PopulateTenantAggregateRoot(&p.TenantAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain PDC entity
func (m *PDCModel) FromDomain(p *cheque.PDC) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.ChequeNumber = p.ChequeNumber
	m.BankName = p.BankName
	m.InvoiceID = p.InvoiceID
	m.LeaseID = p.LeaseID
	m.Amount = p.Amount
	m.ChequeDate = p.ChequeDate
	m.Status = p.Status
	m.DepositDate = p.DepositDate
	m.ClearedDate = p.ClearedDate
	m.BouncedDate = p.BouncedDate
	m.WithdrawalDate = p.WithdrawalDate
	m.ReplacementPDCID = p.ReplacementPDCID
	m.OriginalPDCID = p.OriginalPDCID
	m.BankAccountID = p.BankAccountID
	m.BounceReason = p.BounceReason
	m.WithdrawalReason = p.WithdrawalReason
	m.NewPaymentMethod = string(p.NewPaymentMethod)
	m.TransactionID = p.TransactionID
	m.Notes = p.Notes
}

// PDCModelFromDomain creates a new persistence model from a domain PDC
func PDCModelFromDomain(p *cheque.PDC) *PDCModel {
	m := &PDCModel{}
	m.FromDomain(p)
	return m
}

// TenantModel is the minimal tenant registry record the engine reads.
// Tenant lifecycle is owned by the identity service; this table is only
// consulted for existence checks.
type TenantModel struct {
	BaseModel
	Name   string `gorm:"type:varchar(200);not null"`
	Active bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// BankAccountModel is the company bank account registry record
type BankAccountModel struct {
	BaseModel
	AccountName   string `gorm:"type:varchar(200);not null"`
	AccountNumber string `gorm:"type:varchar(50);not null"`
	BankName      string `gorm:"type:varchar(200);not null"`
	Active        bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (BankAccountModel) TableName() string {
	return "bank_accounts"
}
