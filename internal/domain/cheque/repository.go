package cheque

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PDCFilter narrows PDC listings
type PDCFilter struct {
	shared.Filter
	Status   *PDCStatus
	BankName string
	DateFrom *time.Time // Inclusive lower bound on cheque_date
	DateTo   *time.Time // Exclusive upper bound on cheque_date
}

// PDCRepository defines persistence operations for the PDC aggregate.
// The record store is the sole write path for cheque state; dashboard reads
// go through DashboardRepository instead. Single-record finders return
// shared.ErrNotFound on a miss, never a nil cheque with a nil error.
type PDCRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PDC, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PDC, error)
	FindAll(ctx context.Context, filter PDCFilter) ([]PDC, int64, error)
	FindByTenant(ctx context.Context, tenantID uuid.UUID, filter PDCFilter) ([]PDC, int64, error)
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]PDC, error)
	// FindDueForReclassification returns RECEIVED cheques whose cheque date
	// is on or before asOf, for the scheduled RECEIVED→DUE pass.
	FindDueForReclassification(ctx context.Context, asOf time.Time, limit int) ([]PDC, error)
	// ExistsByChequeNumber implements the duplicate pre-flight over the same
	// uniqueness predicate the store's unique index enforces.
	ExistsByChequeNumber(ctx context.Context, tenantID uuid.UUID, chequeNumber string) (bool, error)
	Create(ctx context.Context, pdc *PDC) error
	// SaveWithLock persists with an optimistic-lock predicate on the version
	// the aggregate held before its transition incremented it. Zero affected
	// rows surfaces shared.ErrConcurrencyConflict.
	SaveWithLock(ctx context.Context, pdc *PDC) error
}

// ChainLink is one hop of a replacement chain, oldest first
type ChainLink struct {
	PDC      PDC
	Position int
}

// ChainWalker resolves replacement chains by following the forward and
// backward pointers; there is no separate chain table.
type ChainWalker interface {
	// FindChain returns the full chain containing id, ordered from the first
	// bounced cheque to the latest replacement.
	FindChain(ctx context.Context, tenantID, id uuid.UUID) ([]ChainLink, error)
}

// TenantStats aggregates one tenant's cheque history
type TenantStats struct {
	Total   int64
	Cleared int64
	Bounced int64
	Pending int64
}

// BounceRatePercent returns bounced/total as a percentage, 0 for an empty history
func (s TenantStats) BounceRatePercent() decimal.Decimal {
	if s.Total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(s.Bounced).
		Div(decimal.NewFromInt(s.Total)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

// DashboardSummary is the aggregate snapshot served to the back-office dashboard
type DashboardSummary struct {
	TotalReceived     int64
	DueThisWeekCount  int64
	DueThisWeekTotal  decimal.Decimal
	UpcomingThisWeek  []PDC
	RecentlyDeposited []PDC
	BankNames         []string
}

// DashboardRepository provides the read-only aggregate queries behind the
// dashboard. Implementations never mutate cheque records and tolerate a
// slightly stale snapshot.
type DashboardRepository interface {
	Summary(ctx context.Context, tenantID *uuid.UUID, now time.Time) (*DashboardSummary, error)
	TenantStats(ctx context.Context, tenantID uuid.UUID) (*TenantStats, error)
	TenantPDCs(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PDC, int64, error)
	WithdrawalHistory(ctx context.Context, filter shared.Filter) ([]PDC, int64, error)
	DistinctBankNames(ctx context.Context, tenantID *uuid.UUID) ([]string, error)
}

// TenantDirectory is the narrow contract to the external tenant registry
type TenantDirectory interface {
	TenantExists(ctx context.Context, tenantID uuid.UUID) (bool, error)
}

// BankAccountDirectory is the narrow contract to the external bank account
// registry; the engine never mutates bank account state.
type BankAccountDirectory interface {
	AccountExists(ctx context.Context, accountID uuid.UUID) (bool, error)
}
