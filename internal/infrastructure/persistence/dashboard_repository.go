package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/cheque"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// onHandStatuses are the statuses of cheques physically held and not yet
// presented to the bank
var onHandStatuses = []cheque.PDCStatus{cheque.PDCStatusReceived, cheque.PDCStatusDue}

const dashboardListLimit = 10

// GormDashboardRepository implements cheque.DashboardRepository with
// aggregate queries over the cheque table
type GormDashboardRepository struct {
	db            *gorm.DB
	dueWindowDays int
}

// NewGormDashboardRepository creates a new GormDashboardRepository.
// dueWindowDays controls how far ahead the "due soon" window looks.
func NewGormDashboardRepository(db *gorm.DB, dueWindowDays int) *GormDashboardRepository {
	if dueWindowDays < 1 {
		dueWindowDays = 7
	}
	return &GormDashboardRepository{db: db, dueWindowDays: dueWindowDays}
}

// Summary builds the dashboard snapshot, optionally scoped to one tenant
func (r *GormDashboardRepository) Summary(ctx context.Context, tenantID *uuid.UUID, now time.Time) (*cheque.DashboardSummary, error) {
	windowEnd := now.AddDate(0, 0, r.dueWindowDays)
	summary := &cheque.DashboardSummary{}

	// lifetime count, terminal states included
	if err := r.scoped(ctx, tenantID).Count(&summary.TotalReceived).Error; err != nil {
		return nil, err
	}

	dueSoon := r.scoped(ctx, tenantID).
		Where("status IN ? AND cheque_date >= ? AND cheque_date < ?", onHandStatuses, now, windowEnd).
		Session(&gorm.Session{})

	if err := dueSoon.Count(&summary.DueThisWeekCount).Error; err != nil {
		return nil, err
	}

	var dueTotal struct {
		Total decimal.Decimal
	}
	if err := dueSoon.
		Select("COALESCE(SUM(amount), 0) as total").
		Scan(&dueTotal).Error; err != nil {
		return nil, err
	}
	summary.DueThisWeekTotal = dueTotal.Total

	var upcoming []models.PDCModel
	if err := dueSoon.
		Order("cheque_date ASC").
		Limit(dashboardListLimit).
		Find(&upcoming).Error; err != nil {
		return nil, err
	}
	summary.UpcomingThisWeek = toDomainSlice(upcoming)

	var deposited []models.PDCModel
	if err := r.scoped(ctx, tenantID).
		Where("status = ?", cheque.PDCStatusDeposited).
		Order("deposit_date DESC").
		Limit(dashboardListLimit).
		Find(&deposited).Error; err != nil {
		return nil, err
	}
	summary.RecentlyDeposited = toDomainSlice(deposited)

	banks, err := r.DistinctBankNames(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	summary.BankNames = banks

	return summary, nil
}

// TenantStats aggregates one tenant's cheque history
func (r *GormDashboardRepository) TenantStats(ctx context.Context, tenantID uuid.UUID) (*cheque.TenantStats, error) {
	stats := &cheque.TenantStats{}
	base := r.db.WithContext(ctx).Model(&models.PDCModel{}).
		Where("tenant_id = ?", tenantID).
		Session(&gorm.Session{})

	if err := base.Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := base.Where("status = ?", cheque.PDCStatusCleared).Count(&stats.Cleared).Error; err != nil {
		return nil, err
	}
	if err := base.Where("status = ?", cheque.PDCStatusBounced).Count(&stats.Bounced).Error; err != nil {
		return nil, err
	}
	if err := base.Where("status IN ?", onHandStatuses).Count(&stats.Pending).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// TenantPDCs pages through one tenant's cheques, newest cheque date first
// unless the filter orders otherwise
func (r *GormDashboardRepository) TenantPDCs(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]cheque.PDC, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PDCModel{}).
		Where("tenant_id = ?", tenantID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.OrderBy == "" {
		filter.OrderBy = "cheque_date"
		filter.OrderDir = "desc"
	}
	var chequeModels []models.PDCModel
	if err := applyPagination(query, filter).Find(&chequeModels).Error; err != nil {
		return nil, 0, err
	}
	return toDomainSlice(chequeModels), total, nil
}

// WithdrawalHistory pages through withdrawn cheques across all tenants
func (r *GormDashboardRepository) WithdrawalHistory(ctx context.Context, filter shared.Filter) ([]cheque.PDC, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PDCModel{}).
		Where("status = ?", cheque.PDCStatusWithdrawn).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var chequeModels []models.PDCModel
	if err := applyPagination(query, filter).Find(&chequeModels).Error; err != nil {
		return nil, 0, err
	}
	return toDomainSlice(chequeModels), total, nil
}

// DistinctBankNames lists the bank names seen on cheques, alphabetically
func (r *GormDashboardRepository) DistinctBankNames(ctx context.Context, tenantID *uuid.UUID) ([]string, error) {
	var names []string
	if err := r.scoped(ctx, tenantID).
		Distinct("bank_name").
		Order("bank_name ASC").
		Pluck("bank_name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

func (r *GormDashboardRepository) scoped(ctx context.Context, tenantID *uuid.UUID) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.PDCModel{})
	if tenantID != nil {
		query = query.Where("tenant_id = ?", *tenantID)
	}
	return query
}
