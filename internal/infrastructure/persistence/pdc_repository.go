package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/cheque"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPDCRepository implements cheque.PDCRepository using GORM
type GormPDCRepository struct {
	db *gorm.DB
}

// NewGormPDCRepository creates a new GormPDCRepository
func NewGormPDCRepository(db *gorm.DB) *GormPDCRepository {
	return &GormPDCRepository{db: db}
}

// FindByID finds a cheque by its ID
func (r *GormPDCRepository) FindByID(ctx context.Context, id uuid.UUID) (*cheque.PDC, error) {
	var model models.PDCModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a cheque by ID scoped to a tenant
func (r *GormPDCRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*cheque.PDC, error) {
	var model models.PDCModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds cheques across all tenants with filtering and a total count
func (r *GormPDCRepository) FindAll(ctx context.Context, filter cheque.PDCFilter) ([]cheque.PDC, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PDCModel{})
	return r.findPage(query, filter)
}

// FindByTenant finds cheques for a tenant with filtering and a total count
func (r *GormPDCRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, filter cheque.PDCFilter) ([]cheque.PDC, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PDCModel{}).
		Where("tenant_id = ?", tenantID)
	return r.findPage(query, filter)
}

// FindByInvoice finds all cheques linked to an invoice
func (r *GormPDCRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]cheque.PDC, error) {
	var chequeModels []models.PDCModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("cheque_date ASC").
		Find(&chequeModels).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(chequeModels), nil
}

// FindDueForReclassification finds RECEIVED cheques whose cheque date has arrived
func (r *GormPDCRepository) FindDueForReclassification(ctx context.Context, asOf time.Time, limit int) ([]cheque.PDC, error) {
	var chequeModels []models.PDCModel
	query := r.db.WithContext(ctx).
		Where("status = ? AND cheque_date <= ?", cheque.PDCStatusReceived, asOf).
		Order("cheque_date ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&chequeModels).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(chequeModels), nil
}

// ExistsByChequeNumber reports whether a tenant already holds a cheque number
func (r *GormPDCRepository) ExistsByChequeNumber(ctx context.Context, tenantID uuid.UUID, chequeNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PDCModel{}).
		Where("tenant_id = ? AND cheque_number = ?", tenantID, chequeNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create persists a new cheque record
func (r *GormPDCRepository) Create(ctx context.Context, pdc *cheque.PDC) error {
	model := models.PDCModelFromDomain(pdc)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError("DUPLICATE_CHEQUE",
				"A cheque with this number already exists for the tenant")
		}
		return err
	}
	return nil
}

// SaveWithLock saves with optimistic locking on the pre-transition version
func (r *GormPDCRepository) SaveWithLock(ctx context.Context, pdc *cheque.PDC) error {
	model := models.PDCModelFromDomain(pdc)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", pdc.ID, pdc.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func (r *GormPDCRepository) findPage(query *gorm.DB, filter cheque.PDCFilter) ([]cheque.PDC, int64, error) {
	// Session boundary so the filtered query can be reused for count and page.
	query = applyPDCFilter(query, filter).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var chequeModels []models.PDCModel
	if err := applyPagination(query, filter.Filter).Find(&chequeModels).Error; err != nil {
		return nil, 0, err
	}
	return toDomainSlice(chequeModels), total, nil
}

// applyPDCFilter applies filter options without pagination
func applyPDCFilter(query *gorm.DB, filter cheque.PDCFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.BankName != "" {
		query = query.Where("bank_name ILIKE ?", "%"+filter.BankName+"%")
	}
	if filter.DateFrom != nil {
		query = query.Where("cheque_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("cheque_date < ?", *filter.DateTo)
	}
	return query
}

// applyPagination applies ordering and pagination from a shared filter
func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}

	orderBy := filter.OrderBy
	if _, ok := orderableColumns[orderBy]; !ok {
		orderBy = "created_at"
	}
	orderDir := "ASC"
	if strings.ToLower(filter.OrderDir) == "desc" {
		orderDir = "DESC"
	}
	return query.Order(orderBy + " " + orderDir)
}

// orderableColumns whitelists sortable columns since order_by comes from
// query parameters
var orderableColumns = map[string]struct{}{
	"created_at":      {},
	"cheque_date":     {},
	"deposit_date":    {},
	"withdrawal_date": {},
	"amount":          {},
	"bank_name":       {},
	"status":          {},
}

func toDomainSlice(chequeModels []models.PDCModel) []cheque.PDC {
	cheques := make([]cheque.PDC, len(chequeModels))
	for i, model := range chequeModels {
		cheques[i] = *model.ToDomain()
	}
	return cheques
}

// GormChainWalker implements cheque.ChainWalker by following the replacement
// pointers stored on each record
type GormChainWalker struct {
	db *gorm.DB
}

// NewGormChainWalker creates a new GormChainWalker
func NewGormChainWalker(db *gorm.DB) *GormChainWalker {
	return &GormChainWalker{db: db}
}

// FindChain returns the full replacement chain containing id, oldest first
func (w *GormChainWalker) FindChain(ctx context.Context, tenantID, id uuid.UUID) ([]cheque.ChainLink, error) {
	start, err := w.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	// Walk backwards to the first cheque of the chain.
	first := start
	for first.OriginalPDCID != nil {
		prev, err := w.find(ctx, tenantID, *first.OriginalPDCID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				break
			}
			return nil, err
		}
		first = prev
	}

	// Walk forwards collecting every link.
	links := []cheque.ChainLink{{PDC: *first, Position: 0}}
	current := first
	for current.ReplacementPDCID != nil {
		next, err := w.find(ctx, tenantID, *current.ReplacementPDCID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				break
			}
			return nil, err
		}
		links = append(links, cheque.ChainLink{PDC: *next, Position: len(links)})
		current = next
	}
	return links, nil
}

func (w *GormChainWalker) find(ctx context.Context, tenantID, id uuid.UUID) (*cheque.PDC, error) {
	var model models.PDCModel
	if err := w.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
