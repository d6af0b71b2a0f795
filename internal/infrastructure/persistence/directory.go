package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/cheque"
	"github.com/propman/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTenantDirectory implements cheque.TenantDirectory against the local
// tenant registry table
type GormTenantDirectory struct {
	db *gorm.DB
}

// NewGormTenantDirectory creates a new GormTenantDirectory
func NewGormTenantDirectory(db *gorm.DB) *GormTenantDirectory {
	return &GormTenantDirectory{db: db}
}

// TenantExists reports whether an active tenant with the given ID exists
func (d *GormTenantDirectory) TenantExists(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	var count int64
	if err := d.db.WithContext(ctx).
		Model(&models.TenantModel{}).
		Where("id = ? AND active = ?", tenantID, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormBankAccountDirectory implements cheque.BankAccountDirectory against the
// company bank account registry table
type GormBankAccountDirectory struct {
	db *gorm.DB
}

// NewGormBankAccountDirectory creates a new GormBankAccountDirectory
func NewGormBankAccountDirectory(db *gorm.DB) *GormBankAccountDirectory {
	return &GormBankAccountDirectory{db: db}
}

// AccountExists reports whether an active bank account with the given ID exists
func (d *GormBankAccountDirectory) AccountExists(ctx context.Context, accountID uuid.UUID) (bool, error) {
	var count int64
	if err := d.db.WithContext(ctx).
		Model(&models.BankAccountModel{}).
		Where("id = ? AND active = ?", accountID, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ cheque.TenantDirectory = (*GormTenantDirectory)(nil)
var _ cheque.BankAccountDirectory = (*GormBankAccountDirectory)(nil)
