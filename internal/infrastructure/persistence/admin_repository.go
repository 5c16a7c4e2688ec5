package persistence

import (
	"context"

	"github.com/hermes/backend/internal/domain/crm"
	"gorm.io/gorm"
)

// GormAdminRepository implements AdminRepository using GORM
type GormAdminRepository struct {
	db *gorm.DB
}

// NewGormAdminRepository creates a new GormAdminRepository
func NewGormAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

// FindByID finds an admin by its local ID
func (r *GormAdminRepository) FindByID(ctx context.Context, id int64) (*crm.Admin, error) {
	var admin crm.Admin
	if err := r.db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &admin, nil
}

// FindByTC2AdminID finds an admin by its TC2 admin ID
func (r *GormAdminRepository) FindByTC2AdminID(ctx context.Context, tc2AdminID int64) (*crm.Admin, error) {
	var admin crm.Admin
	if err := r.db.WithContext(ctx).First(&admin, "tc2_admin_id = ?", tc2AdminID).Error; err != nil {
		return nil, translateError(err)
	}
	return &admin, nil
}

// FindByPDOwnerID finds an admin by its Pipedrive user ID
func (r *GormAdminRepository) FindByPDOwnerID(ctx context.Context, pdOwnerID int64) (*crm.Admin, error) {
	var admin crm.Admin
	if err := r.db.WithContext(ctx).First(&admin, "pd_owner_id = ?", pdOwnerID).Error; err != nil {
		return nil, translateError(err)
	}
	return &admin, nil
}
