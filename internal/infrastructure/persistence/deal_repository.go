package persistence

import (
	"context"

	"github.com/hermes/backend/internal/domain/crm"
	"gorm.io/gorm"
)

// GormDealRepository implements DealRepository using GORM
type GormDealRepository struct {
	db *gorm.DB
}

// NewGormDealRepository creates a new GormDealRepository
func NewGormDealRepository(db *gorm.DB) *GormDealRepository {
	return &GormDealRepository{db: db}
}

// FindByID finds a deal by its local ID
func (r *GormDealRepository) FindByID(ctx context.Context, id int64) (*crm.Deal, error) {
	var deal crm.Deal
	if err := r.db.WithContext(ctx).First(&deal, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &deal, nil
}

// FindByPDDealID finds a deal by its Pipedrive deal ID
func (r *GormDealRepository) FindByPDDealID(ctx context.Context, pdDealID int64) (*crm.Deal, error) {
	var deal crm.Deal
	if err := r.db.WithContext(ctx).First(&deal, "pd_deal_id = ?", pdDealID).Error; err != nil {
		return nil, translateError(err)
	}
	return &deal, nil
}

// FindOpenByCompanyID finds the open deals owned by a company
func (r *GormDealRepository) FindOpenByCompanyID(ctx context.Context, companyID int64) ([]crm.Deal, error) {
	var deals []crm.Deal
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND status = ?", companyID, crm.DealStatusOpen).
		Order("id").
		Find(&deals).Error; err != nil {
		return nil, translateError(err)
	}
	return deals, nil
}

// FindByCompanyID finds all deals owned by a company
func (r *GormDealRepository) FindByCompanyID(ctx context.Context, companyID int64) ([]crm.Deal, error) {
	var deals []crm.Deal
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("id").
		Find(&deals).Error; err != nil {
		return nil, translateError(err)
	}
	return deals, nil
}

// Save creates or updates a deal
func (r *GormDealRepository) Save(ctx context.Context, deal *crm.Deal) error {
	return translateError(r.db.WithContext(ctx).Save(deal).Error)
}

// Delete deletes a deal
func (r *GormDealRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&crm.Deal{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound)
	}
	return nil
}

// ReassignCompany re-points every deal of fromCompanyID at toCompanyID
func (r *GormDealRepository) ReassignCompany(ctx context.Context, fromCompanyID, toCompanyID int64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&crm.Deal{}).
		Where("company_id = ?", fromCompanyID).
		Update("company_id", toCompanyID)
	return result.RowsAffected, translateError(result.Error)
}

// ReassignContact re-points every deal of fromContactID at toContactID
func (r *GormDealRepository) ReassignContact(ctx context.Context, fromContactID, toContactID int64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&crm.Deal{}).
		Where("contact_id = ?", fromContactID).
		Update("contact_id", toContactID)
	return result.RowsAffected, translateError(result.Error)
}
