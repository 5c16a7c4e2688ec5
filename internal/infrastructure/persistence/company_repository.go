package persistence

import (
	"context"

	"github.com/hermes/backend/internal/domain/crm"
	"gorm.io/gorm"
)

// GormCompanyRepository implements CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByID finds a company by its local ID
func (r *GormCompanyRepository) FindByID(ctx context.Context, id int64) (*crm.Company, error) {
	var company crm.Company
	if err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &company, nil
}

// FindByPDOrgID finds a company by its Pipedrive organisation ID
func (r *GormCompanyRepository) FindByPDOrgID(ctx context.Context, pdOrgID int64) (*crm.Company, error) {
	var company crm.Company
	if err := r.db.WithContext(ctx).First(&company, "pd_org_id = ?", pdOrgID).Error; err != nil {
		return nil, translateError(err)
	}
	return &company, nil
}

// FindByTC2AgencyID finds a company by its TC2 agency ID
func (r *GormCompanyRepository) FindByTC2AgencyID(ctx context.Context, tc2AgencyID int64) (*crm.Company, error) {
	var company crm.Company
	if err := r.db.WithContext(ctx).First(&company, "tc2_agency_id = ?", tc2AgencyID).Error; err != nil {
		return nil, translateError(err)
	}
	return &company, nil
}

// FindByTC2CligencyID finds a company by its TC2 cligency ID
func (r *GormCompanyRepository) FindByTC2CligencyID(ctx context.Context, tc2CligencyID int64) (*crm.Company, error) {
	var company crm.Company
	if err := r.db.WithContext(ctx).First(&company, "tc2_cligency_id = ?", tc2CligencyID).Error; err != nil {
		return nil, translateError(err)
	}
	return &company, nil
}

// Save creates or updates a company
func (r *GormCompanyRepository) Save(ctx context.Context, company *crm.Company) error {
	return translateError(r.db.WithContext(ctx).Save(company).Error)
}

// Delete deletes a company
func (r *GormCompanyRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&crm.Company{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound)
	}
	return nil
}

// ExistsByPDOrgID reports whether a company with the given Pipedrive
// organisation ID exists
func (r *GormCompanyRepository) ExistsByPDOrgID(ctx context.Context, pdOrgID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&crm.Company{}).
		Where("pd_org_id = ?", pdOrgID).Count(&count).Error; err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}
