package persistence

import (
	"context"

	"github.com/hermes/backend/internal/domain/crm"
	"gorm.io/gorm"
)

// GormContactRepository implements ContactRepository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

// FindByID finds a contact by its local ID
func (r *GormContactRepository) FindByID(ctx context.Context, id int64) (*crm.Contact, error) {
	var contact crm.Contact
	if err := r.db.WithContext(ctx).First(&contact, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &contact, nil
}

// FindByPDPersonID finds a contact by its Pipedrive person ID
func (r *GormContactRepository) FindByPDPersonID(ctx context.Context, pdPersonID int64) (*crm.Contact, error) {
	var contact crm.Contact
	if err := r.db.WithContext(ctx).First(&contact, "pd_person_id = ?", pdPersonID).Error; err != nil {
		return nil, translateError(err)
	}
	return &contact, nil
}

// FindByTC2SRID finds a contact by its TC2 service recipient ID
func (r *GormContactRepository) FindByTC2SRID(ctx context.Context, tc2SRID int64) (*crm.Contact, error) {
	var contact crm.Contact
	if err := r.db.WithContext(ctx).First(&contact, "tc2_sr_id = ?", tc2SRID).Error; err != nil {
		return nil, translateError(err)
	}
	return &contact, nil
}

// FindByCompanyID finds all contacts belonging to a company
func (r *GormContactRepository) FindByCompanyID(ctx context.Context, companyID int64) ([]crm.Contact, error) {
	var contacts []crm.Contact
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("id").
		Find(&contacts).Error; err != nil {
		return nil, translateError(err)
	}
	return contacts, nil
}

// Save creates or updates a contact
func (r *GormContactRepository) Save(ctx context.Context, contact *crm.Contact) error {
	return translateError(r.db.WithContext(ctx).Save(contact).Error)
}

// Delete deletes a contact
func (r *GormContactRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&crm.Contact{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound)
	}
	return nil
}

// ReassignCompany re-points every contact of fromCompanyID at toCompanyID
func (r *GormContactRepository) ReassignCompany(ctx context.Context, fromCompanyID, toCompanyID int64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&crm.Contact{}).
		Where("company_id = ?", fromCompanyID).
		Update("company_id", toCompanyID)
	return result.RowsAffected, translateError(result.Error)
}
