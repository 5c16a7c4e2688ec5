package persistence

import (
	"context"
	"fmt"

	"github.com/hermes/backend/internal/domain/crm"
	"gorm.io/gorm"
)

// GormCustomFieldRepository implements CustomFieldRepository using GORM
type GormCustomFieldRepository struct {
	db *gorm.DB
}

// NewGormCustomFieldRepository creates a new GormCustomFieldRepository
func NewGormCustomFieldRepository(db *gorm.DB) *GormCustomFieldRepository {
	return &GormCustomFieldRepository{db: db}
}

// FindAll returns every custom field definition
func (r *GormCustomFieldRepository) FindAll(ctx context.Context) ([]crm.CustomField, error) {
	var fields []crm.CustomField
	if err := r.db.WithContext(ctx).Order("id").Find(&fields).Error; err != nil {
		return nil, translateError(err)
	}
	return fields, nil
}

// FindByObjectType returns the definitions linked to one entity type
func (r *GormCustomFieldRepository) FindByObjectType(ctx context.Context, kind crm.ObjectKind) ([]crm.CustomField, error) {
	var fields []crm.CustomField
	if err := r.db.WithContext(ctx).
		Where("linked_object_type = ?", kind).
		Order("id").
		Find(&fields).Error; err != nil {
		return nil, translateError(err)
	}
	return fields, nil
}

// Save creates or updates a definition
func (r *GormCustomFieldRepository) Save(ctx context.Context, field *crm.CustomField) error {
	return translateError(r.db.WithContext(ctx).Save(field).Error)
}

// Delete deletes a definition; its values cascade
func (r *GormCustomFieldRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&crm.CustomField{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound)
	}
	return nil
}

// GormCustomFieldValueRepository implements CustomFieldValueRepository using
// GORM
type GormCustomFieldValueRepository struct {
	db *gorm.DB
}

// NewGormCustomFieldValueRepository creates a new
// GormCustomFieldValueRepository
func NewGormCustomFieldValueRepository(db *gorm.DB) *GormCustomFieldValueRepository {
	return &GormCustomFieldValueRepository{db: db}
}

// ownerColumn maps an owner kind to its FK column.
func ownerColumn(kind crm.ObjectKind) (string, error) {
	switch kind {
	case crm.ObjectKindCompany:
		return "company_id", nil
	case crm.ObjectKindContact:
		return "contact_id", nil
	case crm.ObjectKindDeal:
		return "deal_id", nil
	case crm.ObjectKindMeeting:
		return "meeting_id", nil
	}
	return "", fmt.Errorf("object kind %q cannot own custom field values", kind)
}

// FindByFieldAndOwner returns every value row for one (definition, owner)
// pair, oldest first
func (r *GormCustomFieldValueRepository) FindByFieldAndOwner(ctx context.Context, customFieldID int64, owner crm.OwnerRef) ([]crm.CustomFieldValue, error) {
	column, err := ownerColumn(owner.Kind)
	if err != nil {
		return nil, err
	}
	var values []crm.CustomFieldValue
	if err := r.db.WithContext(ctx).
		Where("custom_field_id = ? AND "+column+" = ?", customFieldID, owner.ID).
		Order("id").
		Find(&values).Error; err != nil {
		return nil, translateError(err)
	}
	return values, nil
}

// FindByOwner returns all values attached to one entity
func (r *GormCustomFieldValueRepository) FindByOwner(ctx context.Context, owner crm.OwnerRef) ([]crm.CustomFieldValue, error) {
	column, err := ownerColumn(owner.Kind)
	if err != nil {
		return nil, err
	}
	var values []crm.CustomFieldValue
	if err := r.db.WithContext(ctx).
		Where(column+" = ?", owner.ID).
		Order("id").
		Find(&values).Error; err != nil {
		return nil, translateError(err)
	}
	return values, nil
}

// Save creates or updates a value row
func (r *GormCustomFieldValueRepository) Save(ctx context.Context, value *crm.CustomFieldValue) error {
	return translateError(r.db.WithContext(ctx).Save(value).Error)
}

// Delete deletes a value row
func (r *GormCustomFieldValueRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&crm.CustomFieldValue{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound)
	}
	return nil
}
