package crm

import (
	"context"
)

// CustomFieldRepository defines the interface for custom field definitions
type CustomFieldRepository interface {
	// FindAll returns every custom field definition
	FindAll(ctx context.Context) ([]CustomField, error)

	// FindByObjectType returns the definitions linked to one entity type
	FindByObjectType(ctx context.Context, kind ObjectKind) ([]CustomField, error)

	// Save creates or updates a definition
	Save(ctx context.Context, field *CustomField) error

	// Delete deletes a definition; its values cascade
	Delete(ctx context.Context, id int64) error
}

// CustomFieldValueRepository defines the interface for stored custom field
// values
type CustomFieldValueRepository interface {
	// FindByFieldAndOwner returns every value row for one (definition, owner)
	// pair. More than one row is an anomaly the caller resolves
	// deterministically, so this never fails on duplicates.
	FindByFieldAndOwner(ctx context.Context, customFieldID int64, owner OwnerRef) ([]CustomFieldValue, error)

	// FindByOwner returns all values attached to one entity
	FindByOwner(ctx context.Context, owner OwnerRef) ([]CustomFieldValue, error)

	// Save creates or updates a value row
	Save(ctx context.Context, value *CustomFieldValue) error

	// Delete deletes a value row
	Delete(ctx context.Context, id int64) error
}
