package crm

import (
	"github.com/hermes/backend/internal/domain/shared"
)

// FieldType is the declared scalar type of a custom field. Values are always
// stored as strings; the sync engine coerces on read and write.
type FieldType string

const (
	FieldTypeStr  FieldType = "str"
	FieldTypeInt  FieldType = "int"
	FieldTypeBool FieldType = "bool"
	FieldTypeDate FieldType = "date"
	FieldTypeFK   FieldType = "fk"
)

// CustomField is an administrator-defined attribute for one entity type,
// mapped to at most one external field identifier per system and optionally
// backed by a canonical attribute on the entity itself.
type CustomField struct {
	shared.BaseEntity

	Name             string     `gorm:"type:varchar(255);not null"`
	MachineName      string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_custom_field_machine_object,priority:1"`
	LinkedObjectType ObjectKind `gorm:"type:varchar(25);not null;uniqueIndex:idx_custom_field_machine_object,priority:2"`
	FieldType        FieldType  `gorm:"type:varchar(10);not null"`

	// HermesFieldName is the canonical attribute backing this field, when the
	// value is not stored as a CustomFieldValue row.
	HermesFieldName string `gorm:"type:varchar(255)"`
	// TC2MachineName is the key inside TC2's extra_attrs list.
	TC2MachineName string `gorm:"type:varchar(255)"`
	// PDFieldID is Pipedrive's hash-style custom field key.
	PDFieldID string `gorm:"type:varchar(255)"`

	// FK fields only: the referenced entity type and the lookup attribute on it.
	FKObjectType  ObjectKind `gorm:"type:varchar(25)"`
	FKLookupField string     `gorm:"type:varchar(255)"`
	NullIfInvalid bool       `gorm:"not null;default:false"`

	Values []CustomFieldValue `gorm:"foreignKey:CustomFieldID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (CustomField) TableName() string {
	return "custom_fields"
}

// OwnerRef identifies the single entity a CustomFieldValue belongs to.
type OwnerRef struct {
	Kind ObjectKind
	ID   int64
}

// CustomFieldValue holds one stored value for a (custom field, owner) pair.
// Exactly one of the owner columns is set.
type CustomFieldValue struct {
	shared.BaseEntity

	CustomFieldID int64        `gorm:"not null;index"`
	CustomField   *CustomField `gorm:"foreignKey:CustomFieldID;constraint:OnDelete:CASCADE"`

	CompanyID *int64 `gorm:"index"`
	ContactID *int64 `gorm:"index"`
	DealID    *int64 `gorm:"index"`
	MeetingID *int64 `gorm:"index"`

	Value string `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (CustomFieldValue) TableName() string {
	return "custom_field_values"
}

// Owner returns the owning entity reference.
func (v *CustomFieldValue) Owner() OwnerRef {
	switch {
	case v.CompanyID != nil:
		return OwnerRef{Kind: ObjectKindCompany, ID: *v.CompanyID}
	case v.ContactID != nil:
		return OwnerRef{Kind: ObjectKindContact, ID: *v.ContactID}
	case v.DealID != nil:
		return OwnerRef{Kind: ObjectKindDeal, ID: *v.DealID}
	case v.MeetingID != nil:
		return OwnerRef{Kind: ObjectKindMeeting, ID: *v.MeetingID}
	}
	return OwnerRef{}
}

// SetOwner points the value at the given entity, clearing any other owner.
func (v *CustomFieldValue) SetOwner(ref OwnerRef) {
	v.CompanyID, v.ContactID, v.DealID, v.MeetingID = nil, nil, nil, nil
	id := ref.ID
	switch ref.Kind {
	case ObjectKindCompany:
		v.CompanyID = &id
	case ObjectKindContact:
		v.ContactID = &id
	case ObjectKindDeal:
		v.DealID = &id
	case ObjectKindMeeting:
		v.MeetingID = &id
	}
}
