package crm

import (
	"strings"

	"github.com/hermes/backend/internal/domain/shared"
)

// Contact represents an individual who works at a company.
// In TC2 this is a paid recipient on a Cligency; in Pipedrive it is a Person.
type Contact struct {
	shared.BaseEntity
	TC2SRID    *int64 `gorm:"uniqueIndex"`
	PDPersonID *int64 `gorm:"uniqueIndex"`

	FirstName string `gorm:"type:varchar(255)"`
	LastName  string `gorm:"type:varchar(255)"`
	Email     string `gorm:"type:varchar(255);index"`
	Phone     string `gorm:"type:varchar(255)"`
	Country   string `gorm:"type:varchar(255)"`

	CompanyID int64    `gorm:"not null;index"`
	Company   *Company `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Contact) TableName() string {
	return "contacts"
}

// Name returns the contact's display name
func (c *Contact) Name() string {
	if c.FirstName == "" {
		return c.LastName
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
