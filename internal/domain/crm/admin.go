package crm

import (
	"strings"

	"github.com/hermes/backend/internal/domain/shared"
)

// Admin represents a sales/support/BDR team member.
// In TC2 this is an Admin; in Pipedrive it maps to a User via pd_owner_id.
type Admin struct {
	shared.BaseEntity
	TC2AdminID *int64 `gorm:"uniqueIndex"`
	PDOwnerID  *int64 `gorm:"index"`

	FirstName string `gorm:"type:varchar(255);not null;default:''"`
	LastName  string `gorm:"type:varchar(255);not null;default:''"`
	Email     string `gorm:"type:varchar(255);not null"`
	Timezone  string `gorm:"type:varchar(255);not null;default:'Europe/London'"`

	IsSalesPerson   bool `gorm:"not null;default:false"`
	IsSupportPerson bool `gorm:"not null;default:false"`
	IsBDRPerson     bool `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Admin) TableName() string {
	return "admins"
}

// Name returns the admin's full name
func (a *Admin) Name() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}
