package crm

import (
	"fmt"

	"github.com/hermes/backend/internal/domain/shared"
)

// CompanyStatus represents the lifecycle status of a company, mirrored from
// the TC2 agency status.
type CompanyStatus string

const (
	CompanyStatusPendingEmailConf CompanyStatus = "pending_email_conf"
	CompanyStatusTrial            CompanyStatus = "trial"
	CompanyStatusPaying           CompanyStatus = "active"
	CompanyStatusNotPaying        CompanyStatus = "active-not-paying"
	CompanyStatusSuspended        CompanyStatus = "suspended"
	CompanyStatusTerminated       CompanyStatus = "terminated"
	CompanyStatusInArrears        CompanyStatus = "in-arrears"
)

// PricePlan is the product tier a company is on.
type PricePlan string

const (
	PricePlanPAYG       PricePlan = "payg"
	PricePlanStartup    PricePlan = "startup"
	PricePlanEnterprise PricePlan = "enterprise"
)

// Company represents a customer business.
// In TC2 this is a mix between a meta Client and an Agency; in Pipedrive it
// is an Organization.
type Company struct {
	shared.BaseEntity
	TC2AgencyID   *int64 `gorm:"uniqueIndex"`
	TC2CligencyID *int64 `gorm:"uniqueIndex"`
	PDOrgID       *int64 `gorm:"uniqueIndex"`

	Name      string        `gorm:"type:varchar(255);not null"`
	Status    CompanyStatus `gorm:"type:varchar(25);not null;default:'pending_email_conf'"`
	PricePlan PricePlan     `gorm:"type:varchar(255);not null;default:'payg'"`
	Country   string        `gorm:"type:varchar(255)"` // country code, e.g. GB
	Website   string        `gorm:"type:varchar(255)"`

	SalesPersonID   *int64 `gorm:"index"`
	SupportPersonID *int64 `gorm:"index"`
	BDRPersonID     *int64 `gorm:"index"`
	SalesPerson     *Admin `gorm:"foreignKey:SalesPersonID"`
	SupportPerson   *Admin `gorm:"foreignKey:SupportPersonID"`
	BDRPerson       *Admin `gorm:"foreignKey:BDRPersonID"`

	PaidInvoiceCount int    `gorm:"not null;default:0"`
	EstimatedIncome  string `gorm:"type:varchar(255)"`
	Currency         string `gorm:"type:varchar(255)"`

	HasBookedCall bool `gorm:"not null;default:false"`
	// Narc companies are internal/test accounts that must never be synced out.
	Narc bool `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Company) TableName() string {
	return "companies"
}

// HasSignedUp reports whether the company has completed TC2 signup.
func (c *Company) HasSignedUp() bool {
	return c.TC2CligencyID != nil
}

// TC2CligencyURL returns the TC2 admin URL for the company, or "" when the
// company has not signed up.
func (c *Company) TC2CligencyURL(tc2BaseURL string) string {
	if c.TC2CligencyID == nil {
		return ""
	}
	return fmt.Sprintf("%s/clients/%d/", tc2BaseURL, *c.TC2CligencyID)
}
