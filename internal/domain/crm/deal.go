package crm

import (
	"github.com/hermes/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DealStatus represents the status of a deal
type DealStatus string

const (
	DealStatusOpen    DealStatus = "open"
	DealStatusWon     DealStatus = "won"
	DealStatusLost    DealStatus = "lost"
	DealStatusDeleted DealStatus = "deleted"
)

// Deal represents a sales opportunity for a company. Deals only exist in
// Pipedrive; Hermes mirrors them so company-level changes can be pushed down.
type Deal struct {
	shared.BaseEntity
	PDDealID *int64 `gorm:"uniqueIndex"`

	Name   string     `gorm:"type:varchar(255)"`
	Status DealStatus `gorm:"type:varchar(255);not null;default:'open'"`

	Amount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency string          `gorm:"type:varchar(10)"`

	AdminID    *int64  `gorm:"index"`
	PipelineID *int64  `gorm:"index"`
	StageID    *int64  `gorm:"index"` // null until the Pipedrive webhook arrives
	CompanyID  int64   `gorm:"not null;index"`
	ContactID  *int64  `gorm:"index"`
	Admin      *Admin  `gorm:"foreignKey:AdminID"`
	Company    *Company `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
	Contact    *Contact `gorm:"foreignKey:ContactID"`
}

// TableName returns the table name for GORM
func (Deal) TableName() string {
	return "deals"
}

// IsOpen reports whether the deal is still in play
func (d *Deal) IsOpen() bool {
	return d.Status == DealStatusOpen
}
