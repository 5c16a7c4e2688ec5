package crm

import (
	"time"

	"github.com/hermes/backend/internal/domain/shared"
)

// MeetingStatus represents the status of a booked call
type MeetingStatus string

const (
	MeetingStatusPlanned   MeetingStatus = "PLANNED"
	MeetingStatusCanceled  MeetingStatus = "CANCELED"
	MeetingStatusNoShow    MeetingStatus = "NO_SHOW"
	MeetingStatusCompleted MeetingStatus = "COMPLETED"
)

// MeetingType distinguishes sales calls from support calls
type MeetingType string

const (
	MeetingTypeSales   MeetingType = "sales"
	MeetingTypeSupport MeetingType = "support"
)

// Meeting represents a booked call. The call-booking subsystem owns meeting
// creation; the sync engine only reads meetings and re-points them when
// contacts or deals are merged.
type Meeting struct {
	shared.BaseEntity

	StartTime *time.Time
	EndTime   *time.Time

	Status      MeetingStatus `gorm:"type:varchar(255);not null;default:'PLANNED'"`
	MeetingType MeetingType   `gorm:"type:varchar(255);not null"`

	AdminID   int64    `gorm:"not null;index"`
	ContactID int64    `gorm:"not null;index"`
	DealID    *int64   `gorm:"index"`
	Admin     *Admin   `gorm:"foreignKey:AdminID"`
	Contact   *Contact `gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE"`
	Deal      *Deal    `gorm:"foreignKey:DealID"`
}

// TableName returns the table name for GORM
func (Meeting) TableName() string {
	return "meetings"
}

// Name returns the activity subject used when the meeting is pushed to
// Pipedrive.
func (m *Meeting) Name(adminName string) string {
	if m.MeetingType == MeetingTypeSales {
		return "Introductory call with " + adminName
	}
	return "Support call with " + adminName
}
