package persistence

import (
	"context"

	"github.com/hermes/backend/internal/domain/crm"
	"gorm.io/gorm"
)

// GormMeetingRepository implements MeetingRepository using GORM
type GormMeetingRepository struct {
	db *gorm.DB
}

// NewGormMeetingRepository creates a new GormMeetingRepository
func NewGormMeetingRepository(db *gorm.DB) *GormMeetingRepository {
	return &GormMeetingRepository{db: db}
}

// FindByID finds a meeting by its local ID
func (r *GormMeetingRepository) FindByID(ctx context.Context, id int64) (*crm.Meeting, error) {
	var meeting crm.Meeting
	if err := r.db.WithContext(ctx).First(&meeting, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &meeting, nil
}

// FindByContactID finds all meetings booked with a contact
func (r *GormMeetingRepository) FindByContactID(ctx context.Context, contactID int64) ([]crm.Meeting, error) {
	var meetings []crm.Meeting
	if err := r.db.WithContext(ctx).
		Where("contact_id = ?", contactID).
		Order("id").
		Find(&meetings).Error; err != nil {
		return nil, translateError(err)
	}
	return meetings, nil
}

// ReassignContact re-points every meeting of fromContactID at toContactID
func (r *GormMeetingRepository) ReassignContact(ctx context.Context, fromContactID, toContactID int64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&crm.Meeting{}).
		Where("contact_id = ?", fromContactID).
		Update("contact_id", toContactID)
	return result.RowsAffected, translateError(result.Error)
}

// ReassignDeal re-points every meeting of fromDealID at toDealID
func (r *GormMeetingRepository) ReassignDeal(ctx context.Context, fromDealID, toDealID int64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&crm.Meeting{}).
		Where("deal_id = ?", fromDealID).
		Update("deal_id", toDealID)
	return result.RowsAffected, translateError(result.Error)
}
