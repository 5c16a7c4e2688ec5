package crm

import (
	"context"
)

// MeetingRepository defines the interface for meeting persistence. Meetings
// are created by the call-booking subsystem; the sync engine only reads and
// re-points them.
type MeetingRepository interface {
	// FindByID finds a meeting by its local ID
	FindByID(ctx context.Context, id int64) (*Meeting, error)

	// FindByContactID finds all meetings booked with a contact
	FindByContactID(ctx context.Context, contactID int64) ([]Meeting, error)

	// ReassignContact re-points every meeting of fromContactID at toContactID
	ReassignContact(ctx context.Context, fromContactID, toContactID int64) (int64, error)

	// ReassignDeal re-points every meeting of fromDealID at toDealID
	ReassignDeal(ctx context.Context, fromDealID, toDealID int64) (int64, error)
}
