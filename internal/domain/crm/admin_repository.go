package crm

import (
	"context"
)

// AdminRepository defines the interface for admin persistence. Admin rows are
// managed by the admin UI; the sync engine only reads them.
type AdminRepository interface {
	// FindByID finds an admin by its local ID
	FindByID(ctx context.Context, id int64) (*Admin, error)

	// FindByTC2AdminID finds an admin by its TC2 admin ID
	FindByTC2AdminID(ctx context.Context, tc2AdminID int64) (*Admin, error)

	// FindByPDOwnerID finds an admin by its Pipedrive user ID
	FindByPDOwnerID(ctx context.Context, pdOwnerID int64) (*Admin, error)
}
