package crm

import (
	"context"
)

// ContactRepository defines the interface for contact persistence
type ContactRepository interface {
	// FindByID finds a contact by its local ID
	FindByID(ctx context.Context, id int64) (*Contact, error)

	// FindByPDPersonID finds a contact by its Pipedrive person ID
	FindByPDPersonID(ctx context.Context, pdPersonID int64) (*Contact, error)

	// FindByTC2SRID finds a contact by its TC2 service recipient ID
	FindByTC2SRID(ctx context.Context, tc2SRID int64) (*Contact, error)

	// FindByCompanyID finds all contacts belonging to a company
	FindByCompanyID(ctx context.Context, companyID int64) ([]Contact, error)

	// Save creates or updates a contact
	Save(ctx context.Context, contact *Contact) error

	// Delete deletes a contact
	Delete(ctx context.Context, id int64) error

	// ReassignCompany re-points every contact of fromCompanyID at toCompanyID.
	// Used during merge reconciliation so dependents are never orphaned.
	ReassignCompany(ctx context.Context, fromCompanyID, toCompanyID int64) (int64, error)
}
