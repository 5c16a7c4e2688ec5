package crm

import (
	"context"
)

// CompanyRepository defines the interface for company persistence
type CompanyRepository interface {
	// FindByID finds a company by its local ID
	FindByID(ctx context.Context, id int64) (*Company, error)

	// FindByPDOrgID finds a company by its Pipedrive organisation ID
	FindByPDOrgID(ctx context.Context, pdOrgID int64) (*Company, error)

	// FindByTC2AgencyID finds a company by its TC2 agency ID
	FindByTC2AgencyID(ctx context.Context, tc2AgencyID int64) (*Company, error)

	// FindByTC2CligencyID finds a company by its TC2 cligency ID
	FindByTC2CligencyID(ctx context.Context, tc2CligencyID int64) (*Company, error)

	// Save creates or updates a company
	Save(ctx context.Context, company *Company) error

	// Delete deletes a company; custom field values and dependent rows
	// cascade per the store's FK rules
	Delete(ctx context.Context, id int64) error

	// ExistsByPDOrgID reports whether a company with the given Pipedrive
	// organisation ID exists
	ExistsByPDOrgID(ctx context.Context, pdOrgID int64) (bool, error)
}
