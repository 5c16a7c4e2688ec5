package crm

import (
	"context"
)

// DealRepository defines the interface for deal persistence
type DealRepository interface {
	// FindByID finds a deal by its local ID
	FindByID(ctx context.Context, id int64) (*Deal, error)

	// FindByPDDealID finds a deal by its Pipedrive deal ID
	FindByPDDealID(ctx context.Context, pdDealID int64) (*Deal, error)

	// FindOpenByCompanyID finds the open deals owned by a company
	FindOpenByCompanyID(ctx context.Context, companyID int64) ([]Deal, error)

	// FindByCompanyID finds all deals owned by a company
	FindByCompanyID(ctx context.Context, companyID int64) ([]Deal, error)

	// Save creates or updates a deal
	Save(ctx context.Context, deal *Deal) error

	// Delete deletes a deal
	Delete(ctx context.Context, id int64) error

	// ReassignCompany re-points every deal of fromCompanyID at toCompanyID
	ReassignCompany(ctx context.Context, fromCompanyID, toCompanyID int64) (int64, error)

	// ReassignContact re-points every deal of fromContactID at toContactID
	ReassignContact(ctx context.Context, fromContactID, toContactID int64) (int64, error)
}
