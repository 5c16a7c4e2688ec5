package push

import "context"

// PipedriveGateway is the outbound Pipedrive surface the pusher needs. The
// infrastructure client implements it; gone remote objects (404/410) surface
// as shared.ErrNotFound.
type PipedriveGateway interface {
	GetOrganization(ctx context.Context, pdOrgID int64) (map[string]any, error)
	CreateOrganization(ctx context.Context, payload map[string]any) (int64, error)
	UpdateOrganization(ctx context.Context, pdOrgID int64, payload map[string]any) error
	// SearchOrganizationByCligencyID looks for an existing organization that
	// already carries the given TC2 cligency ID, so re-pushes after a lost
	// local row never create duplicates.
	SearchOrganizationByCligencyID(ctx context.Context, cligencyID int64) (int64, bool, error)

	GetPerson(ctx context.Context, pdPersonID int64) (map[string]any, error)
	CreatePerson(ctx context.Context, payload map[string]any) (int64, error)
	UpdatePerson(ctx context.Context, pdPersonID int64, payload map[string]any) error

	GetDeal(ctx context.Context, pdDealID int64) (map[string]any, error)
	CreateDeal(ctx context.Context, payload map[string]any) (int64, error)
	UpdateDeal(ctx context.Context, pdDealID int64, payload map[string]any) error
}

// TC2Gateway is the outbound TC2 surface the pusher needs.
type TC2Gateway interface {
	GetCligency(ctx context.Context, cligencyID int64) (map[string]any, error)
	UpdateCligency(ctx context.Context, cligencyID int64, payload map[string]any) error
}
