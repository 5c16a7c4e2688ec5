package sync

import (
	"github.com/hermes/backend/internal/application/schema"
	"github.com/hermes/backend/internal/domain/crm"
)

// HermesIDField is the machine name of the custom field external systems use
// to carry the local entity ID back to Hermes. Its value is where merge
// markers appear.
const HermesIDField = "hermes_id"

// Snapshot is one validated end of a webhook snapshot pair. MergeIDs carries
// every local ID found in a merge marker; its first element is the primary
// (surviving) entity and is the one the validated object resolved.
type Snapshot struct {
	Object   *schema.Object
	MergeIDs []int64
}

// SnapshotPair is the (previous, current) object delivered by a webhook.
// current == nil means delete, previous == nil means create, both present
// means update. Both absent is invalid.
type SnapshotPair struct {
	Kind     crm.ObjectKind
	System   schema.System
	Previous *Snapshot
	Current  *Snapshot
}

// Valid reports whether at least one end of the pair is present.
func (p *SnapshotPair) Valid() bool {
	return p.Previous != nil || p.Current != nil
}

// Action describes what the reconciler did with a snapshot pair.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
	ActionNoop    Action = "noop"
)

// PushRequest asks for one entity to be mirrored out to a target system
// after the inbound response is sent.
type PushRequest struct {
	Kind   crm.ObjectKind
	ID     int64
	Target schema.System
}

// Result reports the outcome of reconciling one snapshot pair.
type Result struct {
	Kind     crm.ObjectKind
	Action   Action
	EntityID int64
	// ChangedCustomFields lists the machine names of custom field values that
	// changed, after inherited-field propagation has already run on them.
	ChangedCustomFields []string
	Pushes              []PushRequest
}

func (r *Result) push(kind crm.ObjectKind, id int64, target schema.System) {
	r.Pushes = append(r.Pushes, PushRequest{Kind: kind, ID: id, Target: target})
}
