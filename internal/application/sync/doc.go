// Package sync implements the inbound half of the reconciliation engine:
// normalizing each external system's payload quirks, validating snapshots
// against the compiled contracts, and applying create/update/delete/merge
// decisions to the local store. Outbound pushes are only decided here; the
// push package executes them in the background.
package sync
