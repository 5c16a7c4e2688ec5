// Package schema compiles the validation contracts used to parse inbound
// webhook snapshots. A contract is the entity's fixed canonical fields plus
// one field per administrator-defined custom field, keyed by the external
// system's own field identifier so payloads validate directly. Contracts are
// rebuilt wholesale from the custom field registry and swapped atomically;
// in-flight validations keep observing the set they started with.
package schema
