// Package crm holds the canonical business entities kept in sync between
// Hermes, TutorCruncher (TC2) and Pipedrive, together with their repository
// contracts. Each entity has a local integer identity plus zero or more
// external identifiers (pd_org_id, tc2_cligency_id, ...) that are unique
// when present.
package crm
