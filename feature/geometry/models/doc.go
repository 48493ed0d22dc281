// Package models defines the persisted geometry records and their tables.
//
// The schema is a flat table per entity kind. Relationships are stored as
// explicit key columns (network_id on stations, array_id/station_id on
// membership rows) backed by foreign-key constraints; the engine resolves
// them on demand instead of keeping live object references.
//
// All tables live in the project's geometry namespace: the connection's
// naming strategy prefixes every table with the project slug, giving names
// like alptien_geom_station. The composite unique index on stations carries
// a fixed name, so a sqlite database file holds exactly one project; MySQL
// scopes index names per table and supports many projects per database.
package models
