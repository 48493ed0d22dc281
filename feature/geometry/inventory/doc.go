// Package inventory holds the transient, in-memory representation of a
// geometry inventory: sensors, recorders, networks, stations and arrays as
// produced by reading a description file.
//
// Transient entities carry their natural keys (serial number, network code,
// station key, array name) but no store identity; binding to a project
// database is the job of the geometry package.
//
// # Description format
//
// ParseFile reads the JSON description format. Duplicate keys inside one
// description are non-fatal warnings (first occurrence wins), while
// structurally broken entries (missing natural keys, malformed JSON) are
// fatal ParseErrors that abort before any store interaction.
package inventory
