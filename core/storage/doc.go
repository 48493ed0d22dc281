// Package storage provides the object-storage client used for inventory
// snapshots.
//
// The Client interface wraps the subset of Minio operations the snapshot
// feature needs, so tests can substitute the generated mock in
// storage/mocks without a running storage service.
package storage
