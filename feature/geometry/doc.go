// Package geometry implements the inventory merge and replace engine.
//
// A Store binds a project's persisted geometry inventory to one database
// connection. Two reconciliation operations exist:
//
//   - Merge computes a union keyed on natural keys: transient entities are
//     inserted or overwrite the attributes of their persisted counterpart,
//     persisted entities without a transient counterpart stay untouched.
//   - Replace discards the whole persisted inventory and rebuilds it from
//     the transient one, deletion and re-insertion in a single transaction.
//
// Both operations process entity kinds in dependency order (sensors,
// recorders, networks, stations, arrays) and resolve references against the
// open transaction, so a network inserted by the current merge is already
// visible when its stations are processed. A station whose network, or an
// array whose member station, cannot be resolved aborts the operation with
// a ReferenceError and a full rollback.
//
// Snapshots of the persisted inventory can be written to object storage
// before a replace and restored from it later.
package geometry
