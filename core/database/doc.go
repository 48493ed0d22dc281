// Package database provides the connection and transaction layer for the
// project database.
//
// # Drivers
//
// Two GORM drivers are supported: mysql for shared project databases and
// sqlite for single-file projects. The sqlite DSN enables foreign-key
// enforcement, which the geometry tables depend on.
//
// # Sessions
//
// Session wraps one write transaction with a commit-or-rollback guarantee on
// every exit path. Callers acquire a session with Begin, defer Close, and
// finish with Commit or Rollback; Close after either is a no-op. There is no
// package-level database handle: connections and sessions are passed
// explicitly to the code that uses them.
package database
