package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Session is one write transaction against the project database.
//
// A session is acquired with Begin, used through Tx, and finished with
// exactly one of Commit or Rollback. Close releases the session on every
// exit path and is idempotent: calling it twice, or after Commit or
// Rollback, is a no-op. The intended usage is:
//
//	sess, err := database.Begin(db)
//	if err != nil { ... }
//	defer sess.Close()
//	// ... stage changes on sess.Tx() ...
//	return sess.Commit()
type Session struct {
	tx   *gorm.DB
	done bool
}

// Begin starts a new write transaction.
func Begin(db *gorm.DB) (*Session, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	return &Session{tx: tx}, nil
}

// Tx returns the transaction handle for staging changes.
// All reads through Tx observe the session's own uncommitted writes.
func (s *Session) Tx() *gorm.DB {
	return s.tx
}

// Commit makes all staged changes durable and releases the session.
func (s *Session) Commit() error {
	if s.done {
		return fmt.Errorf("session already finished")
	}
	s.done = true
	if err := s.tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback discards all staged changes and releases the session.
func (s *Session) Rollback() error {
	if s.done {
		return nil
	}
	s.done = true
	if err := s.tx.Rollback().Error; err != nil {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}

// Close releases the session if it is still open, rolling back any staged
// changes. It is safe to call multiple times and after Commit or Rollback,
// which makes it suitable for defer.
func (s *Session) Close() {
	if s.done {
		return
	}
	_ = s.Rollback()
}
