// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) and a small helper for stamping every log line
// of one import run with its operation id.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("import started")
//
//	// Inside one operation:
//	l := logger.WithOperation(log, opID)
//	l.Error("merge failed", zap.Error(err))
package logger
