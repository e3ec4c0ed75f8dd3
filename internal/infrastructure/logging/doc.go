// Package logging provides structured logging for the home simulator.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - JSON output for machine consumption
//   - Text output for interactive sessions
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # json, text
//	  output: "stderr"   # stdout, stderr, discard
//
// Logs go to stderr by default; stdout belongs to the console.
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("simulation started", "devices", 3)
//	logger.Error("failed to connect", "error", err)
//
// Never log secrets, tokens, passwords, or API keys.
package logging
