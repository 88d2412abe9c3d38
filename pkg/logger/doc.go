// Package logger provides the structured logging interface used across
// dyscraper.
//
// It wraps zerolog: console output is colourised for humans and, when a
// log file is configured, JSON lines are also written to a file rotated
// by lumberjack.
//
//	err := logger.Initialize(&cfg.Logging)
//	logger.WithField("creator", "alice").Info("Scan started")
//
// Components take a Logger explicitly so tests can pass NewNopLogger or a
// TestLogger and assert on captured messages.
package logger
