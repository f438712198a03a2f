// Package log builds catalogscan's slog logger.
//
// Catalog configurations may carry a session cookie or auth headers for
// catalogs behind a login. RedactingHandler masks such attributes before
// they reach the output, in text and JSON mode alike and regardless of
// level.
//
//	logger := log.NewLogger(os.Stderr, verbose, jsonOutput)
//	slog.SetDefault(logger)
package log
