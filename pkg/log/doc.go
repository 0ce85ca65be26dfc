// Package log provides a structured trace of broker activity.
//
// The trace is separate from operational logging (slog): it is a complete,
// machine-readable record of calls, result deliveries, property events and
// subscription changes, meant for offline analysis with vhal-log.
//
// # Basic Usage
//
//	// Console during development
//	cfg.Trace = log.NewSlogAdapter(slog.Default())
//
//	// Binary file
//	cfg.Trace, _ = log.NewFileLogger("/var/log/vhal/broker.vlog")
//
//	// Both
//	cfg.Trace = log.NewMultiLogger(console, file)
//
// # File Format
//
// Trace files are a stream of CBOR-encoded Events with integer keys,
// conventionally named *.vlog.
package log
