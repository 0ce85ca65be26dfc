// Package logging builds the process slog.Logger from configuration.
package logging
