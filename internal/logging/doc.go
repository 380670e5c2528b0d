// Package logging builds the slog loggers used across the packaging
// engine: a console handler for interactive use, a JSON handler for
// machine consumption, and helpers that attach standardized attributes
// (component, asset identity, pipeline phase) to log records.
package logging
