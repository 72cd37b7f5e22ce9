// Package logging configures the process-wide slog logger and provides
// attribute helpers shared across clipcast components.
package logging
