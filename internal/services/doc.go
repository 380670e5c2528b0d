// Package services defines the shared error taxonomy for the packaging
// engine. Errors are tagged with sentinel markers so callers can classify
// a failure (fatal, warning, retryable) without parsing messages.
package services
