// Package services defines the shared error taxonomy and request context
// helpers used by the orchestrators and the HTTP surface.
package services
