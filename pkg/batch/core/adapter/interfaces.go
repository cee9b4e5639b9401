// Package adapter defines the generic resource abstractions shared by the
// database and storage adapters.
package adapter

// ResourceConnection is a named, closable connection to an external resource.
type ResourceConnection interface {
	// Close releases the connection.
	Close() error
	// Type returns the adapter type (e.g. "sqlite", "gcs", "local").
	Type() string
	// Name returns the configured connection name.
	Name() string
}
