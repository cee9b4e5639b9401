package repository

// JobRepository persists batch execution metadata.
// It embeds smaller repository interfaces to separate concerns.
type JobRepository interface {
	JobExecution
	StepExecution
	// Close releases the underlying connection.
	Close() error
}
