package interfaces

import "spot-observer/src/models"

// -----------------------------------------------------------------------------
// IDatabase defines the contract for the snapshot history archive.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveSnapshot appends every row of a published snapshot.
	SaveSnapshot(snapshot *models.MSnapshot) error

	// -----------------------------------------------------------------------------

	// CountRows returns the number of archived rows for a source.
	CountRows(source models.MSourceID) (int, error)

	// -----------------------------------------------------------------------------

	// CleanupOldData removes data older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
