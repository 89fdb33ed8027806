package interfaces

import "spot-observer/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger is a push surface fed by snapshot publishes.
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// OnPublish is called after a new snapshot has been published.
	OnPublish(snapshot *models.MSnapshot)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
