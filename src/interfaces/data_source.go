package interfaces

import (
	"context"

	"spot-observer/src/models"
)

// -----------------------------------------------------------------------------
// IFetcher performs one upstream request for a source and returns a candidate
// snapshot. Implementations never touch shared state.
// -----------------------------------------------------------------------------

type IFetcher interface {

	// Source returns the identifier of the source this fetcher serves
	Source() models.MSourceID

	// -----------------------------------------------------------------------------

	// Fetch retrieves, decodes and validates one snapshot.
	// Fails with a TransportError or a DecodeError.
	Fetch(ctx context.Context) (*models.MSnapshot, error)
}
