package interfaces

import "context"

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for HTTP requests with potential proxy/retry logic.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a GET request to the specified URL with query parameters and
	// extra headers. Returns the response body or a TransportError.
	Get(ctx context.Context, url string, params map[string]string, headers map[string]string) ([]byte, error)
}
