package transport

import (
	"github.com/jamesprial/mcp-resource-auth/internal/transport/transportcore"
)

var (
	// ErrMissingToken indicates the request carried no Authorization header.
	ErrMissingToken = transportcore.ErrMissingToken

	// ErrMalformedAuthorization indicates an Authorization header that is
	// not a single well-formed Bearer credential.
	ErrMalformedAuthorization = transportcore.ErrMalformedAuthorization

	// ErrServerClosed indicates the server has been closed and cannot accept requests.
	ErrServerClosed = transportcore.ErrServerClosed
)
