package transportcore

import (
	"errors"
)

// Sentinel errors for transport operations.
var (
	// ErrMissingToken indicates the request carried no Authorization header.
	ErrMissingToken = errors.New("missing authorization token")

	// ErrMalformedAuthorization indicates an Authorization header that is
	// not a single well-formed Bearer credential.
	ErrMalformedAuthorization = errors.New("malformed authorization header")

	// ErrServerClosed indicates the server has been closed and cannot accept requests.
	ErrServerClosed = errors.New("server closed")
)
