package oauth

import "github.com/jamesprial/mcp-resource-auth/internal/oauth/oautherr"

// Error taxonomy, re-exported from oautherr for callers outside
// internal/oauth. Match with errors.Is.
var (
	// ErrInvalidToken covers malformed tokens, unsupported headers, unknown
	// keys, bad signatures, issuer or audience mismatch and key-set outages.
	ErrInvalidToken = oautherr.ErrInvalidToken

	// ErrExpiredToken indicates exp has passed.
	ErrExpiredToken = oautherr.ErrExpiredToken

	// ErrTokenNotActive indicates nbf is still in the future.
	ErrTokenNotActive = oautherr.ErrTokenNotActive

	// ErrInsufficientScope indicates a required scope was not granted.
	ErrInsufficientScope = oautherr.ErrInsufficientScope

	// ErrJWKSFetchFailed indicates the key set could not be retrieved.
	ErrJWKSFetchFailed = oautherr.ErrJWKSFetchFailed

	// ErrInvalidJWKSFormat indicates the key set document is malformed.
	ErrInvalidJWKSFormat = oautherr.ErrInvalidJWKSFormat
)

// FailureReason returns the internal diagnostic reason recorded on err, for
// logging only.
func FailureReason(err error) string {
	return oautherr.Reason(err)
}
