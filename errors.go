package secretbin

import "github.com/secretbin/secretbin-go/internal/common"

// Error is the structured error type used throughout the client. Its Name
// follows the server's error schema, so errors raised locally and errors
// reported by the server compare the same way:
//
//	if errors.Is(err, secretbin.ErrInvalidExpirationTime) { ... }
type Error = common.Error

var (
	// ErrConfig: unusable server metadata. Fatal; a client whose
	// construction failed must not be used.
	ErrConfig = common.ErrConfig

	// ErrInvalidExpirationTime: the expiration id is not offered by the
	// server. Recoverable; the message enumerates the valid options.
	ErrInvalidExpirationTime = common.ErrInvalidExpirationTime

	// ErrInvalidBurnAfter: the burn-after count is negative.
	ErrInvalidBurnAfter = common.ErrInvalidBurnAfter

	// ErrCrypto: a cryptographic precondition was violated. Indicates a
	// bug in the library, not a caller mistake.
	ErrCrypto = common.ErrCrypto

	// ErrEncoding: an encoding precondition was violated. Indicates a bug
	// in the library, not a caller mistake.
	ErrEncoding = common.ErrEncoding

	// ErrTransport: HTTP failure without a structured server error body.
	// Server-reported errors are surfaced verbatim under their own names.
	ErrTransport = common.ErrTransport
)
