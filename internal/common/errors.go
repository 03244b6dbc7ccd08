// Package common defines the structured error schema shared across the
// SecretBin client layers. Error names follow the server's JSON error
// schema, so errors.Is works the same for errors raised locally and errors
// reported by the server. Callers match against the sentinel values below.
package common

import "fmt"

// Error is a structured error carrying a server-compatible error name, a
// human-readable message and, for server-reported errors, the HTTP status.
type Error struct {
	Name    string `json:"name"`
	Message string `json:"message,omitempty"`
	Status  int    `json:"status,omitempty"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Name
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// Is reports whether target is an *Error with the same Name. Message and
// Status are ignored so the sentinels can be used with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Name == e.Name
}

var (
	// ErrConfig indicates unusable server metadata (unreachable config,
	// unparsable version, undefined default expiration). Fatal: a client
	// that failed construction must not be used.
	ErrConfig = &Error{Name: "ConfigError"}

	// ErrInvalidExpirationTime indicates an expiration id the server does
	// not offer. Recoverable: retry with one of the enumerated options.
	ErrInvalidExpirationTime = &Error{Name: "InvalidExpirationTime"}

	// ErrInvalidBurnAfter indicates a negative burn-after count.
	ErrInvalidBurnAfter = &Error{Name: "InvalidBurnAfter"}

	// ErrCrypto indicates a violated cryptographic precondition, e.g. a
	// key of the wrong length. Unreachable in correct use of the library.
	ErrCrypto = &Error{Name: "CryptoError"}

	// ErrEncoding indicates a violated encoding precondition, e.g. a nonce
	// of the wrong length. Unreachable in correct use of the library.
	ErrEncoding = &Error{Name: "EncodingError"}

	// ErrTransport indicates an HTTP failure without a structured error
	// body. Server-reported structured errors keep their own names.
	ErrTransport = &Error{Name: "TransportError"}
)

// Errorf builds an error with the sentinel's name and a formatted message.
func Errorf(sentinel *Error, format string, args ...any) *Error {
	return &Error{Name: sentinel.Name, Message: fmt.Sprintf(format, args...)}
}
