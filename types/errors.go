package types

import "errors"

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when the resource conflicts (e.g. update of old revision)
	ErrConflict = errors.New("conflict")

	// ErrBadRequest is returned for malformed input
	ErrBadRequest = errors.New("bad request")

	// ErrInvalidEmail is returned when the email is invalid
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrInvalidDomain is returned when a domain is empty or can't be normalized
	ErrInvalidDomain = errors.New("invalid domain")

	// ErrDatabaseUnavailable signals a transient backing store outage (retryable, never "not found")
	ErrDatabaseUnavailable = errors.New("database unavailable")
)

// discovery
var (
	// ErrNotAPrimary is the benign "this domain is not an identity authority" result
	ErrNotAPrimary = errors.New("not a primary authority")

	ErrMalformedDocument = errors.New("malformed declaration of support")
	ErrMissingKeys       = errors.New("missing required key")
	ErrDelegationCycle   = errors.New("circular reference in delegating authority")
	ErrTooManyHops       = errors.New("too many hops while delegating authority")
	ErrInvalidURL        = errors.New("invalid authority url")
	ErrInvalidPublicKey  = errors.New("invalid public key")
	ErrNoPublicKey       = errors.New("can't get public key")
)

// assertion verification
var (
	ErrPrimarySupportDisabled = errors.New("primary support disabled")

	ErrVerificationFailed  = errors.New("assertion verification failed")
	ErrMalformedAssertion  = errors.New("malformed assertion")
	ErrSignatureInvalid    = errors.New("invalid signature")
	ErrCertificateExpired  = errors.New("certificate expired")
	ErrAssertionExpired    = errors.New("assertion expired")
	ErrCertChainNotAllowed = errors.New("certificate chaining is not yet allowed")
	ErrAudienceMismatch    = errors.New("audience mismatch")
	ErrIssuerNotAuthorized = errors.New("issuer may not speak for domain")
	ErrPrincipalMismatch   = errors.New("assertion principal does not match email")
)
