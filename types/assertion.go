package types

import (
	"time"

	"github.com/go-jose/go-jose/v3"
)

// AssertionBundle is a backed assertion: one or more certificates followed by
// a signed assertion, joined by "~".
type AssertionBundle string

type Principal struct {
	Email string `json:"email"`
}

// CertificateParams are the verified claims of a single certificate in a bundle
type CertificateParams struct {
	Issuer    string           `json:"iss"`
	Principal Principal        `json:"principal"`
	PublicKey *jose.JSONWebKey `json:"-"`
	IssuedAt  time.Time        `json:"-"`
	ExpiresAt time.Time        `json:"-"`
}

// AssertionParams are the verified claims of the final signed payload
type AssertionParams struct {
	Audience  string    `json:"aud"`
	ExpiresAt time.Time `json:"-"`
}

// BundleResult is the output of a successful bundle verification
type BundleResult struct {
	Certificates []CertificateParams
	Payload      map[string]interface{}
	Assertion    AssertionParams
}
