package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-kit/log/level"
	"github.com/mailio/go-mailio-identity/global"
	"github.com/mailio/go-mailio-identity/metrics"
	"github.com/mailio/go-mailio-identity/types"
	"github.com/mailio/go-mailio-identity/util"
)

// BundleVerifier verifies the certificate chain and signatures of a backed assertion
type BundleVerifier interface {
	VerifyBundle(bundle types.AssertionBundle, now time.Time, getRoot util.RootKeyFunc) (*types.BundleResult, error)
}

// BundleVerifierFunc adapts a function to BundleVerifier
type BundleVerifierFunc func(bundle types.AssertionBundle, now time.Time, getRoot util.RootKeyFunc) (*types.BundleResult, error)

func (f BundleVerifierFunc) VerifyBundle(bundle types.AssertionBundle, now time.Time, getRoot util.RootKeyFunc) (*types.BundleResult, error) {
	return f(bundle, now, getRoot)
}

type VerifierConfig struct {
	// PublicURL is the canonical origin of this service, the only accepted audience
	PublicURL string
	// OwnKey verifies certificates this service issued itself (proxy IdP case)
	OwnKey   *jose.JSONWebKey
	Disabled bool
}

type AssertionVerifier struct {
	config      VerifierConfig
	hostname    string
	origin      string
	authorities AuthorityResolver
	bundles     BundleVerifier
}

// NewAssertionVerifier creates a verifier. bundles defaults to util.VerifyBundle when nil.
func NewAssertionVerifier(config VerifierConfig, authorities AuthorityResolver, bundles BundleVerifier) (*AssertionVerifier, error) {
	origin, err := util.OriginOnly(config.PublicURL)
	if err != nil {
		return nil, err
	}
	hostname, err := util.Hostname(config.PublicURL)
	if err != nil {
		return nil, err
	}
	if bundles == nil {
		bundles = BundleVerifierFunc(util.VerifyBundle)
	}
	return &AssertionVerifier{
		config:      config,
		hostname:    hostname,
		origin:      origin,
		authorities: authorities,
		bundles:     bundles,
	}, nil
}

// Hostname is this service's own identity as a certificate issuer
func (v *AssertionVerifier) Hostname() string {
	return v.hostname
}

// Verify checks a backed assertion and returns the email it proves ownership of
func (v *AssertionVerifier) Verify(ctx context.Context, bundle types.AssertionBundle, now time.Time) (string, error) {
	email, _, err := v.verify(ctx, bundle, now)
	return email, err
}

// VerifyWithIssuer is Verify that also returns the root issuer of the certificate
func (v *AssertionVerifier) VerifyWithIssuer(ctx context.Context, bundle types.AssertionBundle, now time.Time) (string, string, error) {
	return v.verify(ctx, bundle, now)
}

func (v *AssertionVerifier) verify(ctx context.Context, bundle types.AssertionBundle, now time.Time) (string, string, error) {
	email, issuer, err := v.check(ctx, bundle, now)
	result := "ok"
	if err != nil {
		result = verificationResult(err)
		level.Info(global.Logger).Log("msg", "assertion rejected", "issuer", issuer, "err", err)
	}
	metrics.AssertionVerificationsTotal.WithLabelValues(result).Inc()
	return email, issuer, err
}

func (v *AssertionVerifier) check(ctx context.Context, bundle types.AssertionBundle, now time.Time) (string, string, error) {
	if v.config.Disabled {
		return "", "", types.ErrPrimarySupportDisabled
	}

	var rootIssuer string
	getRoot := func(issuer string) (*jose.JSONWebKey, error) {
		rootIssuer = strings.ToLower(issuer)
		// certificates issued by this service itself (proxy IdP)
		if rootIssuer == v.hostname {
			if v.config.OwnKey == nil {
				return nil, fmt.Errorf("%w for %s", types.ErrNoPublicKey, rootIssuer)
			}
			return v.config.OwnKey, nil
		}
		return v.authorities.PublicKey(ctx, rootIssuer)
	}

	result, err := v.bundles.VerifyBundle(bundle, now, getRoot)
	if err != nil {
		return "", rootIssuer, verificationFailed(err)
	}
	if len(result.Certificates) == 0 {
		return "", rootIssuer, verificationFailed(fmt.Errorf("%w: no certificates", types.ErrMalformedAssertion))
	}
	if len(result.Certificates) > 1 {
		return "", rootIssuer, verificationFailed(types.ErrCertChainNotAllowed)
	}

	got, err := util.OriginOnly(result.Assertion.Audience)
	if err != nil || got != v.origin {
		if err != nil {
			got = result.Assertion.Audience
		}
		return "", rootIssuer, verificationFailed(fmt.Errorf("%w: can't log in with an assertion for '%s', expected '%s'", types.ErrAudienceMismatch, got, v.origin))
	}

	principal := result.Certificates[len(result.Certificates)-1].Principal
	emailDomain, err := util.EmailDomain(principal.Email)
	if err != nil {
		return "", rootIssuer, verificationFailed(fmt.Errorf("%w: invalid principal %q", types.ErrMalformedAssertion, principal.Email))
	}

	if emailDomain != rootIssuer && !v.authorities.DelegatesAuthority(ctx, emailDomain, rootIssuer) {
		return "", rootIssuer, verificationFailed(fmt.Errorf("%w: issuer '%s' may not speak for emails from '%s'", types.ErrIssuerNotAuthorized, rootIssuer, emailDomain))
	}
	return principal.Email, rootIssuer, nil
}

func verificationFailed(err error) error {
	return fmt.Errorf("%w: %w", types.ErrVerificationFailed, err)
}

// verificationResult is the metrics label for a failed verification
func verificationResult(err error) string {
	switch {
	case errors.Is(err, types.ErrPrimarySupportDisabled):
		return "disabled"
	case errors.Is(err, types.ErrCertChainNotAllowed):
		return "chained"
	case errors.Is(err, types.ErrAudienceMismatch):
		return "audience"
	case errors.Is(err, types.ErrIssuerNotAuthorized):
		return "issuer"
	case errors.Is(err, types.ErrCertificateExpired), errors.Is(err, types.ErrAssertionExpired):
		return "expired"
	case errors.Is(err, types.ErrSignatureInvalid):
		return "signature"
	default:
		return "invalid"
	}
}
