package util

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/mailio/go-mailio-identity/types"
)

const bundleSeparator = "~"

// RootKeyFunc returns the public key an issuer signs its certificates with
type RootKeyFunc func(issuer string) (*jose.JSONWebKey, error)

type certificateClaims struct {
	PublicKey *jose.JSONWebKey `json:"public-key"`
	Principal types.Principal `json:"principal"`
}

// VerifyBundle verifies a backed assertion (cert~cert~...~assertion).
// The first certificate is checked against the key returned by getRoot for its
// issuer, each following certificate against the key certified by the previous
// one and the assertion against the key of the last certificate.
func VerifyBundle(bundle types.AssertionBundle, now time.Time, getRoot RootKeyFunc) (*types.BundleResult, error) {
	parts := strings.Split(string(bundle), bundleSeparator)
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: no certificates provided", types.ErrMalformedAssertion)
	}
	certs := parts[:len(parts)-1]
	result := &types.BundleResult{
		Certificates: make([]types.CertificateParams, 0, len(certs)),
	}

	var signingKey *jose.JSONWebKey
	for i, raw := range certs {
		tok, err := jwt.ParseSigned(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: certificate %d: %s", types.ErrMalformedAssertion, i, err.Error())
		}
		if i == 0 {
			var unverified jwt.Claims
			if err := tok.UnsafeClaimsWithoutVerification(&unverified); err != nil {
				return nil, fmt.Errorf("%w: certificate %d: %s", types.ErrMalformedAssertion, i, err.Error())
			}
			if unverified.Issuer == "" {
				return nil, fmt.Errorf("%w: certificate has no issuer", types.ErrMalformedAssertion)
			}
			rootKey, rErr := getRoot(unverified.Issuer)
			if rErr != nil {
				return nil, rErr
			}
			signingKey = rootKey
		}

		var claims jwt.Claims
		var cert certificateClaims
		if err := tok.Claims(signingKey, &claims, &cert); err != nil {
			return nil, fmt.Errorf("%w: certificate %d: %s", types.ErrSignatureInvalid, i, err.Error())
		}
		if err := claims.ValidateWithLeeway(jwt.Expected{Time: now}, 0); err != nil {
			if errors.Is(err, jwt.ErrExpired) {
				return nil, fmt.Errorf("%w: certificate %d", types.ErrCertificateExpired, i)
			}
			return nil, fmt.Errorf("%w: certificate %d: %s", types.ErrMalformedAssertion, i, err.Error())
		}
		if cert.PublicKey == nil || !cert.PublicKey.Valid() || !cert.PublicKey.IsPublic() {
			return nil, fmt.Errorf("%w: certificate %d", types.ErrInvalidPublicKey, i)
		}
		params := types.CertificateParams{
			Issuer:    claims.Issuer,
			Principal: cert.Principal,
			PublicKey: cert.PublicKey,
		}
		if claims.IssuedAt != nil {
			params.IssuedAt = claims.IssuedAt.Time()
		}
		if claims.Expiry != nil {
			params.ExpiresAt = claims.Expiry.Time()
		}
		result.Certificates = append(result.Certificates, params)
		signingKey = cert.PublicKey
	}

	tok, err := jwt.ParseSigned(parts[len(parts)-1])
	if err != nil {
		return nil, fmt.Errorf("%w: assertion: %s", types.ErrMalformedAssertion, err.Error())
	}
	var claims jwt.Claims
	payload := map[string]interface{}{}
	if err := tok.Claims(signingKey, &claims, &payload); err != nil {
		return nil, fmt.Errorf("%w: assertion: %s", types.ErrSignatureInvalid, err.Error())
	}
	if claims.Expiry == nil {
		return nil, fmt.Errorf("%w: assertion has no expiry", types.ErrMalformedAssertion)
	}
	if err := claims.ValidateWithLeeway(jwt.Expected{Time: now}, 0); err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			return nil, types.ErrAssertionExpired
		}
		return nil, fmt.Errorf("%w: assertion: %s", types.ErrMalformedAssertion, err.Error())
	}
	if len(claims.Audience) != 1 {
		return nil, fmt.Errorf("%w: assertion must name exactly one audience", types.ErrMalformedAssertion)
	}
	result.Payload = payload
	result.Assertion = types.AssertionParams{
		Audience:  claims.Audience[0],
		ExpiresAt: claims.Expiry.Time(),
	}
	return result, nil
}

// CreateCertificate signs a certificate binding email to subjectKey
func CreateCertificate(issuer string, issuerKey interface{}, subjectKey *jose.JSONWebKey, email string, issuedAt, expiresAt time.Time) (string, error) {
	signer, err := newSigner(issuerKey)
	if err != nil {
		return "", err
	}
	claims := jwt.Claims{
		Issuer:   issuer,
		IssuedAt: jwt.NewNumericDate(issuedAt),
		Expiry:   jwt.NewNumericDate(expiresAt),
	}
	cert := certificateClaims{
		PublicKey: subjectKey,
		Principal: types.Principal{Email: email},
	}
	return jwt.Signed(signer).Claims(claims).Claims(cert).CompactSerialize()
}

// CreateAssertion signs an assertion for audience with the key of the last certificate
func CreateAssertion(key interface{}, audience string, expiresAt time.Time) (string, error) {
	signer, err := newSigner(key)
	if err != nil {
		return "", err
	}
	claims := jwt.Claims{
		Audience: jwt.Audience{audience},
		Expiry:   jwt.NewNumericDate(expiresAt),
	}
	return jwt.Signed(signer).Claims(claims).CompactSerialize()
}

// BundleOf joins certificates and an assertion into a backed assertion
func BundleOf(certs []string, assertion string) types.AssertionBundle {
	return types.AssertionBundle(strings.Join(append(append([]string{}, certs...), assertion), bundleSeparator))
}

func newSigner(key interface{}) (jose.Signer, error) {
	var alg jose.SignatureAlgorithm
	switch key.(type) {
	case ed25519.PrivateKey:
		alg = jose.EdDSA
	case *rsa.PrivateKey:
		alg = jose.RS256
	case *ecdsa.PrivateKey:
		alg = jose.ES256
	default:
		return nil, fmt.Errorf("unsupported signing key type %T", key)
	}
	return jose.NewSigner(jose.SigningKey{Algorithm: alg, Key: key}, (&jose.SignerOptions{}).WithType("JWT"))
}
