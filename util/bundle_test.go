package util

import (
	"crypto/ed25519"
	"errors"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/mailio/go-mailio-identity/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testIdentity struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

func newTestIdentity(t *testing.T) testIdentity {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return testIdentity{pub: pub, priv: priv}
}

func rootsOf(issuer string, key ed25519.PublicKey) RootKeyFunc {
	return func(iss string) (*jose.JSONWebKey, error) {
		if iss != issuer {
			return nil, errors.New("unknown issuer " + iss)
		}
		return PublicJWK(key), nil
	}
}

func TestVerifyBundle(t *testing.T) {
	now := time.Now()
	idp := newTestIdentity(t)
	user := newTestIdentity(t)

	cert, err := CreateCertificate("example.com", idp.priv, PublicJWK(user.pub), "alice@example.com", now, now.Add(time.Hour))
	require.NoError(t, err)
	assertion, err := CreateAssertion(user.priv, "https://login.example.org", now.Add(2*time.Minute))
	require.NoError(t, err)

	result, err := VerifyBundle(BundleOf([]string{cert}, assertion), now, rootsOf("example.com", idp.pub))
	require.NoError(t, err)
	require.Len(t, result.Certificates, 1)
	assert.Equal(t, "example.com", result.Certificates[0].Issuer)
	assert.Equal(t, "alice@example.com", result.Certificates[0].Principal.Email)
	assert.Equal(t, "https://login.example.org", result.Assertion.Audience)
}

func TestVerifyBundleChain(t *testing.T) {
	now := time.Now()
	root := newTestIdentity(t)
	intermediate := newTestIdentity(t)
	user := newTestIdentity(t)

	c1, err := CreateCertificate("root.com", root.priv, PublicJWK(intermediate.pub), "idp@root.com", now, now.Add(time.Hour))
	require.NoError(t, err)
	c2, err := CreateCertificate("root.com", intermediate.priv, PublicJWK(user.pub), "alice@root.com", now, now.Add(time.Hour))
	require.NoError(t, err)
	a, err := CreateAssertion(user.priv, "https://rp.example", now.Add(time.Minute))
	require.NoError(t, err)

	result, err := VerifyBundle(BundleOf([]string{c1, c2}, a), now, rootsOf("root.com", root.pub))
	require.NoError(t, err)
	assert.Len(t, result.Certificates, 2)
}

func TestVerifyBundleWrongRootKey(t *testing.T) {
	now := time.Now()
	idp := newTestIdentity(t)
	other := newTestIdentity(t)
	user := newTestIdentity(t)

	cert, _ := CreateCertificate("example.com", idp.priv, PublicJWK(user.pub), "alice@example.com", now, now.Add(time.Hour))
	assertion, _ := CreateAssertion(user.priv, "https://rp.example", now.Add(time.Minute))

	_, err := VerifyBundle(BundleOf([]string{cert}, assertion), now, rootsOf("example.com", other.pub))
	assert.ErrorIs(t, err, types.ErrSignatureInvalid)
}

func TestVerifyBundleAssertionSignedByWrongKey(t *testing.T) {
	now := time.Now()
	idp := newTestIdentity(t)
	user := newTestIdentity(t)
	mallory := newTestIdentity(t)

	cert, _ := CreateCertificate("example.com", idp.priv, PublicJWK(user.pub), "alice@example.com", now, now.Add(time.Hour))
	assertion, _ := CreateAssertion(mallory.priv, "https://rp.example", now.Add(time.Minute))

	_, err := VerifyBundle(BundleOf([]string{cert}, assertion), now, rootsOf("example.com", idp.pub))
	assert.ErrorIs(t, err, types.ErrSignatureInvalid)
}

func TestVerifyBundleExpired(t *testing.T) {
	now := time.Now()
	idp := newTestIdentity(t)
	user := newTestIdentity(t)

	cert, _ := CreateCertificate("example.com", idp.priv, PublicJWK(user.pub), "alice@example.com", now.Add(-2*time.Hour), now.Add(-time.Hour))
	assertion, _ := CreateAssertion(user.priv, "https://rp.example", now.Add(time.Minute))
	_, err := VerifyBundle(BundleOf([]string{cert}, assertion), now, rootsOf("example.com", idp.pub))
	assert.ErrorIs(t, err, types.ErrCertificateExpired)

	cert, _ = CreateCertificate("example.com", idp.priv, PublicJWK(user.pub), "alice@example.com", now, now.Add(time.Hour))
	assertion, _ = CreateAssertion(user.priv, "https://rp.example", now.Add(-time.Minute))
	_, err = VerifyBundle(BundleOf([]string{cert}, assertion), now, rootsOf("example.com", idp.pub))
	assert.ErrorIs(t, err, types.ErrAssertionExpired)
}

func TestVerifyBundleMalformed(t *testing.T) {
	_, err := VerifyBundle("just-one-part", time.Now(), rootsOf("x", nil))
	assert.ErrorIs(t, err, types.ErrMalformedAssertion)

	_, err = VerifyBundle("garbage~garbage", time.Now(), rootsOf("x", nil))
	assert.ErrorIs(t, err, types.ErrMalformedAssertion)
}

func TestVerifyBundleRootLookupFails(t *testing.T) {
	now := time.Now()
	idp := newTestIdentity(t)
	user := newTestIdentity(t)
	cert, _ := CreateCertificate("unknown.com", idp.priv, PublicJWK(user.pub), "alice@unknown.com", now, now.Add(time.Hour))
	assertion, _ := CreateAssertion(user.priv, "https://rp.example", now.Add(time.Minute))

	_, err := VerifyBundle(BundleOf([]string{cert}, assertion), now, rootsOf("example.com", idp.pub))
	assert.EqualError(t, err, "unknown issuer unknown.com")
}
