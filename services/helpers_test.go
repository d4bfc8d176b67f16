package services

import (
	"crypto/ed25519"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/jarcoal/httpmock"
	"github.com/mailio/go-mailio-identity/util"
	"github.com/stretchr/testify/require"
)

const wellKnown = "/.well-known/browserid"

func newMockedResolver(t *testing.T, config ResolverConfig) *WellKnownResolver {
	client := resty.New()
	httpmock.ActivateNonDefault(client.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return NewWellKnownResolver(config, client)
}

func newKey(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub, priv
}

func terminalDoc(t *testing.T, pub ed25519.PublicKey) map[string]interface{} {
	jwk, err := json.Marshal(util.PublicJWK(pub))
	require.NoError(t, err)
	return map[string]interface{}{
		"public-key":     json.RawMessage(jwk),
		"authentication": "/sign_in",
		"provisioning":   "/provision",
	}
}

func serveDoc(t *testing.T, domain string, doc interface{}) {
	responder, err := httpmock.NewJsonResponder(http.StatusOK, doc)
	require.NoError(t, err)
	httpmock.RegisterResponder("GET", "https://"+domain+wellKnown, responder)
}

func serveDelegation(t *testing.T, domain, to string) {
	serveDoc(t, domain, map[string]string{"authority": to})
}

func serveNotFound(domain string) {
	httpmock.RegisterResponder("GET", "https://"+domain+wellKnown, httpmock.NewStringResponder(http.StatusNotFound, "not found"))
}

func jwkJSON(t *testing.T, pub ed25519.PublicKey) string {
	jwk, err := json.Marshal(util.PublicJWK(pub))
	require.NoError(t, err)
	return string(jwk)
}
