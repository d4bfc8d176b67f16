package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/mailio/go-mailio-identity/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelegatesAuthority(t *testing.T) {
	resolver := newMockedResolver(t, ResolverConfig{})
	pub, _ := newKey(t)

	serveDelegation(t, "example.com", "idp.com")
	serveDoc(t, "idp.com", terminalDoc(t, pub))
	serveNotFound("secondary.com")

	assert.True(t, resolver.DelegatesAuthority(context.Background(), "example.com", "idp.com"))
	assert.False(t, resolver.DelegatesAuthority(context.Background(), "example.com", "evil.com"))
	assert.False(t, resolver.DelegatesAuthority(context.Background(), "secondary.com", "idp.com"))
}

func TestDelegatesAuthorityResolutionErrorIsFalse(t *testing.T) {
	resolver := newMockedResolver(t, ResolverConfig{})
	serveDelegation(t, "a.com", "b.com")
	serveDelegation(t, "b.com", "a.com")

	assert.False(t, resolver.DelegatesAuthority(context.Background(), "a.com", "b.com"))
}

func TestDelegatesAuthorityShimShortCircuit(t *testing.T) {
	pub, _ := newKey(t)
	body := fmt.Sprintf(`{"public-key": %s, "authentication": "/sign_in", "provisioning": "/provision"}`, jwkJSON(t, pub))
	shims, err := NewShimStore(types.ShimEntry{Domain: "idp.local", Origin: "http://127.0.0.1:10005", Body: []byte(body)})
	require.NoError(t, err)
	resolver := newMockedResolver(t, ResolverConfig{
		Shims:     shims,
		ProxyIdps: map[string]string{"example.com": "idp.local"},
	})

	assert.True(t, resolver.DelegatesAuthority(context.Background(), "example.com", "127.0.0.1"))
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}
