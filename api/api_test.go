package api

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-jose/go-jose/v3"
	"github.com/mailio/go-mailio-identity/repository"
	"github.com/mailio/go-mailio-identity/services"
	"github.com/mailio/go-mailio-identity/types"
	"github.com/mailio/go-mailio-identity/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthorities struct {
	authority *types.TrustedAuthority
}

func (s *stubAuthorities) Resolve(ctx context.Context, domain, principalDomain string) (*types.TrustedAuthority, error) {
	if s.authority == nil {
		return nil, types.ErrNotAPrimary
	}
	return s.authority, nil
}

func (s *stubAuthorities) PublicKey(ctx context.Context, domain string) (*jose.JSONWebKey, error) {
	return nil, types.ErrNoPublicKey
}

func (s *stubAuthorities) DelegatesAuthority(ctx context.Context, emailDomain, issuingDomain string) bool {
	return false
}

type stubVerifier struct {
	email string
	err   error
}

func (s *stubVerifier) VerifyWithIssuer(ctx context.Context, bundle types.AssertionBundle, now time.Time) (string, string, error) {
	if s.err != nil {
		return "", "", s.err
	}
	return s.email, "example.com", nil
}

func (s *stubVerifier) Hostname() string {
	return "login.example.org"
}

type downStore struct {
	*repository.MemoryAccountStore
}

func (d *downStore) GetEmailRecord(ctx context.Context, email string) (*types.EmailRecord, error) {
	return nil, errors.Join(types.ErrDatabaseUnavailable, errors.New("connection refused"))
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(accounts repository.AccountRepository, authorities services.AuthorityResolver, verifier services.IssuerVerifier) *gin.Engine {
	router := gin.New()
	addressInfo := NewAddressInfoApi(services.NewAddressInfoService(services.AddressInfoConfig{Hostname: "login.example.org"}, authorities, accounts))
	assertions := NewAssertionApi(services.NewTransitionService(verifier, accounts))
	router.GET("/wsapi/address_info", addressInfo.AddressInfo)
	router.POST("/wsapi/auth_with_assertion", assertions.AuthWithAssertion)
	router.POST("/wsapi/complete_transition", assertions.CompleteTransition)
	return router
}

func do(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAddressInfoApi(t *testing.T) {
	store := repository.NewMemoryAccountStore()
	store.PutEmail(types.EmailRecord{Email: "alice@example.com", HasPassword: true, LastUsedAs: "secondary"})
	router := newRouter(store, &stubAuthorities{authority: &types.TrustedAuthority{
		AuthenticationURL: "https://example.com/sign_in",
		ProvisioningURL:   "https://example.com/provision",
		Domain:            "example.com",
	}}, &stubVerifier{})

	w := do(router, "GET", "/wsapi/address_info?email=alice@example.com", "")
	require.Equal(t, http.StatusOK, w.Code)
	var info types.AddressInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, types.AuthorityPrimary, info.Type)
	assert.Equal(t, types.StateTransitionToPrimary, info.State)
	assert.Equal(t, "https://example.com/sign_in", info.Auth)
	assert.Equal(t, "https://example.com/provision", info.Prov)
	assert.Equal(t, "example.com", info.Issuer)
}

func TestAddressInfoApiSecondaryOmitsUrls(t *testing.T) {
	router := newRouter(repository.NewMemoryAccountStore(), &stubAuthorities{}, &stubVerifier{})

	w := do(router, "GET", "/wsapi/address_info?email=bob@example.com", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"type":"secondary","state":"unknown"}`, w.Body.String())
}

func TestAddressInfoApiBadInput(t *testing.T) {
	router := newRouter(repository.NewMemoryAccountStore(), &stubAuthorities{}, &stubVerifier{})

	w := do(router, "GET", "/wsapi/address_info", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email is required")

	w = do(router, "GET", "/wsapi/address_info?email=notanemail", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddressInfoApiDatabaseDown(t *testing.T) {
	router := newRouter(&downStore{repository.NewMemoryAccountStore()}, &stubAuthorities{}, &stubVerifier{})

	w := do(router, "GET", "/wsapi/address_info?email=alice@example.com", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var apiErr ApiError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Code)
}

func TestAuthWithAssertionApi(t *testing.T) {
	store := repository.NewMemoryAccountStore()
	router := newRouter(store, &stubAuthorities{}, &stubVerifier{email: "alice@example.com"})

	w := do(router, "POST", "/wsapi/auth_with_assertion", `{"assertion":"a~b"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"email":"alice@example.com"}`, w.Body.String())

	when, err := store.GetAuthorityLastSeen(context.Background(), "example.com")
	require.NoError(t, err)
	assert.NotNil(t, when)

	w = do(router, "POST", "/wsapi/auth_with_assertion", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthWithAssertionApiRejected(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: %w", types.ErrVerificationFailed, types.ErrAudienceMismatch), http.StatusUnauthorized},
		{types.ErrPrimarySupportDisabled, http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		router := newRouter(repository.NewMemoryAccountStore(), &stubAuthorities{}, &stubVerifier{err: tt.err})
		w := do(router, "POST", "/wsapi/auth_with_assertion", `{"assertion":"a~b"}`)
		assert.Equal(t, tt.code, w.Code, tt.err.Error())
	}
}

func TestAuthWithAssertionApiMessageIsVerbatim(t *testing.T) {
	rejected := fmt.Errorf("%w: %w: can't log in with an assertion for 'https://a%%2Fb', expected 'https://login.example.org'", types.ErrVerificationFailed, types.ErrAudienceMismatch)
	router := newRouter(repository.NewMemoryAccountStore(), &stubAuthorities{}, &stubVerifier{err: rejected})

	w := do(router, "POST", "/wsapi/auth_with_assertion", `{"assertion":"a~b"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	var apiErr ApiError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, rejected.Error(), apiErr.Message)
	assert.Contains(t, apiErr.Message, "https://a%2Fb")
	assert.NotContains(t, apiErr.Message, "MISSING")
}

func TestCompleteTransitionApi(t *testing.T) {
	store := repository.NewMemoryAccountStore()
	store.PutEmail(types.EmailRecord{Email: "alice@example.com", HasPassword: false, LastUsedAs: "secondary"})
	router := newRouter(store, &stubAuthorities{}, &stubVerifier{email: "alice@example.com"})

	w := do(router, "POST", "/wsapi/complete_transition", `{"email":"alice@example.com","assertion":"a~b"}`)
	require.Equal(t, http.StatusOK, w.Code)
	record, _ := store.GetEmailRecord(context.Background(), "alice@example.com")
	assert.Equal(t, "primary", record.LastUsedAs)

	w = do(router, "POST", "/wsapi/complete_transition", `{"email":"bob@example.com","assertion":"a~b"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWellKnownApi(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	wk, err := NewWellKnownApi(util.PublicJWK(pub), "/sign_in", "/provision")
	require.NoError(t, err)
	router := gin.New()
	router.GET("/.well-known/browserid", wk.Browserid)

	w := do(router, "GET", "/.well-known/browserid", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "application/json"))

	doc, err := services.ParseDiscoveryDocument("login.example.org", w.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, types.DocumentTerminal, doc.Kind)
	key, err := util.ParsePublicJWK(doc.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, pub, key.Key)
}
