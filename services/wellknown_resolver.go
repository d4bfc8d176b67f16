package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-kit/log/level"
	"github.com/go-resty/resty/v2"
	"github.com/mailio/go-mailio-identity/global"
	"github.com/mailio/go-mailio-identity/metrics"
	"github.com/mailio/go-mailio-identity/types"
	"github.com/mailio/go-mailio-identity/util"
)

const (
	// DefaultMaxDelegations bounds delegation chains independently of timeouts
	DefaultMaxDelegations = 6
	// DefaultDiscoveryTimeout stays below the 10s after which clients show a delay message
	DefaultDiscoveryTimeout = 8 * time.Second
)

// ResolverConfig is everything the WellKnownResolver reads. It is copied on
// construction and never changes afterwards.
type ResolverConfig struct {
	Shims *ShimStore
	// ProxyIdps maps a domain to the domain it is treated as delegating to
	// whenever its own discovery fails
	ProxyIdps map[string]string
	// Timeout per discovery request
	Timeout time.Duration
	// forward proxy (plain HTTP), disabled when ProxyHost is empty or ProxyPort is 0
	ProxyHost      string
	ProxyPort      int
	MaxDelegations int
	// Disabled turns off primary support: every domain is reported as not a primary
	Disabled bool
}

// AuthorityResolver is what the verifier and address info service need from discovery
type AuthorityResolver interface {
	Resolve(ctx context.Context, domain, principalDomain string) (*types.TrustedAuthority, error)
	PublicKey(ctx context.Context, domain string) (*jose.JSONWebKey, error)
	DelegatesAuthority(ctx context.Context, emailDomain, issuingDomain string) bool
}

// WellKnownResolver discovers identity authorities through their
// /.well-known/browserid declaration of support, following delegations.
type WellKnownResolver struct {
	config      ResolverConfig
	restyClient *resty.Client
}

// NewWellKnownResolver creates a resolver. When client is nil a new resty client is created.
func NewWellKnownResolver(config ResolverConfig, client *resty.Client) *WellKnownResolver {
	if client == nil {
		client = resty.New()
	}
	// a redirect is not a declaration of support of the requested domain
	client.SetRedirectPolicy(resty.NoRedirectPolicy())
	if config.MaxDelegations <= 0 {
		config.MaxDelegations = DefaultMaxDelegations
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultDiscoveryTimeout
	}
	proxyIdps := make(map[string]string, len(config.ProxyIdps))
	for domain, target := range config.ProxyIdps {
		proxyIdps[strings.ToLower(domain)] = strings.ToLower(target)
	}
	config.ProxyIdps = proxyIdps
	return &WellKnownResolver{config: config, restyClient: client}
}

// GetClient returns the underlying http client (used for mocking in tests)
func (r *WellKnownResolver) GetClient() *resty.Client {
	return r.restyClient
}

// Resolve discovers the authority for domain. principalDomain is the domain of
// the email being authenticated and is passed unchanged along the delegation chain.
// Domains that are not identity authorities yield types.ErrNotAPrimary.
func (r *WellKnownResolver) Resolve(ctx context.Context, domain, principalDomain string) (*types.TrustedAuthority, error) {
	if r.config.Disabled {
		return nil, types.ErrNotAPrimary
	}
	if domain == "" || principalDomain == "" {
		return nil, types.ErrInvalidDomain
	}
	start := time.Now()
	defer func() {
		metrics.WellKnownResolveLatency.Observe(float64(time.Since(start).Milliseconds()))
	}()

	authority, err := r.resolve(ctx, strings.ToLower(domain), strings.ToLower(principalDomain), types.DelegationChain{})
	if err != nil {
		if !errors.Is(err, types.ErrNotAPrimary) {
			level.Debug(global.Logger).Log("msg", "well-known resolution failed", "domain", domain, "err", err)
		}
		return nil, err
	}
	level.Info(global.Logger).Log("msg", "valid browserid primary", "domain", domain, "authority", authority.Domain)
	return authority, nil
}

func (r *WellKnownResolver) resolve(ctx context.Context, domain, principalDomain string, chain types.DelegationChain) (*types.TrustedAuthority, error) {
	body, found := r.fetch(ctx, domain, principalDomain)
	if !found {
		target, ok := r.config.ProxyIdps[domain]
		if !ok {
			metrics.WellKnownLookupsTotal.WithLabelValues("not_primary").Inc()
			return nil, types.ErrNotAPrimary
		}
		metrics.WellKnownLookupsTotal.WithLabelValues("proxy_idp").Inc()
		body, _ = json.Marshal(types.WellKnownDocument{Authority: target})
	}

	doc, err := ParseDiscoveryDocument(domain, body)
	if err != nil {
		metrics.WellKnownLookupsTotal.WithLabelValues("malformed").Inc()
		return nil, err
	}

	if doc.Kind == types.DocumentDelegation {
		if chain.Contains(domain) {
			return nil, fmt.Errorf("%w: %s (%s)", types.ErrDelegationCycle, domain, strings.Join(chain, " -> "))
		}
		if chain.Len() >= r.config.MaxDelegations {
			return nil, fmt.Errorf("%w: %s", types.ErrTooManyHops, strings.Join(chain, " -> "))
		}
		level.Debug(global.Logger).Log("msg", "delegating authority", "domain", domain, "to", doc.Authority)
		return r.resolve(ctx, doc.Authority, principalDomain, chain.Append(domain))
	}

	return r.trust(domain, doc, chain)
}

// fetch returns the declaration of support for domain, or false when the
// domain does not serve one (non 200, wrong content type, timeout, transport error)
func (r *WellKnownResolver) fetch(ctx context.Context, domain, principalDomain string) ([]byte, bool) {
	if shim, ok := r.config.Shims.Get(domain); ok {
		metrics.WellKnownLookupsTotal.WithLabelValues("shim").Inc()
		return shim.Body, true
	}

	reqCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	req := r.restyClient.R().
		SetContext(reqCtx).
		SetQueryParam("domain", principalDomain).
		SetHeader("Accept", "application/json")

	target := "https://" + domain + types.WellKnownPath
	if r.config.ProxyHost != "" && r.config.ProxyPort > 0 {
		// the proxy (e.g. a caching squid) receives the logical target in the Host header
		target = "http://" + r.config.ProxyHost + ":" + strconv.Itoa(r.config.ProxyPort) + types.WellKnownPath
		req.SetHeader("Host", domain).SetHeader("X-Forwarded-Host", domain)
	}

	resp, err := req.Get(target)
	if err != nil {
		outcome := "error"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			outcome = "timeout"
		}
		metrics.WellKnownLookupsTotal.WithLabelValues(outcome).Inc()
		level.Debug(global.Logger).Log("msg", "not a browserid primary", "domain", domain, "outcome", outcome, "err", err)
		return nil, false
	}
	if resp.StatusCode() != 200 {
		level.Debug(global.Logger).Log("msg", "not a browserid primary, non-200 response", "domain", domain, "status", resp.StatusCode())
		return nil, false
	}
	if !strings.HasPrefix(resp.Header().Get("Content-Type"), "application/json") {
		level.Debug(global.Logger).Log("msg", "not a browserid primary, non application/json response", "domain", domain, "contentType", resp.Header().Get("Content-Type"))
		return nil, false
	}
	metrics.WellKnownLookupsTotal.WithLabelValues("fetched").Inc()
	return resp.Body(), true
}

// trust turns a terminal document into a TrustedAuthority. Endpoints are made
// absolute against https://domain or the shim origin of the domain.
func (r *WellKnownResolver) trust(domain string, doc *types.DiscoveryDocument, chain types.DelegationChain) (*types.TrustedAuthority, error) {
	prefix := "https://" + domain
	if shim, ok := r.config.Shims.Get(domain); ok {
		prefix = shim.Origin
	}
	auth, err := util.AbsoluteURL(prefix, doc.Authentication)
	if err != nil {
		return nil, fmt.Errorf("%s is a broken browserid primary: %w", domain, err)
	}
	prov, err := util.AbsoluteURL(prefix, doc.Provisioning)
	if err != nil {
		return nil, fmt.Errorf("%s is a broken browserid primary: %w", domain, err)
	}
	publicKey, err := util.ParsePublicJWK(doc.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%s is a broken browserid primary: %w", domain, err)
	}
	return &types.TrustedAuthority{
		AuthenticationURL: auth,
		ProvisioningURL:   prov,
		PublicKey:         publicKey,
		Domain:            domain,
		DelegationChain:   append([]string{}, chain...),
	}, nil
}

// PublicKey returns the public key domain signs certificates with
func (r *WellKnownResolver) PublicKey(ctx context.Context, domain string) (*jose.JSONWebKey, error) {
	authority, err := r.Resolve(ctx, domain, domain)
	if err != nil {
		if errors.Is(err, types.ErrNotAPrimary) {
			return nil, fmt.Errorf("%w for %s", types.ErrNoPublicKey, domain)
		}
		return nil, err
	}
	return authority.PublicKey, nil
}

// ParseDiscoveryDocument parses a declaration of support served by domain.
// A document with an authority key is a delegation, anything else must carry
// public-key, authentication and provisioning.
func ParseDiscoveryDocument(domain string, body []byte) (*types.DiscoveryDocument, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		reason := "not a JSON object"
		if err != nil {
			reason = err.Error()
		}
		return nil, fmt.Errorf("%w for '%s': %s", types.ErrMalformedDocument, domain, reason)
	}

	if authorityRaw, ok := raw["authority"]; ok {
		var authority string
		if err := json.Unmarshal(authorityRaw, &authority); err != nil {
			return nil, fmt.Errorf("%w for '%s': authority must be a string", types.ErrMalformedDocument, domain)
		}
		normalized, err := util.NormalizeDomain(authority)
		if err != nil {
			return nil, fmt.Errorf("%w for '%s': %s", types.ErrMalformedDocument, domain, err.Error())
		}
		return &types.DiscoveryDocument{Kind: types.DocumentDelegation, Authority: normalized}, nil
	}

	var missing []string
	for _, key := range []string{"public-key", "authentication", "provisioning"} {
		if _, ok := raw[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w for '%s': %s", types.ErrMissingKeys, domain, strings.Join(missing, ", "))
	}

	var wk types.WellKnownDocument
	if err := json.Unmarshal(body, &wk); err != nil {
		return nil, fmt.Errorf("%w for '%s': %s", types.ErrMalformedDocument, domain, err.Error())
	}
	return &types.DiscoveryDocument{
		Kind:           types.DocumentTerminal,
		PublicKey:      wk.PublicKey,
		Authentication: wk.Authentication,
		Provisioning:   wk.Provisioning,
	}, nil
}
