package types

import (
	"encoding/json"

	"github.com/go-jose/go-jose/v3"
)

// WellKnownPath is where an authority publishes its declaration of support
const WellKnownPath = "/.well-known/browserid"

type DocumentKind int

const (
	DocumentTerminal DocumentKind = iota + 1
	DocumentDelegation
)

// DiscoveryDocument is a parsed declaration of support. It either delegates
// to another domain (Authority) or declares endpoints and a key.
type DiscoveryDocument struct {
	Kind           DocumentKind
	Authority      string
	PublicKey      json.RawMessage
	Authentication string
	Provisioning   string
}

// WellKnownDocument is the wire shape of /.well-known/browserid
type WellKnownDocument struct {
	PublicKey      json.RawMessage `json:"public-key,omitempty"`
	Authentication string          `json:"authentication,omitempty"`
	Provisioning   string          `json:"provisioning,omitempty"`
	Authority      string          `json:"authority,omitempty"`
}

// DelegationChain holds the domains visited during a single resolution.
// Append never mutates the receiver, so a chain can be threaded through
// recursive calls by value.
type DelegationChain []string

func (dc DelegationChain) Contains(domain string) bool {
	for _, d := range dc {
		if d == domain {
			return true
		}
	}
	return false
}

func (dc DelegationChain) Len() int {
	return len(dc)
}

func (dc DelegationChain) Append(domain string) DelegationChain {
	out := make(DelegationChain, len(dc), len(dc)+1)
	copy(out, dc)
	return append(out, domain)
}

// ShimEntry overrides discovery for a domain in development and test environments
type ShimEntry struct {
	Domain string
	Origin string
	Body   []byte
}

// TrustedAuthority is a fully resolved identity authority
type TrustedAuthority struct {
	AuthenticationURL string           `json:"auth"`
	ProvisioningURL   string           `json:"prov"`
	PublicKey         *jose.JSONWebKey `json:"publicKey"`
	Domain            string           `json:"domain"`
	DelegationChain   []string         `json:"delegationChain,omitempty"`
}
