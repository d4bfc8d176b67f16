package types

import "time"

// AuthorityType says who authenticates an address right now (or did last time)
type AuthorityType string

const (
	AuthorityPrimary   AuthorityType = "primary"
	AuthoritySecondary AuthorityType = "secondary"
)

func (at AuthorityType) Valid() bool {
	return at == AuthorityPrimary || at == AuthoritySecondary
}

// AccountState is the client facing state of an email address
type AccountState string

const (
	StateKnown                 AccountState = "known"
	StateUnknown               AccountState = "unknown"
	StateOffline               AccountState = "offline"
	StateTransitionToPrimary   AccountState = "transition_to_primary"
	StateTransitionToSecondary AccountState = "transition_to_secondary"
	StateTransitionNoPassword  AccountState = "transition_no_password"
)

// EmailFacts are the stored facts about an email address.
// HasPassword and LastUsedAs are only meaningful when Known is true.
type EmailFacts struct {
	Known       bool
	HasPassword bool
	LastUsedAs  AuthorityType
}

// AuthorityFreshness tells when a domain was last observed acting as a primary.
// LastSeenPrimaryAt is nil when it never was.
type AuthorityFreshness struct {
	LastSeenPrimaryAt *time.Time
}

// AddressInfo is the answer to "how does this email authenticate?"
type AddressInfo struct {
	Type   AuthorityType `json:"type"`
	State  AccountState  `json:"state"`
	Auth   string        `json:"auth,omitempty"`
	Prov   string        `json:"prov,omitempty"`
	Issuer string        `json:"issuer,omitempty"`
}

// EmailRecord is the stored document for an email address (keyed by email)
type EmailRecord struct {
	BaseDocument `json:",inline"`
	Email        string `json:"email"`
	HasPassword  bool   `json:"hasPassword"`
	LastUsedAs   string `json:"lastUsedAs,omitempty"`
	Modified     int64  `json:"modified,omitempty"`
}

// AuthorityRecord is the stored document for a primary authority (keyed by domain)
type AuthorityRecord struct {
	BaseDocument `json:",inline"`
	Domain       string `json:"domain"`
	LastSeen     int64  `json:"lastSeen"` // unix millis
}
