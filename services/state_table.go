package services

import (
	"time"

	"github.com/mailio/go-mailio-identity/types"
)

// transitionState is the account state of a known email whose authority is
// reachable, keyed by (hasPassword, lastUsedAs, current type)
func transitionState(hasPassword bool, lastUsedAs, current types.AuthorityType) types.AccountState {
	if current == types.AuthorityPrimary {
		if lastUsedAs == types.AuthorityPrimary {
			return types.StateKnown
		}
		return types.StateTransitionToPrimary
	}
	// secondary right now
	if !hasPassword {
		return types.StateTransitionNoPassword
	}
	if lastUsedAs == types.AuthorityPrimary {
		return types.StateTransitionToSecondary
	}
	return types.StateKnown
}

// primarySeenRecently follows the historical rule: true when the domain was
// seen as a primary and that was longer ago than the grace period
func primarySeenRecently(freshness types.AuthorityFreshness, now time.Time, grace time.Duration) bool {
	if freshness.LastSeenPrimaryAt == nil {
		return false
	}
	return now.Sub(*freshness.LastSeenPrimaryAt) > grace
}

// ReduceAccountState derives the client facing state from the three gathered facts
func ReduceAccountState(email types.EmailFacts, current types.AuthorityType, seenRecently bool) types.AccountState {
	if !email.Known {
		return types.StateUnknown
	}
	if current == types.AuthoritySecondary && seenRecently {
		return types.StateOffline
	}
	return transitionState(email.HasPassword, email.LastUsedAs, current)
}
