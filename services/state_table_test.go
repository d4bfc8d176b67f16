package services

import (
	"testing"
	"time"

	"github.com/mailio/go-mailio-identity/types"
	"github.com/stretchr/testify/assert"
)

func TestPrimarySeenRecently(t *testing.T) {
	now := time.Now()
	grace := 30 * time.Minute
	long := now.Add(-31 * time.Minute)
	short := now.Add(-time.Minute)

	assert.False(t, primarySeenRecently(types.AuthorityFreshness{}, now, grace))
	assert.True(t, primarySeenRecently(types.AuthorityFreshness{LastSeenPrimaryAt: &long}, now, grace))
	assert.False(t, primarySeenRecently(types.AuthorityFreshness{LastSeenPrimaryAt: &short}, now, grace))
}

func TestReduceAccountState(t *testing.T) {
	known := types.EmailFacts{Known: true, HasPassword: true, LastUsedAs: types.AuthoritySecondary}

	assert.Equal(t, types.StateUnknown, ReduceAccountState(types.EmailFacts{}, types.AuthoritySecondary, true))
	assert.Equal(t, types.StateOffline, ReduceAccountState(known, types.AuthoritySecondary, true))
	assert.Equal(t, types.StateKnown, ReduceAccountState(known, types.AuthoritySecondary, false))
	assert.Equal(t, types.StateTransitionToPrimary, ReduceAccountState(known, types.AuthorityPrimary, true))
}
