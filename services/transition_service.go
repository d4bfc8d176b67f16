package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-kit/log/level"
	"github.com/mailio/go-mailio-identity/global"
	"github.com/mailio/go-mailio-identity/repository"
	"github.com/mailio/go-mailio-identity/types"
	"github.com/mailio/go-mailio-identity/util"
)

// IssuerVerifier verifies assertions and knows which issuer is this service itself
type IssuerVerifier interface {
	VerifyWithIssuer(ctx context.Context, bundle types.AssertionBundle, now time.Time) (string, string, error)
	Hostname() string
}

// TransitionService keeps the facts AddressInfo reads up to date whenever an
// email authenticates with an assertion
type TransitionService struct {
	verifier IssuerVerifier
	accounts repository.AccountRepository
	now      func() time.Time
}

func NewTransitionService(verifier IssuerVerifier, accounts repository.AccountRepository) *TransitionService {
	return &TransitionService{verifier: verifier, accounts: accounts, now: time.Now}
}

// AuthWithAssertion verifies the assertion and returns the authenticated email.
// When a third party issued it, its domain is recorded as seen acting as a primary.
func (s *TransitionService) AuthWithAssertion(ctx context.Context, assertion types.AssertionBundle) (string, error) {
	now := s.now()
	email, issuer, err := s.verifier.VerifyWithIssuer(ctx, assertion, now)
	if err != nil {
		return "", err
	}
	if err := s.markPrimarySeen(ctx, email, issuer, now); err != nil {
		return "", err
	}
	return email, nil
}

// CompleteTransition finishes a transition to primary: the assertion must be for
// email, which from now on counts as last used with its primary
func (s *TransitionService) CompleteTransition(ctx context.Context, email string, assertion types.AssertionBundle) error {
	now := s.now()
	principal, issuer, err := s.verifier.VerifyWithIssuer(ctx, assertion, now)
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(principal), strings.TrimSpace(email)) {
		return fmt.Errorf("%w: assertion is for %s", types.ErrPrincipalMismatch, principal)
	}
	if err := s.markPrimarySeen(ctx, principal, issuer, now); err != nil {
		return err
	}
	if err := s.accounts.SetEmailLastUsedAs(ctx, principal, types.AuthorityPrimary); err != nil {
		return err
	}
	level.Info(global.Logger).Log("msg", "completed transition to primary", "email", principal, "issuer", issuer)
	return nil
}

func (s *TransitionService) markPrimarySeen(ctx context.Context, email, issuer string, now time.Time) error {
	if issuer == "" || issuer == s.verifier.Hostname() {
		return nil
	}
	domain, err := util.EmailDomain(email)
	if err != nil {
		return err
	}
	return s.accounts.SetAuthorityLastSeen(ctx, domain, now)
}
