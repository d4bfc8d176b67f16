package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-kit/log/level"
	"github.com/mailio/go-mailio-identity/global"
	"github.com/mailio/go-mailio-identity/metrics"
	"github.com/mailio/go-mailio-identity/repository"
	"github.com/mailio/go-mailio-identity/types"
	"github.com/mailio/go-mailio-identity/util"
	"golang.org/x/sync/errgroup"
)

// DefaultOfflineGracePeriod is used when no grace period is configured
const DefaultOfflineGracePeriod = 30 * time.Minute

type AddressInfoConfig struct {
	// Hostname of this service, an issuer hint equal to it (or "default") forces secondary
	Hostname           string
	OfflineGracePeriod time.Duration
}

// AddressInfoService tells clients how an email address authenticates right now
type AddressInfoService struct {
	config      AddressInfoConfig
	authorities AuthorityResolver
	accounts    repository.AccountRepository
	now         func() time.Time
}

func NewAddressInfoService(config AddressInfoConfig, authorities AuthorityResolver, accounts repository.AccountRepository) *AddressInfoService {
	if config.OfflineGracePeriod <= 0 {
		config.OfflineGracePeriod = DefaultOfflineGracePeriod
	}
	config.Hostname = strings.ToLower(config.Hostname)
	return &AddressInfoService{
		config:      config,
		authorities: authorities,
		accounts:    accounts,
		now:         time.Now,
	}
}

// AddressInfo gathers the current authority type of the email's domain, the
// domain's freshness and the stored email record concurrently and reduces them
// into one account state. Discovery problems downgrade to secondary, storage
// problems fail the whole call with types.ErrDatabaseUnavailable.
func (s *AddressInfoService) AddressInfo(ctx context.Context, email, issuerHint string) (*types.AddressInfo, error) {
	domain, err := util.EmailDomain(email)
	if err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	now := s.now()

	var (
		authority *types.TrustedAuthority
		freshness types.AuthorityFreshness
		record    *types.EmailRecord
	)

	var g errgroup.Group
	g.Go(func() error {
		if s.vouchesFor(issuerHint) {
			return nil
		}
		ta, rErr := s.authorities.Resolve(ctx, domain, domain)
		if rErr != nil {
			if !errors.Is(rErr, types.ErrNotAPrimary) {
				level.Info(global.Logger).Log("msg", "primary support is misconfigured, falling back to secondary", "domain", domain, "err", rErr)
			}
			return nil
		}
		authority = ta
		return nil
	})
	g.Go(func() error {
		when, lErr := s.accounts.GetAuthorityLastSeen(ctx, domain)
		if lErr != nil {
			return lErr
		}
		freshness.LastSeenPrimaryAt = when
		return nil
	})
	g.Go(func() error {
		rec, eErr := s.accounts.GetEmailRecord(ctx, email)
		if eErr != nil {
			return eErr
		}
		record = rec
		return nil
	})
	if err := g.Wait(); err != nil {
		level.Error(global.Logger).Log("msg", "address info lookup failed", "email", email, "err", err)
		if errors.Is(err, types.ErrDatabaseUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", types.ErrDatabaseUnavailable, err)
	}

	current := types.AuthoritySecondary
	if authority != nil {
		current = types.AuthorityPrimary
	}
	state := ReduceAccountState(emailFacts(record), current, primarySeenRecently(freshness, now, s.config.OfflineGracePeriod))
	metrics.AddressInfoStatesTotal.WithLabelValues(string(state)).Inc()

	info := &types.AddressInfo{Type: current, State: state}
	if authority != nil {
		info.Auth = authority.AuthenticationURL
		info.Prov = authority.ProvisioningURL
		info.Issuer = authority.Domain
	}
	return info, nil
}

func (s *AddressInfoService) vouchesFor(issuerHint string) bool {
	hint := strings.ToLower(strings.TrimSpace(issuerHint))
	return hint != "" && (hint == "default" || hint == s.config.Hostname)
}

// emailFacts maps a stored record, a missing lastUsedAs counts as secondary
func emailFacts(record *types.EmailRecord) types.EmailFacts {
	if record == nil {
		return types.EmailFacts{Known: false}
	}
	lastUsedAs := types.AuthorityType(record.LastUsedAs)
	if !lastUsedAs.Valid() {
		lastUsedAs = types.AuthoritySecondary
	}
	return types.EmailFacts{Known: true, HasPassword: record.HasPassword, LastUsedAs: lastUsedAs}
}
