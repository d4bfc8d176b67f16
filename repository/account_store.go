package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-kit/log/level"
	"github.com/mailio/go-mailio-identity/global"
	"github.com/mailio/go-mailio-identity/types"
)

// CouchAccountStore implements AccountRepository on top of the emails and authorities databases
type CouchAccountStore struct {
	emailRepo     Repository
	authorityRepo Repository
}

func NewCouchAccountStore(dbSelector DBSelector) (*CouchAccountStore, error) {
	emailRepo, err := dbSelector.ChooseDB(Emails)
	if err != nil {
		return nil, err
	}
	authorityRepo, err := dbSelector.ChooseDB(Authorities)
	if err != nil {
		return nil, err
	}
	return &CouchAccountStore{emailRepo: emailRepo, authorityRepo: authorityRepo}, nil
}

func (s *CouchAccountStore) GetAuthorityLastSeen(ctx context.Context, domain string) (*time.Time, error) {
	record, err := s.getAuthority(ctx, domain)
	if err != nil {
		return nil, err
	}
	if record == nil || record.LastSeen == 0 {
		return nil, nil
	}
	when := time.UnixMilli(record.LastSeen)
	return &when, nil
}

func (s *CouchAccountStore) GetEmailRecord(ctx context.Context, email string) (*types.EmailRecord, error) {
	response, err := s.emailRepo.GetByID(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, nil
		}
		return nil, unavailable(err)
	}
	var record types.EmailRecord
	if mErr := MapToObject(response, &record); mErr != nil {
		return nil, unavailable(mErr)
	}
	return &record, nil
}

func (s *CouchAccountStore) SetAuthorityLastSeen(ctx context.Context, domain string, when time.Time) error {
	record, err := s.getAuthority(ctx, domain)
	if err != nil {
		return err
	}
	if record == nil {
		record = &types.AuthorityRecord{Domain: domain}
	}
	record.LastSeen = when.UnixMilli()
	return unavailable(s.authorityRepo.Save(ctx, domain, record))
}

func (s *CouchAccountStore) SetEmailLastUsedAs(ctx context.Context, email string, usedAs types.AuthorityType) error {
	record, err := s.GetEmailRecord(ctx, email)
	if err != nil {
		return err
	}
	if record == nil {
		record = &types.EmailRecord{Email: strings.ToLower(email)}
	}
	record.LastUsedAs = string(usedAs)
	record.Modified = time.Now().UTC().UnixMilli()
	return unavailable(s.emailRepo.Save(ctx, record.Email, record))
}

func (s *CouchAccountStore) getAuthority(ctx context.Context, domain string) (*types.AuthorityRecord, error) {
	response, err := s.authorityRepo.GetByID(ctx, domain)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, nil
		}
		return nil, unavailable(err)
	}
	var record types.AuthorityRecord
	if mErr := MapToObject(response, &record); mErr != nil {
		return nil, unavailable(mErr)
	}
	return &record, nil
}

// unavailable leaves ErrDatabaseUnavailable (and nil) untouched and logs anything else
// that reached the store, since the caller can only treat it as an outage too
func unavailable(err error) error {
	if err == nil || errors.Is(err, types.ErrDatabaseUnavailable) {
		return err
	}
	level.Error(global.Logger).Log("msg", "account store failure", "err", err)
	return errors.Join(types.ErrDatabaseUnavailable, err)
}
