package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mailio/go-mailio-identity/types"
)

// MemoryAccountStore is an in-memory AccountRepository for development and tests
type MemoryAccountStore struct {
	mu          sync.RWMutex
	emails      map[string]types.EmailRecord
	authorities map[string]time.Time
}

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		emails:      map[string]types.EmailRecord{},
		authorities: map[string]time.Time{},
	}
}

// PutEmail adds or replaces an email record
func (m *MemoryAccountStore) PutEmail(record types.EmailRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record.Email = strings.ToLower(record.Email)
	m.emails[record.Email] = record
}

func (m *MemoryAccountStore) GetAuthorityLastSeen(ctx context.Context, domain string) (*time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	when, ok := m.authorities[domain]
	if !ok {
		return nil, nil
	}
	return &when, nil
}

func (m *MemoryAccountStore) GetEmailRecord(ctx context.Context, email string) (*types.EmailRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.emails[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (m *MemoryAccountStore) SetAuthorityLastSeen(ctx context.Context, domain string, when time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authorities[domain] = when
	return nil
}

func (m *MemoryAccountStore) SetEmailLastUsedAs(ctx context.Context, email string, usedAs types.AuthorityType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(email)
	record := m.emails[key]
	record.Email = key
	record.LastUsedAs = string(usedAs)
	record.Modified = time.Now().UTC().UnixMilli()
	m.emails[key] = record
	return nil
}
