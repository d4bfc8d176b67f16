package repository

import (
	"context"
	"time"

	"github.com/mailio/go-mailio-identity/types"
)

// Repository is a document store keyed by document id
type Repository interface {
	GetByID(ctx context.Context, id string) (interface{}, error)
	Save(ctx context.Context, docID string, data interface{}) error
	GetDBName() string
}

// AccountRepository is the persistence collaborator of the federation services.
// Every method may fail with types.ErrDatabaseUnavailable, which callers must
// keep distinct from "not found".
type AccountRepository interface {
	// GetAuthorityLastSeen returns when domain was last seen acting as a primary (nil if never)
	GetAuthorityLastSeen(ctx context.Context, domain string) (*time.Time, error)
	// GetEmailRecord returns the stored record for email (nil if the email is unknown)
	GetEmailRecord(ctx context.Context, email string) (*types.EmailRecord, error)
	SetAuthorityLastSeen(ctx context.Context, domain string, when time.Time) error
	SetEmailLastUsedAs(ctx context.Context, email string, usedAs types.AuthorityType) error
}
