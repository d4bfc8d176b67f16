package services

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-kit/log/level"
	"github.com/mailio/go-mailio-identity/global"
	"github.com/mailio/go-mailio-identity/types"
	"github.com/mailio/go-mailio-identity/util"
)

// ShimStore replaces discovery for selected domains with a local document and a
// substitute origin. It is built once at startup and never mutated, so it is
// safe to share between concurrent resolutions without locking.
type ShimStore struct {
	entries map[string]types.ShimEntry
}

// NewShimStore builds a store from entries. A domain may appear only once.
func NewShimStore(entries ...types.ShimEntry) (*ShimStore, error) {
	store := &ShimStore{entries: make(map[string]types.ShimEntry, len(entries))}
	for _, e := range entries {
		domain, err := util.NormalizeDomain(e.Domain)
		if err != nil {
			return nil, err
		}
		if _, ok := store.entries[domain]; ok {
			return nil, fmt.Errorf("duplicate shim for domain %s", domain)
		}
		origin, err := util.OriginOnly(e.Origin)
		if err != nil {
			return nil, fmt.Errorf("shim for %s: %w", domain, err)
		}
		body := make([]byte, len(e.Body))
		copy(body, e.Body)
		store.entries[domain] = types.ShimEntry{Domain: domain, Origin: origin, Body: body}
	}
	return store, nil
}

// ParseShims parses the SHIMMED_PRIMARIES format:
//
//	domain|origin|path-to-browserid-document[,domain|origin|path]
//
// readFile loads the document bodies (os.ReadFile when nil).
func ParseShims(shims string, readFile func(string) ([]byte, error)) (*ShimStore, error) {
	if readFile == nil {
		readFile = os.ReadFile
	}
	var entries []types.ShimEntry
	for _, shim := range strings.Split(shims, ",") {
		shim = strings.TrimSpace(shim)
		if shim == "" {
			continue
		}
		parts := strings.Split(shim, "|")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid shim %q, expected domain|origin|path", shim)
		}
		body, err := readFile(strings.TrimSpace(parts[2]))
		if err != nil {
			return nil, fmt.Errorf("failed to read shim document for %s: %w", parts[0], err)
		}
		entries = append(entries, types.ShimEntry{
			Domain: strings.TrimSpace(parts[0]),
			Origin: strings.TrimSpace(parts[1]),
			Body:   body,
		})
	}
	store, err := NewShimStore(entries...)
	if err != nil {
		return nil, err
	}
	for domain, e := range store.entries {
		level.Info(global.Logger).Log("msg", "inserted primary info into shim table", "domain", domain, "origin", e.Origin)
	}
	return store, nil
}

// Get returns the shim for domain. A nil store has no shims.
func (s *ShimStore) Get(domain string) (types.ShimEntry, bool) {
	if s == nil {
		return types.ShimEntry{}, false
	}
	e, ok := s.entries[domain]
	return e, ok
}

func (s *ShimStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}
