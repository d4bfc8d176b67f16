package util

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/mailio/go-mailio-identity/types"
	"golang.org/x/net/idna"
)

// EmailDomain parses an email address and returns its normalized (ASCII, lowercase) domain
func EmailDomain(email string) (string, error) {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return "", types.ErrInvalidEmail
	}
	at := strings.LastIndex(addr.Address, "@")
	if at <= 0 || at == len(addr.Address)-1 {
		return "", types.ErrInvalidEmail
	}
	return NormalizeDomain(addr.Address[at+1:])
}

// NormalizeDomain lowercases a domain, strips the trailing dot and converts IDNs to punycode
func NormalizeDomain(domain string) (string, error) {
	d := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
	if d == "" {
		return "", types.ErrInvalidDomain
	}
	ascii, err := idna.Lookup.ToASCII(d)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %s", types.ErrInvalidDomain, domain, err.Error())
	}
	return ascii, nil
}
