package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/go-kit/log/level"
	"github.com/mailio/go-mailio-identity/global"
	"github.com/mailio/go-mailio-identity/util"
)

// DelegatesAuthority reports whether issuingDomain may issue certificates for
// emails of emailDomain. It never fails: any resolution problem is a "no".
func (r *WellKnownResolver) DelegatesAuthority(ctx context.Context, emailDomain, issuingDomain string) bool {
	emailDomain = strings.ToLower(emailDomain)
	issuingDomain = strings.ToLower(issuingDomain)

	// local development: proxied domain whose target is shimmed onto issuingDomain
	if target, ok := r.config.ProxyIdps[emailDomain]; ok {
		if shim, ok := r.config.Shims.Get(target); ok {
			if host, err := util.Hostname(shim.Origin); err == nil && host == issuingDomain {
				return true
			}
		}
	}

	authority, err := r.Resolve(ctx, emailDomain, emailDomain)
	if err != nil {
		level.Debug(global.Logger).Log("msg", "no delegation of authority", "emailDomain", emailDomain, "issuer", issuingDomain, "err", err)
		return false
	}
	u, err := url.Parse(authority.AuthenticationURL)
	if err != nil {
		return false
	}
	return strings.ToLower(u.Host) == issuingDomain
}
