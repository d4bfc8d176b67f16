package util

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mailio/go-mailio-identity/types"
)

// OriginOnly reduces a URL to scheme://host[:port], dropping default ports
func OriginOnly(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %s", types.ErrInvalidURL, raw)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %s", types.ErrInvalidURL, raw)
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (scheme == "https" && port == "443") || (scheme == "http" && port == "80") {
		port = ""
	}
	if port != "" {
		host = host + ":" + port
	}
	return scheme + "://" + host, nil
}

// Hostname returns the host part of a URL (without the port)
func Hostname(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %s", types.ErrInvalidURL, raw)
	}
	return strings.ToLower(u.Hostname()), nil
}

// AbsoluteURL joins an origin prefix and an absolute path and validates the result
func AbsoluteURL(prefix, path string) (string, error) {
	if !strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("%w: path %q must be absolute", types.ErrInvalidURL, path)
	}
	full := strings.TrimSuffix(prefix, "/") + path
	u, err := url.Parse(full)
	if err != nil {
		return "", fmt.Errorf("%w: %s", types.ErrInvalidURL, full)
	}
	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return "", fmt.Errorf("%w: %s", types.ErrInvalidURL, full)
	}
	return u.String(), nil
}
