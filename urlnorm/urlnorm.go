// Package urlnorm normalizes link targets so that URLs pointing at the same
// resource compare equal.
package urlnorm

import (
	"fmt"
	"net/url"
	"strings"
)

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// Normalize parses raw and returns its normalized form: scheme and host are
// lowercased, the default port of the scheme is removed, the fragment is
// dropped and an empty path becomes "/". The query string is kept.
func Normalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("normalize %q: %w", raw, err)
	}

	return NormalizeURL(u).String(), nil
}

// NormalizeURL returns a normalized copy of u. See Normalize.
func NormalizeURL(u *url.URL) *url.URL {
	n := *u
	n.Scheme = strings.ToLower(n.Scheme)
	n.Host = strings.ToLower(n.Host)

	if port := n.Port(); port != "" && defaultPorts[n.Scheme] == port {
		n.Host = strings.TrimSuffix(n.Host, ":"+port)
	}

	n.Fragment = ""
	n.RawFragment = ""

	if n.Path == "" && n.Opaque == "" {
		n.Path = "/"
		n.RawPath = ""
	}

	return &n
}

// Absolute expands target into an absolute URL using the following rules:
//   - targets starting with '//' are network-path references that inherit
//     the scheme of base.
//   - all other targets are resolved relative to base.
//
// A nil URL is returned for empty or unparsable targets.
func Absolute(base *url.URL, target string) *url.URL {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil
	}

	if strings.HasPrefix(target, "//") {
		target = base.Scheme + ":" + target
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return nil
	}

	return base.ResolveReference(parsed)
}

// IsSameSite returns true if host equals domain or is one of its
// subdomains. Both values are compared case-insensitively.
func IsSameSite(host, domain string) bool {
	host, domain = strings.ToLower(host), strings.ToLower(domain)
	if host == "" || domain == "" {
		return false
	}

	return host == domain || strings.HasSuffix(host, "."+domain)
}

// Path returns the path component of raw, "/" when it is empty.
func Path(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("path of %q: %w", raw, err)
	}

	if u.Path == "" {
		return "/", nil
	}

	return u.Path, nil
}

// TrailingSlashVariant returns p with its trailing slash toggled. The root
// path has no variant and is returned unchanged.
func TrailingSlashVariant(p string) string {
	switch {
	case p == "" || p == "/":
		return "/"
	case strings.HasSuffix(p, "/"):
		return strings.TrimRight(p, "/")
	default:
		return p + "/"
	}
}
