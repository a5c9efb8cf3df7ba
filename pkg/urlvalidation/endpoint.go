// Package urlvalidation checks the downstream service endpoints the bot is
// configured with before any request is sent to them.
package urlvalidation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Option configures endpoint validation.
type Option func(*validationConfig)

type validationConfig struct {
	allowPrivate bool
	requireTLS   bool
	resolve      bool
}

// AllowPrivateIPs accepts loopback and private hosts, as used by a log
// service running next to the bot.
func AllowPrivateIPs() Option {
	return func(c *validationConfig) { c.allowPrivate = true }
}

// RequireHTTPS rejects plain http endpoints.
func RequireHTTPS() Option {
	return func(c *validationConfig) { c.requireTLS = true }
}

// Resolve looks the hostname up and checks every address it resolves to.
// Without it only literal IPs and localhost are checked.
func Resolve() Option {
	return func(c *validationConfig) { c.resolve = true }
}

// ValidateEndpoint parses a base URL and checks it is usable as a
// downstream endpoint. The returned URL has no trailing slash.
func ValidateEndpoint(rawURL string, opts ...Option) (*url.URL, error) {
	var cfg validationConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(u.Scheme)
	switch {
	case scheme == "https":
	case scheme == "http" && !cfg.requireTLS:
	default:
		return nil, fmt.Errorf("URL scheme %q not allowed", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("URL must have a hostname")
	}

	if !cfg.allowPrivate {
		if err := checkHost(host, cfg.resolve); err != nil {
			return nil, err
		}
	}

	u.Path = strings.TrimRight(u.Path, "/")
	return u, nil
}

func checkHost(host string, resolve bool) error {
	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("URL host %q is loopback", host)
	}

	addrs := []string{host}
	if net.ParseIP(host) == nil {
		if !resolve {
			return nil
		}
		var err error
		addrs, err = net.LookupHost(host)
		if err != nil {
			return fmt.Errorf("cannot resolve hostname %q: %w", host, err)
		}
	}

	for _, a := range addrs {
		if ip := net.ParseIP(a); ip != nil && isPrivateIP(ip) {
			return fmt.Errorf("URL resolves to private/reserved IP %s", a)
		}
	}
	return nil
}

var privateRanges = []*net.IPNet{
	parseCIDR("10.0.0.0/8"),
	parseCIDR("172.16.0.0/12"),
	parseCIDR("192.168.0.0/16"),
	parseCIDR("127.0.0.0/8"),
	parseCIDR("169.254.0.0/16"), // link-local
	parseCIDR("::1/128"),
	parseCIDR("fc00::/7"),
	parseCIDR("fe80::/10"),
	parseCIDR("100.64.0.0/10"), // CGN
	parseCIDR("0.0.0.0/8"),
	parseCIDR("224.0.0.0/4"),
	parseCIDR("240.0.0.0/4"),
}

func isPrivateIP(ip net.IP) bool {
	for _, r := range privateRanges {
		if r.Contains(ip) {
			return true
		}
	}
	return false
}

func parseCIDR(s string) *net.IPNet {
	_, network, err := net.ParseCIDR(s)
	if err != nil {
		panic(fmt.Sprintf("invalid CIDR %q: %v", s, err))
	}
	return network
}
