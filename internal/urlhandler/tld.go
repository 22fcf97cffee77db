package urlhandler

import (
	"net/netip"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// IsIPLiteral reports whether host is an IPv4 or IPv6 address, with or without brackets.
func IsIPLiteral(host string) bool {
	_, ok := ParseIPLiteral(host)
	return ok
}

// ParseIPLiteral parses host as an IP address. Zones and brackets are stripped first.
func ParseIPLiteral(host string) (netip.Addr, bool) {
	h := strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if idx := strings.IndexByte(h, '%'); idx != -1 {
		h = h[:idx]
	}
	addr, err := netip.ParseAddr(h)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// HasKnownTLD reports whether the hostname ends in a top-level domain that exists in the
// ICANN section of the public suffix list. IP literals and empty names have no TLD.
func HasKnownTLD(hostname string) bool {
	host := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(hostname)), ".")
	if host == "" || IsIPLiteral(host) {
		return false
	}

	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}

	tld := host
	if idx := strings.LastIndexByte(host, '.'); idx != -1 {
		tld = host[idx+1:]
	}
	if tld == "" {
		return false
	}

	suffix, icann := publicsuffix.PublicSuffix(tld)
	return icann && suffix == tld
}
