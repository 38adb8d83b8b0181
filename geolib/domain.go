package geolib

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/miekg/dns"
)

const (
	wwwPrefix = "www."

	minDomainLength = 3
)

var (
	ErrEmptyDomain   = errors.New("domain is empty")
	ErrInvalidDomain = errors.New("invalid domain")

	schemeRegexp = regexp.MustCompile(`(?i)^[a-z][a-z0-9+.\-]*://`)
)

// NormalizeDomain converts a domain as it was typed by a human into a
// form which is suitable for DNS queries and heuristics.
//
// It strips a scheme, userinfo, path, port, trailing dots and a
// leading www. prefix, lowercases and trims the result. This function
// never fails: if input is garbage, output is garbage as well and
// ValidateDomain has to reject it. NormalizeDomain is idempotent.
func NormalizeDomain(input string) string {
	domain := strings.TrimSpace(input)
	domain = strings.TrimSpace(schemeRegexp.ReplaceAllString(domain, ""))

	// a scheme is already stripped so a slash can only start a path
	if idx := strings.IndexAny(domain, "/?#\\"); idx >= 0 {
		domain = domain[:idx]
	}

	if idx := strings.LastIndexByte(domain, '@'); idx >= 0 {
		domain = domain[idx+1:]
	}

	domain = strings.ToLower(domain)

	for {
		stripped := strings.TrimRight(stripPort(strings.TrimSpace(domain)), ".")
		if stripped == domain {
			break
		}

		domain = stripped
	}

	for strings.HasPrefix(domain, wwwPrefix) {
		domain = strings.TrimSpace(domain[len(wwwPrefix):])
	}

	return domain
}

// ValidateDomain checks that normalized domain has a basic shape of
// the domain name.
func ValidateDomain(domain string) error {
	switch {
	case domain == "":
		return ErrEmptyDomain
	case len(domain) < minDomainLength:
		return fmt.Errorf("%w: too short", ErrInvalidDomain)
	case !strings.Contains(domain, "."):
		return fmt.Errorf("%w: no dots", ErrInvalidDomain)
	case strings.IndexFunc(domain, unicode.IsSpace) >= 0:
		return fmt.Errorf("%w: has spaces", ErrInvalidDomain)
	case !isDomainName(domain):
		return fmt.Errorf("%w: not a domain name", ErrInvalidDomain)
	}

	return nil
}

func isDomainName(domain string) bool {
	_, ok := dns.IsDomainName(domain)

	return ok
}

func stripPort(domain string) string {
	idx := strings.LastIndexByte(domain, ':')
	if idx < 0 {
		return domain
	}

	for _, r := range domain[idx+1:] {
		if r < '0' || r > '9' {
			return domain
		}
	}

	return domain[:idx]
}

type domainLabels struct {
	first       string
	secondLevel string
	tld         string
}

// secondLevel is set only if domain has at least 3 labels: there is
// no reason to treat "example" in "example.com" as a second-level
// label for heuristics.
func splitDomain(domain string) domainLabels {
	labels := strings.Split(domain, ".")
	rv := domainLabels{
		first: labels[0],
		tld:   labels[len(labels)-1],
	}

	if len(labels) >= 3 {
		rv.secondLevel = labels[len(labels)-2]
	}

	return rv
}
