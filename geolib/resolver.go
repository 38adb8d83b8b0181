package geolib

import (
	"context"
	"fmt"
	"net"
	"strings"

	"go.uber.org/multierr"
)

// MaxCandidates is a maximal number of addresses which are geolocated
// for a single domain.
const MaxCandidates = 5

// ResolvePolicy defines how many DNS variants are queried and how many
// addresses are geolocated.
type ResolvePolicy string

const (
	// PolicyFirstMatch stops on the first variant which has addresses.
	// Only the first address is geolocated.
	PolicyFirstMatch ResolvePolicy = "first-match"

	// PolicyExhaustive queries all variants and collects up to
	// MaxCandidates unique addresses to vote between them.
	PolicyExhaustive ResolvePolicy = "exhaustive"
)

// ParseResolvePolicy converts a string into ResolvePolicy. An empty
// string means PolicyFirstMatch.
func ParseResolvePolicy(value string) (ResolvePolicy, error) {
	switch ResolvePolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", PolicyFirstMatch:
		return PolicyFirstMatch, nil
	case PolicyExhaustive:
		return PolicyExhaustive, nil
	}

	return "", fmt.Errorf("unknown resolve policy %s", value)
}

// NameResolver resolves a normalized domain into IPv4 addresses. It
// tries a domain itself and then its www. variant.
type NameResolver struct {
	client DNSClient
	policy ResolvePolicy
	logger Logger
}

func (n *NameResolver) Policy() ResolvePolicy {
	return n.policy
}

// Resolve returns unique IPv4 addresses of the domain. It never fails:
// errors of variants are passed to logger and an empty slice is
// returned if nothing was resolved.
func (n *NameResolver) Resolve(ctx context.Context, domain string) []net.IP {
	var errs error

	seen := map[string]bool{}
	rv := make([]net.IP, 0, MaxCandidates)

	for _, variant := range resolveVariants(domain) {
		if ctx.Err() != nil {
			errs = multierr.Append(errs, ctx.Err())

			break
		}

		ips, err := n.client.LookupA(ctx, variant)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("cannot resolve %s: %w", variant, err))

			continue
		}

		for _, ip := range ips {
			ip4 := ip.To4()
			if ip4 == nil || seen[ip4.String()] || len(rv) == MaxCandidates {
				continue
			}

			seen[ip4.String()] = true
			rv = append(rv, ip4)
		}

		if len(rv) == MaxCandidates || (n.policy == PolicyFirstMatch && len(rv) > 0) {
			break
		}
	}

	if errs != nil {
		n.logger.DNSError(domain, errs)
	}

	return rv
}

func resolveVariants(domain string) []string {
	return []string{domain, wwwPrefix + domain}
}

// NewNameResolver creates a new resolver. If logger is nil, errors are
// discarded.
func NewNameResolver(client DNSClient, policy ResolvePolicy, logger Logger) *NameResolver {
	if logger == nil {
		logger = noopLogger{}
	}

	if policy == "" {
		policy = PolicyFirstMatch
	}

	return &NameResolver{
		client: client,
		policy: policy,
		logger: logger,
	}
}
