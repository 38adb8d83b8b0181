package geolib

import (
	"context"
	"fmt"
	"net"

	cidrman "github.com/EvilSuperstars/go-cidrman"
	"github.com/asergeyev/nradix"
)

const reservedRangeReason = "reserved range"

// IANA IPv4 special-purpose address registry, without globally
// reachable entries.
var reservedIPv4Networks = []string{
	"0.0.0.0/8",
	"10.0.0.0/8",
	"100.64.0.0/10",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"172.16.0.0/12",
	"192.0.0.0/24",
	"192.0.2.0/24",
	"192.88.99.0/24",
	"192.168.0.0/16",
	"198.18.0.0/15",
	"198.51.100.0/24",
	"203.0.113.0/24",
	"224.0.0.0/4",
	"240.0.0.0/4",
}

type reservedGuardProvider struct {
	GeoProvider

	tree *nradix.Tree
}

func (r reservedGuardProvider) Lookup(ctx context.Context, ip net.IP) (GeoCandidate, error) {
	if IsReservedIP(r.tree, ip) {
		return GeoCandidate{}, &GeoFailure{
			Reason: reservedRangeReason,
			Err:    ErrReservedAddress,
		}
	}

	return r.GeoProvider.Lookup(ctx, ip)
}

// IsReservedIP checks if IPv4 address belongs to one of the networks of
// the tree. Tree is expected to be built by NewReservedTree.
func IsReservedIP(tree *nradix.Tree, ip net.IP) bool {
	ip4 := ip.To4()
	if ip4 == nil {
		return false
	}

	value, err := tree.FindCIDR(ip4.String() + "/32")

	return err == nil && value != nil
}

// NewReservedTree builds a radix tree of merged special-purpose IPv4
// networks.
func NewReservedTree() (*nradix.Tree, error) {
	merged, err := cidrman.MergeCIDRs(reservedIPv4Networks)
	if err != nil {
		return nil, fmt.Errorf("cannot merge reserved networks: %w", err)
	}

	tree := nradix.NewTree(0)

	for _, v := range merged {
		if err := tree.AddCIDR(v, true); err != nil {
			return nil, fmt.Errorf("cannot add network %s: %w", v, err)
		}
	}

	return tree, nil
}

// NewReservedGuardProvider wraps provider so that special-purpose
// addresses (private, loopback, documentation and so on) fail with
// *GeoFailure wrapping ErrReservedAddress without reaching upstream.
func NewReservedGuardProvider(provider GeoProvider) (GeoProvider, error) {
	tree, err := NewReservedTree()
	if err != nil {
		return nil, err
	}

	return reservedGuardProvider{
		GeoProvider: provider,
		tree:        tree,
	}, nil
}
