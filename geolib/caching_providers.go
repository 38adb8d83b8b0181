package geolib

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/dgraph-io/ristretto"
)

type cachingGeoProvider struct {
	GeoProvider

	cache *ristretto.Cache
	ttl   time.Duration
}

func (c cachingGeoProvider) Lookup(ctx context.Context, ip net.IP) (GeoCandidate, error) {
	cacheKey := ip.String()

	if value, ok := c.cache.Get(cacheKey); ok {
		return value.(GeoCandidate), nil
	}

	result, err := c.GeoProvider.Lookup(ctx, ip)
	if err != nil {
		return GeoCandidate{}, err
	}

	c.cache.SetWithTTL(cacheKey, result, 1, c.ttl)

	return result, nil
}

// NewCachingGeoProvider wraps provider with in-memory cache of
// successful lookups. Failures are never cached.
func NewCachingGeoProvider(provider GeoProvider, itemsCount uint, ttl time.Duration) (GeoProvider, error) {
	cacheConfig := &ristretto.Config{
		MaxCost:     int64(itemsCount),
		NumCounters: 10 * int64(itemsCount),
		Metrics:     false,
		BufferItems: 64,
	}

	cache, err := ristretto.NewCache(cacheConfig)
	if err != nil {
		return nil, fmt.Errorf("cannot create a cache: %w", err)
	}

	return cachingGeoProvider{
		GeoProvider: provider,
		cache:       cache,
		ttl:         ttl,
	}, nil
}
