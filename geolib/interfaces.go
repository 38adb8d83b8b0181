package geolib

import (
	"context"
	"net"
	"net/http"
	"time"
)

// HTTPClient is a minimal interface of HTTP client used by providers.
// Please see NewHTTPClient for the implementation with rate limiting
// and circuit breaking.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// ClosableHTTPClient is HTTPClient which holds background resources
// and has to be closed on shutdown.
type ClosableHTTPClient interface {
	HTTPClient

	Close()
}

// DNSClient makes a single DNS query for A records of the given name.
//
// It has to return only addresses from answers of type A and only if
// response has no error status. An empty slice with nil error means
// that upstream has responded but there are no such records.
type DNSClient interface {
	Name() string
	LookupA(ctx context.Context, name string) ([]net.IP, error)
}

// GeoProvider geolocates a single IP address.
//
// If upstream explicitly says that it cannot geolocate an address,
// provider has to return *GeoFailure.
type GeoProvider interface {
	Name() string
	Lookup(ctx context.Context, ip net.IP) (GeoCandidate, error)
}

// Logger receives events from Locator. All methods have to be
// goroutine-safe.
type Logger interface {
	DNSError(domain string, err error)
	GeoError(ip net.IP, name string, err error)
	Located(result ServerLocationResult, elapsed time.Duration)
}
