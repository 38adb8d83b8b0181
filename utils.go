package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/9seconds/servergeo/geolib"
	"github.com/9seconds/servergeo/providers"
	"github.com/prometheus/client_golang/prometheus"
)

func makeRootContext() (context.Context, context.CancelFunc) {
	rootCtx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)

	go func() {
		for range sigChan {
			cancel()
		}
	}()

	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	return rootCtx, cancel
}

// makeLocator returns a locator and a function which shuts it down
// together with its HTTP clients.
func makeLocator(conf *config,
	logWriter io.Writer,
	registerer prometheus.Registerer) (*geolib.Locator, func(), error) {
	metrics, err := newMetricsLogger(registerer)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot initialize metrics: %w", err)
	}

	logger := multiLogger{newLogger(logWriter), metrics}

	dnsHTTPClient := makeHTTPClient(conf,
		conf.DNS.GetHTTPTimeout(),
		conf.DNS.GetRateLimitInterval(),
		conf.DNS.GetRateLimitBurst())
	geoHTTPClient := makeHTTPClient(conf,
		conf.Geo.GetHTTPTimeout(),
		conf.Geo.GetRateLimitInterval(),
		conf.Geo.GetRateLimitBurst())
	closeClients := func() {
		dnsHTTPClient.Close()
		geoHTTPClient.Close()
	}

	dnsClient, err := makeDNSClient(conf, dnsHTTPClient)
	if err != nil {
		closeClients()

		return nil, nil, fmt.Errorf("cannot initialize dns client: %w", err)
	}

	geoProvider, err := makeGeoProvider(conf, geoHTTPClient)
	if err != nil {
		closeClients()

		return nil, nil, fmt.Errorf("cannot initialize geolocation provider: %w", err)
	}

	resolver := geolib.NewNameResolver(dnsClient, conf.GetResolvePolicy(), logger)

	locator, err := geolib.NewLocator(resolver, geoProvider, geolib.LocatorOptions{
		Logger:         logger,
		LookupDelay:    conf.GetLookupDelay(),
		WorkerPoolSize: conf.GetWorkerPoolSize(),
	})
	if err != nil {
		closeClients()

		return nil, nil, err
	}

	return locator, func() {
		locator.Shutdown()
		closeClients()
	}, nil
}

func makeDNSClient(conf *config, client geolib.HTTPClient) (geolib.DNSClient, error) {
	switch conf.DNS.GetKind() {
	case "json":
		return providers.NewDOHJSON(client, conf.DNS.GetEndpoint()), nil
	case "wire":
		return providers.NewDOHWire(client, conf.DNS.GetEndpoint()), nil
	}

	return nil, fmt.Errorf("unsupported dns kind: %s", conf.DNS.GetKind())
}

func makeGeoProvider(conf *config, client geolib.HTTPClient) (geolib.GeoProvider, error) {
	provider := providers.NewIPAPI(client, conf.Geo.GetEndpoint())

	if size := conf.Geo.GetCacheSize(); size > 0 {
		cached, err := geolib.NewCachingGeoProvider(provider, size, conf.Geo.GetCacheTTL())
		if err != nil {
			return nil, err
		}

		provider = cached
	}

	if conf.Geo.GetSkipReserved() {
		guarded, err := geolib.NewReservedGuardProvider(provider)
		if err != nil {
			return nil, err
		}

		provider = guarded
	}

	return provider, nil
}

func makeHTTPClient(conf *config, timeout, rateLimitInterval time.Duration, rateLimitBurst int) geolib.ClosableHTTPClient {
	return geolib.NewHTTPClient(&http.Client{}, geolib.HTTPClientOptions{
		UserAgent:                          "servergeo/" + version,
		Timeout:                            timeout,
		RateLimitInterval:                  rateLimitInterval,
		RateLimitBurst:                     rateLimitBurst,
		CircuitBreakerOpenThreshold:        conf.CircuitBreaker.GetOpenThreshold(),
		CircuitBreakerHalfOpenTimeout:      conf.CircuitBreaker.GetHalfOpenTimeout(),
		CircuitBreakerResetFailuresTimeout: conf.CircuitBreaker.GetResetFailuresTimeout(),
	})
}
