package geolib

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

const (
	DefaultWorkerPoolSize = 64
	DefaultLookupDelay    = 100 * time.Millisecond

	workerPoolExpireTime = time.Minute
)

// LocatorOptions defines optional parameters of Locator. Zero values
// are replaced with defaults.
type LocatorOptions struct {
	Logger         Logger
	LookupDelay    time.Duration
	WorkerPoolSize int
}

// Locator runs a pipeline which converts user input into a server
// location: normalize, validate, resolve, geolocate, select.
type Locator struct {
	resolver    *NameResolver
	geo         GeoProvider
	logger      Logger
	lookupDelay time.Duration
	dnsStats    *UsageStats
	geoStats    *UsageStats
	locateStats *UsageStats
	rwmutex     sync.RWMutex
	closeOnce   sync.Once
	workerPool  *ants.PoolWithFunc
	closed      bool
}

func (l *Locator) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpHandler{l}.ServeHTTP(w, req)
}

// Locate never returns an error: any failure is expressed as a failed
// result with ErrorKind.
func (l *Locator) Locate(ctx context.Context, rawDomain string) ServerLocationResult {
	l.rwmutex.RLock()
	defer l.rwmutex.RUnlock()

	if l.closed {
		return newFailedResult(NormalizeDomain(rawDomain), "",
			ErrorKindUnknownError, ErrLocatorShutdown.Error())
	}

	return l.locateSafe(ctx, rawDomain)
}

// LocateAll locates a batch of domains concurrently. Results have the
// same order as input.
func (l *Locator) LocateAll(ctx context.Context, rawDomains []string) ([]ServerLocationResult, error) {
	l.rwmutex.RLock()
	defer l.rwmutex.RUnlock()

	if l.closed {
		return nil, ErrLocatorShutdown
	}

	indexes := map[string][]int{}
	uniques := make([]string, 0, len(rawDomains))

	for i, v := range rawDomains {
		if _, ok := indexes[v]; !ok {
			uniques = append(uniques, v)
		}

		indexes[v] = append(indexes[v], i)
	}

	resultChannel := make(chan locateResponse, len(uniques))
	wg := &sync.WaitGroup{}
	groupRequest := newPoolGroupRequest(ctx, resultChannel, wg, l.workerPool)
	defer groupRequest.cancel()

	for _, v := range uniques {
		if err := groupRequest.Do(ctx, v); err != nil {
			break
		}
	}

	go func() {
		wg.Wait()
		close(resultChannel)
	}()

	rv := make([]ServerLocationResult, len(rawDomains))
	done := make(map[string]bool, len(uniques))

	for res := range resultChannel {
		for _, idx := range indexes[res.rawDomain] {
			rv[idx] = res.result
		}

		done[res.rawDomain] = true
	}

	for _, v := range uniques {
		if done[v] {
			continue
		}

		failed := newFailedResult(NormalizeDomain(v), "",
			ErrorKindUnknownError, ErrContextIsClosed.Error())

		for _, idx := range indexes[v] {
			rv[idx] = failed
		}
	}

	return rv, nil
}

func (l *Locator) UsageStats() []*UsageStats {
	return []*UsageStats{l.dnsStats, l.geoStats, l.locateStats}
}

func (l *Locator) Policy() ResolvePolicy {
	return l.resolver.Policy()
}

func (l *Locator) Shutdown() {
	l.rwmutex.Lock()
	defer l.rwmutex.Unlock()

	l.closed = true

	l.closeOnce.Do(func() {
		l.workerPool.Release()
	})
}

func (l *Locator) locateTask(args interface{}) {
	params := args.(*locateRequest)
	defer params.wg.Done()

	result := l.locateSafe(params.ctx, params.rawDomain)

	select {
	case <-params.ctx.Done():
	case params.resultChannel <- locateResponse{rawDomain: params.rawDomain, result: result}:
	}
}

func (l *Locator) locateSafe(ctx context.Context, rawDomain string) (result ServerLocationResult) {
	started := time.Now()
	domain := NormalizeDomain(rawDomain)

	defer func() {
		if recovered := recover(); recovered != nil {
			result = newFailedResult(domain, "", ErrorKindUnknownError, panicMessage(recovered))
		}

		l.locateStats.Used(result.Success)
		l.logger.Located(result, time.Since(started))
	}()

	return l.locate(ctx, rawDomain, domain)
}

func (l *Locator) locate(ctx context.Context, rawDomain, domain string) ServerLocationResult {
	if strings.TrimSpace(rawDomain) == "" {
		return newFailedResult("", "", ErrorKindMissingInput, "")
	}

	if err := ValidateDomain(domain); err != nil {
		return newFailedResult(domain, "", ErrorKindInvalidFormat,
			"Invalid domain format: "+domain)
	}

	ips := l.resolver.Resolve(ctx, domain)
	l.dnsStats.Used(len(ips) > 0)

	switch {
	case len(ips) == 0 && ctx.Err() != nil:
		return newFailedResult(domain, "", ErrorKindUnknownError, ctx.Err().Error())
	case len(ips) == 0:
		return newFailedResult(domain, "", ErrorKindResolutionFailure,
			"Could not resolve domain: "+domain)
	}

	if l.resolver.Policy() == PolicyExhaustive {
		return l.locateExhaustive(ctx, domain, ips)
	}

	return l.locateFirstMatch(ctx, domain, ips[0])
}

func (l *Locator) locateFirstMatch(ctx context.Context, domain string, ip net.IP) ServerLocationResult {
	candidate, err := l.lookup(ctx, ip)
	if err != nil {
		if ctx.Err() != nil {
			return newFailedResult(domain, ip.String(), ErrorKindUnknownError, ctx.Err().Error())
		}

		message := ""

		var failure *GeoFailure
		if errors.As(err, &failure) {
			message = failure.Reason
		}

		return newFailedResult(domain, ip.String(), ErrorKindGeolocationFailure, message)
	}

	if location, source, ok := MatchHeuristics(domain); ok {
		return newResult(domain, candidate, &location, source)
	}

	return newResult(domain, candidate, nil, SourceGeolocation)
}

func (l *Locator) locateExhaustive(ctx context.Context, domain string, ips []net.IP) ServerLocationResult {
	candidates := make([]GeoCandidate, 0, len(ips))

	for i, ip := range ips {
		if i > 0 {
			if err := l.pause(ctx); err != nil {
				break
			}
		}

		if candidate, err := l.lookup(ctx, ip); err == nil {
			candidates = append(candidates, candidate)
		}
	}

	if len(candidates) == 0 {
		if ctx.Err() != nil {
			return newFailedResult(domain, "", ErrorKindUnknownError, ctx.Err().Error())
		}

		return newFailedResult(domain, "", ErrorKindGeolocationFailure,
			"Failed to get geolocation data for this domain")
	}

	chosen, ok := SelectCandidate(candidates, domain)
	if !ok {
		return newFailedResult(domain, "", ErrorKindSelectionFailure, "")
	}

	if location, source, ok := MatchHeuristics(domain); ok {
		return newResult(domain, chosen, &location, source)
	}

	if len(candidates) == 1 {
		return newResult(domain, chosen, nil, SourceGeolocation)
	}

	return newResult(domain, chosen, nil, SourceConsensus)
}

func (l *Locator) lookup(ctx context.Context, ip net.IP) (GeoCandidate, error) {
	candidate, err := l.geo.Lookup(ctx, ip)
	l.geoStats.Used(err == nil)

	if err != nil {
		l.logger.GeoError(ip, l.geo.Name(), err)

		return candidate, err
	}

	if candidate.IP == nil {
		candidate.IP = ip
	}

	return candidate, nil
}

func (l *Locator) pause(ctx context.Context) error {
	if l.lookupDelay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(l.lookupDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ErrContextIsClosed
	case <-timer.C:
		return nil
	}
}

func panicMessage(recovered interface{}) string {
	switch value := recovered.(type) {
	case error:
		return value.Error()
	case string:
		if value != "" {
			return value
		}
	default:
		return fmt.Sprint(value)
	}

	return ErrorKindUnknownError.DefaultMessage()
}

// NewLocator creates a new pipeline. Geolocation provider is usually
// wrapped with NewReservedGuardProvider and NewCachingGeoProvider.
func NewLocator(resolver *NameResolver, geo GeoProvider, opts LocatorOptions) (*Locator, error) {
	rv := &Locator{
		resolver:    resolver,
		geo:         geo,
		logger:      opts.Logger,
		lookupDelay: opts.LookupDelay,
		dnsStats:    &UsageStats{Name: "dns"},
		geoStats:    &UsageStats{Name: "geo:" + geo.Name()},
		locateStats: &UsageStats{Name: "locate"},
	}

	if rv.logger == nil {
		rv.logger = noopLogger{}
	}

	if rv.lookupDelay == 0 {
		rv.lookupDelay = DefaultLookupDelay
	}

	poolSize := opts.WorkerPoolSize
	if poolSize <= 0 {
		poolSize = DefaultWorkerPoolSize
	}

	pool, err := ants.NewPoolWithFunc(poolSize, rv.locateTask,
		ants.WithExpiryDuration(workerPoolExpireTime))
	if err != nil {
		return nil, fmt.Errorf("cannot create a worker pool: %w", err)
	}

	rv.workerPool = pool

	return rv, nil
}
