package main

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/9seconds/servergeo/geolib"
	"github.com/go-playground/validator/v10"
	"github.com/hjson/hjson-go"
	"github.com/spf13/afero"
)

const (
	DefaultListen  = "127.0.0.1:8000"
	DefaultDNSKind = "json"

	DefaultDNSRateLimitInterval = 10 * time.Millisecond
	DefaultDNSRateLimitBurst    = 50

	// ip-api.com allows 45 requests per minute for free.
	DefaultGeoRateLimitInterval = 1400 * time.Millisecond
	DefaultGeoRateLimitBurst    = 10

	DefaultGeoCacheSize = 4096
	DefaultGeoCacheTTL  = time.Hour
)

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v interface{}

	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("cannot unmarshal duration: %w", err)
	}

	vv, ok := v.(string)
	if !ok {
		return fmt.Errorf("incorrect duration: %v", v)
	}

	dur, err := time.ParseDuration(vv)
	if err != nil {
		return fmt.Errorf("cannot parse duration: %w", err)
	}

	if dur < 0 {
		return fmt.Errorf("duration %v is negative", dur)
	}

	d.Duration = dur

	return nil
}

type config struct {
	Listen         string               `json:"listen"`
	BasicAuth      configBasicAuth      `json:"basic_auth"`
	WorkerPoolSize uint                 `json:"worker_pool_size" validate:"lte=65536"`
	ResolvePolicy  string               `json:"resolve_policy" validate:"omitempty,oneof=first-match exhaustive"`
	LookupDelay    duration             `json:"lookup_delay"`
	DNS            configDNS            `json:"dns"`
	Geo            configGeo            `json:"geo"`
	CircuitBreaker configCircuitBreaker `json:"circuit_breaker"`
}

func (c config) GetListen() string {
	if c.Listen != "" {
		return c.Listen
	}

	return DefaultListen
}

func (c config) GetWorkerPoolSize() int {
	return int(c.WorkerPoolSize)
}

func (c config) GetResolvePolicy() geolib.ResolvePolicy {
	policy, _ := geolib.ParseResolvePolicy(c.ResolvePolicy)

	return policy
}

func (c config) GetLookupDelay() time.Duration {
	if c.LookupDelay.Duration == 0 {
		return geolib.DefaultLookupDelay
	}

	return c.LookupDelay.Duration
}

type configBasicAuth struct {
	User     string `json:"user"`
	Password string `json:"password" validate:"required_with=User"`
}

func (c configBasicAuth) Enabled() bool {
	return c.User != ""
}

type configUpstream struct {
	Endpoint          string   `json:"endpoint" validate:"omitempty,url"`
	HTTPTimeout       duration `json:"http_timeout"`
	RateLimitInterval duration `json:"rate_limit_interval"`
	RateLimitBurst    uint     `json:"rate_limit_burst"`
}

func (c configUpstream) GetEndpoint() string {
	return c.Endpoint
}

func (c configUpstream) GetHTTPTimeout() time.Duration {
	if c.HTTPTimeout.Duration == 0 {
		return geolib.DefaultHTTPTimeout
	}

	return c.HTTPTimeout.Duration
}

type configDNS struct {
	configUpstream

	Kind string `json:"kind" validate:"omitempty,oneof=json wire"`
}

func (c configDNS) GetKind() string {
	if c.Kind != "" {
		return c.Kind
	}

	return DefaultDNSKind
}

func (c configDNS) GetRateLimitInterval() time.Duration {
	if c.RateLimitInterval.Duration == 0 {
		return DefaultDNSRateLimitInterval
	}

	return c.RateLimitInterval.Duration
}

func (c configDNS) GetRateLimitBurst() int {
	if c.RateLimitBurst == 0 {
		return DefaultDNSRateLimitBurst
	}

	return int(c.RateLimitBurst)
}

type configGeo struct {
	configUpstream

	CacheSize    uint     `json:"cache_size"`
	CacheTTL     duration `json:"cache_ttl"`
	DisableCache bool     `json:"disable_cache"`
	SkipReserved *bool    `json:"skip_reserved"`
}

func (c configGeo) GetRateLimitInterval() time.Duration {
	if c.RateLimitInterval.Duration == 0 {
		return DefaultGeoRateLimitInterval
	}

	return c.RateLimitInterval.Duration
}

func (c configGeo) GetRateLimitBurst() int {
	if c.RateLimitBurst == 0 {
		return DefaultGeoRateLimitBurst
	}

	return int(c.RateLimitBurst)
}

// GetCacheSize returns 0 if cache is disabled.
func (c configGeo) GetCacheSize() uint {
	switch {
	case c.DisableCache:
		return 0
	case c.CacheSize == 0:
		return DefaultGeoCacheSize
	}

	return c.CacheSize
}

func (c configGeo) GetCacheTTL() time.Duration {
	if c.CacheTTL.Duration == 0 {
		return DefaultGeoCacheTTL
	}

	return c.CacheTTL.Duration
}

func (c configGeo) GetSkipReserved() bool {
	if c.SkipReserved == nil {
		return true
	}

	return *c.SkipReserved
}

type configCircuitBreaker struct {
	OpenThreshold        uint32   `json:"open_threshold"`
	HalfOpenTimeout      duration `json:"half_open_timeout"`
	ResetFailuresTimeout duration `json:"reset_failures_timeout"`
}

func (c configCircuitBreaker) GetOpenThreshold() uint32 {
	if c.OpenThreshold == 0 {
		return geolib.DefaultCircuitBreakerOpenThreshold
	}

	return c.OpenThreshold
}

func (c configCircuitBreaker) GetHalfOpenTimeout() time.Duration {
	if c.HalfOpenTimeout.Duration == 0 {
		return geolib.DefaultCircuitBreakerHalfOpenTimeout
	}

	return c.HalfOpenTimeout.Duration
}

func (c configCircuitBreaker) GetResetFailuresTimeout() time.Duration {
	if c.ResetFailuresTimeout.Duration == 0 {
		return geolib.DefaultCircuitBreakerResetFailuresTimeout
	}

	return c.ResetFailuresTimeout.Duration
}

func parseConfig(fs afero.Fs, path string) (*config, error) {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	return parseConfigContent(content)
}

func parseConfigContent(content []byte) (*config, error) {
	conf := &config{}
	rawMap := map[string]interface{}{}

	if err := hjson.Unmarshal(content, &rawMap); err != nil {
		return nil, fmt.Errorf("cannot parse hjson: %w", err)
	}

	rawBytes, err := json.Marshal(rawMap)
	if err != nil {
		return nil, fmt.Errorf("cannot convert hjson to json: %w", err)
	}

	if err := json.Unmarshal(rawBytes, conf); err != nil {
		return nil, fmt.Errorf("cannot parse config: %w", err)
	}

	if err := validateConfig(conf); err != nil {
		return nil, err
	}

	return conf, nil
}

func validateConfig(conf *config) error {
	if err := validator.New().Struct(conf); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, _, err := net.SplitHostPort(conf.GetListen()); err != nil {
		return fmt.Errorf("incorrect host:port for listen: %w", err)
	}

	return nil
}
