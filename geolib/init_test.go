package geolib_test

import (
	"context"
	"net"
	"time"

	"github.com/9seconds/servergeo/geolib"
	"github.com/stretchr/testify/mock"
)

type DNSClientMock struct {
	mock.Mock
}

func (m *DNSClientMock) Name() string {
	return m.Called().String(0)
}

func (m *DNSClientMock) LookupA(ctx context.Context, name string) ([]net.IP, error) {
	args := m.Called(ctx, name)

	return args.Get(0).([]net.IP), args.Error(1)
}

type GeoProviderMock struct {
	mock.Mock
}

func (m *GeoProviderMock) Name() string {
	return m.Called().String(0)
}

func (m *GeoProviderMock) Lookup(ctx context.Context, ip net.IP) (geolib.GeoCandidate, error) {
	args := m.Called(ctx, ip)

	return args.Get(0).(geolib.GeoCandidate), args.Error(1)
}

type LoggerMock struct {
	mock.Mock
}

func (m *LoggerMock) DNSError(domain string, err error) {
	m.Called(domain, err)
}

func (m *LoggerMock) GeoError(ip net.IP, name string, err error) {
	m.Called(ip, name, err)
}

func (m *LoggerMock) Located(result geolib.ServerLocationResult, elapsed time.Duration) {
	m.Called(result, elapsed)
}

func ips(addrs ...string) []net.IP {
	rv := make([]net.IP, 0, len(addrs))

	for _, v := range addrs {
		rv = append(rv, net.ParseIP(v).To4())
	}

	return rv
}

func matchIP(addr string) interface{} {
	expected := net.ParseIP(addr)

	return mock.MatchedBy(func(ip net.IP) bool {
		return expected.Equal(ip)
	})
}
