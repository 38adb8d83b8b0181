package main

import (
	"io"
	"net"
	"time"

	"github.com/9seconds/servergeo/geolib"
	"github.com/rs/zerolog"
)

type logger struct {
	dnsLog    zerolog.Logger
	geoLog    zerolog.Logger
	locateLog zerolog.Logger
}

func (l *logger) DNSError(domain string, err error) {
	l.dnsLog.Warn().Str("domain", domain).Err(err).Msg("")
}

func (l *logger) GeoError(ip net.IP, name string, err error) {
	l.geoLog.Warn().Str("provider", name).Stringer("ip", ip).Err(err).Msg("")
}

func (l *logger) Located(result geolib.ServerLocationResult, elapsed time.Duration) {
	event := l.locateLog.Debug()

	if !result.OK() {
		event = l.locateLog.Info().
			Str("error_kind", string(result.ErrorKind)).
			Str("error", result.Error)
	}

	event.Str("domain", result.Domain).
		Str("ip", result.IP).
		Str("country_code", result.CountryCode).
		Str("source", string(result.Source)).
		Dur("elapsed", elapsed).
		Msg("")
}

func newLogger(w io.Writer) geolib.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	return &logger{
		dnsLog:    zerolog.New(w).With().Timestamp().Str("event_name", "dns").Logger(),
		geoLog:    zerolog.New(w).With().Timestamp().Str("event_name", "geo").Logger(),
		locateLog: zerolog.New(w).With().Timestamp().Str("event_name", "locate").Logger(),
	}
}

type multiLogger []geolib.Logger

func (m multiLogger) DNSError(domain string, err error) {
	for _, v := range m {
		v.DNSError(domain, err)
	}
}

func (m multiLogger) GeoError(ip net.IP, name string, err error) {
	for _, v := range m {
		v.GeoError(ip, name, err)
	}
}

func (m multiLogger) Located(result geolib.ServerLocationResult, elapsed time.Duration) {
	for _, v := range m {
		v.Located(result, elapsed)
	}
}
