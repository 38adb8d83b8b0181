package geolib

import (
	"net"
	"time"
)

type noopLogger struct{}

func (noopLogger) DNSError(string, error) {}

func (noopLogger) GeoError(net.IP, string, error) {}

func (noopLogger) Located(ServerLocationResult, time.Duration) {}
