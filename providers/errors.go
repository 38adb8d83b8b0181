package providers

import "errors"

var (
	// ErrLookupFailed is returned if upstream has responded but the
	// response is unusable.
	ErrLookupFailed = errors.New("lookup has failed")

	// ErrDNSStatus is returned if DNS response has non-zero status
	// (rcode). NXDOMAIN is the most common case.
	ErrDNSStatus = errors.New("dns response has error status")
)
