package geolib

import (
	"encoding/json"
	"errors"
	"net/http"
)

var (
	ErrLocatorShutdown      = errors.New("locator instance was shutdown")
	ErrContextIsClosed      = errors.New("context is closed")
	ErrCircuitBreakerOpened = errors.New("circuit breaker is opened")
	ErrCircuitBreakerIgnore = errors.New("circuit breaker ignores this error")
	ErrReservedAddress      = errors.New("address belongs to reserved range")
	ErrGeoLookupFailed      = errors.New("geolocation lookup has failed")
)

// ErrorKind is a stable machine-readable kind of failed result.
type ErrorKind string

const (
	ErrorKindMissingInput       ErrorKind = "MissingInput"
	ErrorKindInvalidFormat      ErrorKind = "InvalidFormat"
	ErrorKindResolutionFailure  ErrorKind = "ResolutionFailure"
	ErrorKindGeolocationFailure ErrorKind = "GeolocationFailure"
	ErrorKindSelectionFailure   ErrorKind = "SelectionFailure"
	ErrorKindUnknownError       ErrorKind = "UnknownError"
)

// DefaultMessage returns a human-readable message which is used if
// nothing more specific is known.
func (e ErrorKind) DefaultMessage() string {
	switch e {
	case ErrorKindMissingInput:
		return "Domain parameter is required"
	case ErrorKindInvalidFormat:
		return "Invalid domain format"
	case ErrorKindResolutionFailure:
		return "Could not resolve domain"
	case ErrorKindGeolocationFailure:
		return "Failed to get geolocation data"
	case ErrorKindSelectionFailure:
		return "Could not determine server location"
	}

	return "Unknown error occurred"
}

// GeoFailure is returned by geolocation providers when upstream has
// explicitly reported that it cannot geolocate an address. Reason is
// a message from upstream, if any. Err is an optional cause.
type GeoFailure struct {
	Reason string
	Err    error
}

func (g *GeoFailure) Error() string {
	if g.Reason == "" {
		return ErrGeoLookupFailed.Error()
	}

	return ErrGeoLookupFailed.Error() + ": " + g.Reason
}

func (g *GeoFailure) Unwrap() []error {
	if g.Err == nil {
		return []error{ErrGeoLookupFailed}
	}

	return []error{ErrGeoLookupFailed, g.Err}
}

type jsonHTTPError struct {
	Error struct {
		Message string `json:"message"`
		Context string `json:"context"`
	} `json:"error"`
}

type httpError struct {
	message    string
	err        error
	statusCode int
}

func (h *httpError) Message() string {
	if h == nil {
		return ""
	}

	return h.message
}

func (h *httpError) Err() string {
	if err := errors.Unwrap(h); err != nil {
		return err.Error()
	}

	return ""
}

func (h *httpError) StatusCode() int {
	if h != nil && h.statusCode != 0 {
		return h.statusCode
	}

	return http.StatusInternalServerError
}

func (h *httpError) Unwrap() error {
	if h == nil {
		return nil
	}

	return h.err
}

func (h *httpError) Error() string {
	switch {
	case h == nil:
		return ""
	case h.err != nil && h.message != "":
		return h.message + ": " + h.err.Error()
	case h.err != nil:
		return h.err.Error()
	}

	return h.message
}

func (h *httpError) MarshalJSON() ([]byte, error) {
	if h == nil {
		return []byte("null"), nil
	}

	value := jsonHTTPError{}
	value.Error.Message = h.Message()
	value.Error.Context = h.Err()

	return json.Marshal(&value)
}
