// This package provides a set of structs and functions which are used
// to estimate where servers of a given domain are physically located.
//
// geolib is core of the servergeo project. You can treat the rest of
// the application as an _example_ on how to use this library: how to
// pass parameters from HTTP requests, how to configure DNS and
// geolocation clients, how to log and measure.
//
// Locator is a main entity of the geolib. It takes a domain as it was
// typed by a human, normalizes it, resolves it into IPv4 addresses
// with DNS-over-HTTPS, geolocates these addresses and picks the most
// plausible location among them. Raw geolocation data is often wrong
// for big companies and CDNs, so there are 2 static tables which
// correct it: company headquarters and country-code TLDs.
//
// Locator never returns an error. Each invocation produces exactly one
// ServerLocationResult and failures are reported within it.
package geolib
