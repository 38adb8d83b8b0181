// Servergeo is a service which tells where servers of the given domain
// are physically located.
//
// You give it something like https://www.example.com/page, it
// normalizes it to a domain, resolves A records with
// DNS-over-HTTPS, geolocates addresses and applies a couple of
// heuristics: big companies are shown at their headquarters and
// country-code TLDs hint which country is more plausible.
//
// Tool itself is organized into 3 logical parts:
//
// Geolib
//
// geolib is a main package of the application which contains Locator
// struct and main logic: normalization, resolving, heuristics and
// candidate selection. It has its own API and can act as http.Handler.
//
// Providers
//
// This package has implementations of DNS clients (DNS-over-HTTPS JSON
// and wire formats) and geolocation provider (ip-api.com).
//
// Servergeo
//
// A main package itself is an example of how to wire both geolib and
// providers. It provides CLI which can either start HTTP server or
// locate given domains and print JSON.
package main
