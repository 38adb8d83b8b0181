package geolib

import "net"

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GeoCandidate is a normalized response of geolocation provider for a
// single IP address. Any field may be empty if upstream has omitted it.
type GeoCandidate struct {
	IP           net.IP
	Country      string
	CountryCode  string
	City         string
	Region       string
	RegionCode   string
	Zip          string
	Latitude     float64
	Longitude    float64
	ISP          string
	Organization string
	AS           string
	Timezone     string
}

// HeuristicLocation is a hand-curated location which overrides
// geolocation data.
type HeuristicLocation struct {
	CountryCode string
	CountryName string
	City        string
	Latitude    float64
	Longitude   float64
}

// LocationSource tells which rule has produced a location.
type LocationSource string

const (
	SourceGeolocation LocationSource = "geolocation"
	SourceCompany     LocationSource = "company"
	SourceTLD         LocationSource = "tld"
	SourceConsensus   LocationSource = "consensus"
)

const unknownValue = "Unknown"

// ServerLocationResult is an outcome of Locator.Locate. Please do not
// construct it manually, there are invariants on success and error
// fields which are maintained by constructors.
type ServerLocationResult struct {
	Success      bool           `json:"success"`
	Domain       string         `json:"domain"`
	IP           string         `json:"ip"`
	Country      string         `json:"country"`
	CountryCode  string         `json:"countryCode"`
	City         string         `json:"city"`
	Region       string         `json:"region"`
	Coordinates  Coordinates    `json:"coordinates"`
	Provider     string         `json:"provider"`
	Organization string         `json:"organization"`
	Timezone     string         `json:"timezone"`
	Source       LocationSource `json:"source,omitempty"`
	Error        string         `json:"error,omitempty"`
	ErrorKind    ErrorKind      `json:"errorKind,omitempty"`
}

// OK returns if result has a location.
func (s ServerLocationResult) OK() bool {
	return s.Success
}

func newFailedResult(domain, ip string, kind ErrorKind, message string) ServerLocationResult {
	if message == "" {
		message = kind.DefaultMessage()
	}

	return ServerLocationResult{
		Domain:    domain,
		IP:        ip,
		Error:     message,
		ErrorKind: kind,
	}
}

func newResult(domain string, candidate GeoCandidate, override *HeuristicLocation, source LocationSource) ServerLocationResult {
	rv := ServerLocationResult{
		Success:      true,
		Domain:       domain,
		IP:           candidate.IP.String(),
		Country:      candidate.Country,
		CountryCode:  candidate.CountryCode,
		City:         formatCity(candidate.City, candidate.Region),
		Region:       candidate.Region,
		Provider:     firstNonEmpty(candidate.ISP, candidate.Organization, unknownValue),
		Organization: candidate.Organization,
		Timezone:     candidate.Timezone,
		Source:       source,
		Coordinates: Coordinates{
			Lat: candidate.Latitude,
			Lon: candidate.Longitude,
		},
	}

	if override != nil {
		rv.Country = override.CountryName
		rv.CountryCode = override.CountryCode
		rv.City = override.City
		rv.Coordinates = Coordinates{
			Lat: override.Latitude,
			Lon: override.Longitude,
		}
	}

	if rv.Country == "" {
		rv.Country = unknownValue
	}

	return rv
}

func formatCity(city, region string) string {
	switch {
	case city == "":
		return unknownValue
	case region == "":
		return city
	}

	return city + ", " + region
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
