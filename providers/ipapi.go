package providers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/9seconds/servergeo/geolib"
)

const (
	// DefaultIPAPIEndpoint is a free endpoint of ip-api.com. It does
	// not support HTTPS.
	DefaultIPAPIEndpoint = "http://ip-api.com/json/"

	ipapiFields = "status,message,country,countryCode,region,regionName," +
		"city,zip,lat,lon,timezone,isp,org,as,query"
)

type ipapiResponse struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Region      string  `json:"region"`
	RegionName  string  `json:"regionName"`
	City        string  `json:"city"`
	Zip         string  `json:"zip"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Timezone    string  `json:"timezone"`
	ISP         string  `json:"isp"`
	Org         string  `json:"org"`
	AS          string  `json:"as"`
	Query       string  `json:"query"`
}

type ipapiProvider struct {
	endpoint string
	client   geolib.HTTPClient
}

func (i ipapiProvider) Name() string {
	return NameIPAPI
}

func (i ipapiProvider) Lookup(ctx context.Context, ip net.IP) (geolib.GeoCandidate, error) {
	result := geolib.GeoCandidate{}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.endpoint+ip.String(), nil)
	if err != nil {
		return result, fmt.Errorf("cannot build a request: %w", err)
	}

	query := req.URL.Query()
	query.Set("fields", ipapiFields)
	req.URL.RawQuery = query.Encode()

	req.Header.Set("Accept", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return result, fmt.Errorf("cannot send a request: %w", err)
	}

	defer flushResponse(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("unexpected status code %d: %w", resp.StatusCode, ErrLookupFailed)
	}

	jsonResponse := ipapiResponse{}
	jsonDecoder := json.NewDecoder(bufio.NewReader(resp.Body))

	if err := jsonDecoder.Decode(&jsonResponse); err != nil {
		return result, fmt.Errorf("cannot parse a response: %w", err)
	}

	if jsonResponse.Status != "success" {
		return result, &geolib.GeoFailure{Reason: jsonResponse.Message}
	}

	result.IP = ip
	if parsed := net.ParseIP(jsonResponse.Query); parsed != nil {
		result.IP = parsed
	}

	result.CountryCode = geolib.NormalizeAlpha2Code(jsonResponse.CountryCode)
	result.Country = strings.TrimSpace(jsonResponse.Country)

	if result.Country == "" {
		result.Country = geolib.CountryName(result.CountryCode)
	}

	result.City = jsonResponse.City
	result.Region = jsonResponse.RegionName
	result.RegionCode = jsonResponse.Region
	result.Zip = jsonResponse.Zip
	result.Latitude = jsonResponse.Lat
	result.Longitude = jsonResponse.Lon
	result.Timezone = jsonResponse.Timezone
	result.ISP = jsonResponse.ISP
	result.Organization = jsonResponse.Org
	result.AS = jsonResponse.AS

	return result, nil
}

// NewIPAPI creates a geolocation provider for ip-api.com. Empty
// endpoint means DefaultIPAPIEndpoint. Endpoint is a prefix, an IP
// address is appended to it.
func NewIPAPI(client geolib.HTTPClient, endpoint string) geolib.GeoProvider {
	if endpoint == "" {
		endpoint = DefaultIPAPIEndpoint
	}

	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}

	return ipapiProvider{
		endpoint: endpoint,
		client:   client,
	}
}
