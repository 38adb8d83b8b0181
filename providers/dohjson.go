package providers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/9seconds/servergeo/geolib"
	"github.com/miekg/dns"
)

// DefaultDOHJSONEndpoint is Google Public DNS JSON API. Cloudflare
// (https://cloudflare-dns.com/dns-query) speaks the same dialect.
const DefaultDOHJSONEndpoint = "https://dns.google/resolve"

type dohJSONAnswer struct {
	Name string `json:"name"`
	Type uint16 `json:"type"`
	TTL  uint32 `json:"TTL"`
	Data string `json:"data"`
}

type dohJSONResponse struct {
	Status int             `json:"Status"`
	Answer []dohJSONAnswer `json:"Answer"`
}

type dohJSONClient struct {
	endpoint string
	client   geolib.HTTPClient
}

func (d dohJSONClient) Name() string {
	return NameDOHJSON
}

func (d dohJSONClient) LookupA(ctx context.Context, name string) ([]net.IP, error) {
	asciiName, err := toASCIIName(name)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot build a request: %w", err)
	}

	query := req.URL.Query()
	query.Set("name", asciiName)
	query.Set("type", dns.TypeToString[dns.TypeA])
	req.URL.RawQuery = query.Encode()

	req.Header.Set("Accept", "application/dns-json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot send a request: %w", err)
	}

	defer flushResponse(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d: %w", resp.StatusCode, ErrLookupFailed)
	}

	jsonResponse := dohJSONResponse{}
	jsonDecoder := json.NewDecoder(bufio.NewReader(resp.Body))

	if err := jsonDecoder.Decode(&jsonResponse); err != nil {
		return nil, fmt.Errorf("cannot parse a response: %w", err)
	}

	if jsonResponse.Status != dns.RcodeSuccess {
		return nil, fmt.Errorf("%s (%d): %w",
			dns.RcodeToString[jsonResponse.Status], jsonResponse.Status, ErrDNSStatus)
	}

	rv := make([]net.IP, 0, len(jsonResponse.Answer))

	for _, v := range jsonResponse.Answer {
		if v.Type != dns.TypeA {
			continue
		}

		if ip := net.ParseIP(v.Data).To4(); ip != nil {
			rv = append(rv, ip)
		}
	}

	return rv, nil
}

// NewDOHJSON creates a DNS client which uses JSON API of
// DNS-over-HTTPS resolvers. Empty endpoint means
// DefaultDOHJSONEndpoint.
func NewDOHJSON(client geolib.HTTPClient, endpoint string) geolib.DNSClient {
	if endpoint == "" {
		endpoint = DefaultDOHJSONEndpoint
	}

	return dohJSONClient{
		endpoint: endpoint,
		client:   client,
	}
}
