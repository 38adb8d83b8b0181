package providers

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/9seconds/servergeo/geolib"
	"github.com/miekg/dns"
)

const (
	// DefaultDOHWireEndpoint is Cloudflare RFC 8484 endpoint.
	DefaultDOHWireEndpoint = "https://cloudflare-dns.com/dns-query"

	dohWireContentType = "application/dns-message"
)

type dohWireClient struct {
	endpoint string
	client   geolib.HTTPClient
}

func (d dohWireClient) Name() string {
	return NameDOHWire
}

func (d dohWireClient) LookupA(ctx context.Context, name string) ([]net.IP, error) {
	asciiName, err := toASCIIName(name)
	if err != nil {
		return nil, err
	}

	msg := &dns.Msg{}
	msg.SetQuestion(asciiName, dns.TypeA)

	// RFC 8484 asks for zero ID to make responses cacheable
	msg.Id = 0

	packed, err := msg.Pack()
	if err != nil {
		return nil, fmt.Errorf("cannot pack dns message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot build a request: %w", err)
	}

	query := req.URL.Query()
	query.Set("dns", base64.RawURLEncoding.EncodeToString(packed))
	req.URL.RawQuery = query.Encode()

	req.Header.Set("Accept", dohWireContentType)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot send a request: %w", err)
	}

	defer flushResponse(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d: %w", resp.StatusCode, ErrLookupFailed)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, dns.MaxMsgSize))
	if err != nil {
		return nil, fmt.Errorf("cannot read a response: %w", err)
	}

	answer := &dns.Msg{}
	if err := answer.Unpack(body); err != nil {
		return nil, fmt.Errorf("cannot unpack dns message: %w", err)
	}

	if answer.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("%s (%d): %w",
			dns.RcodeToString[answer.Rcode], answer.Rcode, ErrDNSStatus)
	}

	rv := make([]net.IP, 0, len(answer.Answer))

	for _, rr := range answer.Answer {
		if record, ok := rr.(*dns.A); ok {
			rv = append(rv, record.A.To4())
		}
	}

	return rv, nil
}

// NewDOHWire creates a DNS client which speaks RFC 8484 wire format.
// Empty endpoint means DefaultDOHWireEndpoint.
func NewDOHWire(client geolib.HTTPClient, endpoint string) geolib.DNSClient {
	if endpoint == "" {
		endpoint = DefaultDOHWireEndpoint
	}

	return dohWireClient{
		endpoint: endpoint,
		client:   client,
	}
}
