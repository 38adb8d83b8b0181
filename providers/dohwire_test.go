package providers_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net"
	"net/http"
	"testing"

	"github.com/9seconds/servergeo/geolib"
	"github.com/9seconds/servergeo/providers"
	"github.com/jarcoal/httpmock"
	"github.com/miekg/dns"
	"github.com/stretchr/testify/suite"
)

type MockedDOHWireTestSuite struct {
	MockedProviderTestSuite

	client geolib.DNSClient
}

func (suite *MockedDOHWireTestSuite) SetupTest() {
	suite.MockedProviderTestSuite.SetupTest()

	suite.client = providers.NewDOHWire(suite.http, "")
}

// Responder decodes a query and answers with given records and rcode.
func (suite *MockedDOHWireTestSuite) Responder(rcode int, records ...string) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		suite.Equal("application/dns-message", req.Header.Get("Accept"))

		packed, err := base64.RawURLEncoding.DecodeString(req.URL.Query().Get("dns"))
		suite.Require().NoError(err)

		query := &dns.Msg{}
		suite.Require().NoError(query.Unpack(packed))
		suite.Require().Len(query.Question, 1)
		suite.Equal(dns.TypeA, query.Question[0].Qtype)

		answer := &dns.Msg{}
		answer.SetRcode(query, rcode)

		for _, v := range records {
			rr, err := dns.NewRR(v)
			suite.Require().NoError(err)

			answer.Answer = append(answer.Answer, rr)
		}

		data, err := answer.Pack()
		suite.Require().NoError(err)

		resp := httpmock.NewBytesResponse(http.StatusOK, data)
		resp.Header.Set("Content-Type", "application/dns-message")

		return resp, nil
	}
}

func (suite *MockedDOHWireTestSuite) TestName() {
	suite.Equal(providers.NameDOHWire, suite.client.Name())
}

func (suite *MockedDOHWireTestSuite) TestLookupOk() {
	httpmock.RegisterResponder("GET", providers.DefaultDOHWireEndpoint,
		suite.Responder(dns.RcodeSuccess,
			"example.com. 300 IN CNAME edge.example.net.",
			"edge.example.net. 300 IN A 93.184.216.34",
			"edge.example.net. 300 IN AAAA 2606:2800:220:1::248"))

	ips, err := suite.client.LookupA(context.Background(), "example.com")

	suite.NoError(err)
	suite.Equal([]net.IP{net.ParseIP("93.184.216.34").To4()}, ips)
}

func (suite *MockedDOHWireTestSuite) TestLookupNXDomain() {
	httpmock.RegisterResponder("GET", providers.DefaultDOHWireEndpoint,
		suite.Responder(dns.RcodeNameError))

	_, err := suite.client.LookupA(context.Background(), "nonexisting.example")

	suite.True(errors.Is(err, providers.ErrDNSStatus))
}

func (suite *MockedDOHWireTestSuite) TestLookupGarbage() {
	httpmock.RegisterResponder("GET", providers.DefaultDOHWireEndpoint,
		httpmock.NewBytesResponder(http.StatusOK, []byte{1, 2, 3}))

	_, err := suite.client.LookupA(context.Background(), "example.com")

	suite.Error(err)
}

func TestDOHWire(t *testing.T) {
	suite.Run(t, &MockedDOHWireTestSuite{})
}
