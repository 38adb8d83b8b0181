package providers_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"

	"github.com/9seconds/servergeo/geolib"
	"github.com/9seconds/servergeo/providers"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"
)

type MockedIPAPITestSuite struct {
	MockedProviderTestSuite

	prov geolib.GeoProvider
}

func (suite *MockedIPAPITestSuite) SetupTest() {
	suite.MockedProviderTestSuite.SetupTest()

	suite.prov = providers.NewIPAPI(suite.http, "")
}

func (suite *MockedIPAPITestSuite) TestName() {
	suite.Equal(providers.NameIPAPI, suite.prov.Name())
}

func (suite *MockedIPAPITestSuite) TestLookupClosedContext() {
	ctx, cancel := context.WithCancel(context.Background())

	cancel()

	_, err := suite.prov.Lookup(ctx, net.ParseIP("23.22.13.113"))

	suite.Error(err)
}

func (suite *MockedIPAPITestSuite) TestLookupFailed() {
	httpmock.RegisterResponder("GET",
		"http://ip-api.com/json/23.22.13.113",
		httpmock.NewStringResponder(http.StatusInternalServerError, ""))

	_, err := suite.prov.Lookup(context.Background(),
		net.ParseIP("23.22.13.113"))

	suite.Error(err)
}

func (suite *MockedIPAPITestSuite) TestLookupBadJSON() {
	httpmock.RegisterResponder("GET",
		"http://ip-api.com/json/23.22.13.113",
		httpmock.NewStringResponder(http.StatusOK, `{[`))

	_, err := suite.prov.Lookup(context.Background(),
		net.ParseIP("23.22.13.113"))

	suite.Error(err)
}

func (suite *MockedIPAPITestSuite) TestLookupStatusFail() {
	httpmock.RegisterResponder("GET",
		"http://ip-api.com/json/10.0.0.1",
		httpmock.NewStringResponder(http.StatusOK, `{
  "status": "fail",
  "message": "private range",
  "query": "10.0.0.1"
}`))

	_, err := suite.prov.Lookup(context.Background(), net.ParseIP("10.0.0.1"))

	failure := &geolib.GeoFailure{}

	suite.True(errors.As(err, &failure))
	suite.Equal("private range", failure.Reason)
	suite.True(errors.Is(err, geolib.ErrGeoLookupFailed))
}

func (suite *MockedIPAPITestSuite) TestLookupOk() {
	httpmock.RegisterResponder("GET",
		"http://ip-api.com/json/23.22.13.113",
		func(req *http.Request) (*http.Response, error) {
			suite.Contains(req.URL.Query().Get("fields"), "countryCode")
			suite.Contains(req.URL.Query().Get("fields"), "query")

			return httpmock.NewStringResponse(http.StatusOK, `{
  "status": "success",
  "country": "United States",
  "countryCode": "US",
  "region": "VA",
  "regionName": "Virginia",
  "city": "Ashburn",
  "zip": "20149",
  "lat": 39.0438,
  "lon": -77.4874,
  "timezone": "America/New_York",
  "isp": "Amazon.com, Inc.",
  "org": "AWS EC2 (us-east-1)",
  "as": "AS14618 Amazon.com, Inc.",
  "query": "23.22.13.113"
}`), nil
		})

	result, err := suite.prov.Lookup(context.Background(),
		net.ParseIP("23.22.13.113"))

	suite.NoError(err)
	suite.Equal("US", result.CountryCode)
	suite.Equal("United States", result.Country)
	suite.Equal("Ashburn", result.City)
	suite.Equal("Virginia", result.Region)
	suite.Equal("VA", result.RegionCode)
	suite.Equal("Amazon.com, Inc.", result.ISP)
	suite.Equal("AWS EC2 (us-east-1)", result.Organization)
	suite.Equal("America/New_York", result.Timezone)
	suite.InDelta(39.0438, result.Latitude, 0.0001)
	suite.Equal("23.22.13.113", result.IP.String())
}

func (suite *MockedIPAPITestSuite) TestLookupCountryNameFallback() {
	httpmock.RegisterResponder("GET",
		"http://ip-api.com/json/5.255.255.242",
		httpmock.NewStringResponder(http.StatusOK, `{
  "status": "success",
  "countryCode": "ru"
}`))

	result, err := suite.prov.Lookup(context.Background(),
		net.ParseIP("5.255.255.242"))

	suite.NoError(err)
	suite.Equal("RU", result.CountryCode)
	suite.Equal("Russia", result.Country)
	suite.Equal("5.255.255.242", result.IP.String())
}

type IntegrationIPAPITestSuite struct {
	ProviderTestSuite

	prov geolib.GeoProvider
}

func (suite *IntegrationIPAPITestSuite) SetupTest() {
	suite.ProviderTestSuite.SetupTest()

	suite.prov = providers.NewIPAPI(suite.http, "")
}

func (suite *IntegrationIPAPITestSuite) TestLookup() {
	result, err := suite.prov.Lookup(context.Background(), net.ParseIP("8.8.8.8"))

	suite.NoError(err)
	suite.Equal("US", result.CountryCode)
}

func TestIPAPI(t *testing.T) {
	suite.Run(t, &MockedIPAPITestSuite{})
}

func TestIntegrationIPAPI(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipped because of the short mode")

		return
	}

	suite.Run(t, &IntegrationIPAPITestSuite{})
}
