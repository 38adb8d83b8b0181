package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/9seconds/servergeo/geolib"
	"github.com/9seconds/servergeo/providers"
	"github.com/jarcoal/httpmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/suite"
)

const mainTestConfig = `{
    lookup_delay: 1ms
    basic_auth: {
        user: admin
        password: secret
    }
    dns: {
        rate_limit_interval: 1ms
        rate_limit_burst: 100
    }
    geo: {
        rate_limit_interval: 1ms
        rate_limit_burst: 100
    }
}`

var mainTestDNS = map[string]string{
	"example.com.":  "93.184.216.34",
	"intranet.com.": "10.0.0.1",
	"bbc.co.uk.":    "151.101.0.81",
}

type MainTestSuite struct {
	suite.Suite

	fs  afero.Fs
	ctx context.Context
}

func (suite *MainTestSuite) SetupSuite() {
	httpmock.Activate()
}

func (suite *MainTestSuite) TearDownSuite() {
	httpmock.DeactivateAndReset()
}

func (suite *MainTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.fs = afero.NewMemMapFs()

	suite.Require().NoError(afero.WriteFile(suite.fs, "/config.hjson", []byte(mainTestConfig), 0644))

	httpmock.RegisterResponder("GET", providers.DefaultDOHJSONEndpoint,
		func(req *http.Request) (*http.Response, error) {
			name := req.URL.Query().Get("name")

			addr, ok := mainTestDNS[name]
			if !ok {
				return httpmock.NewStringResponse(http.StatusOK, `{"Status": 3}`), nil
			}

			return httpmock.NewStringResponse(http.StatusOK, `{
  "Status": 0,
  "Answer": [{"name": "`+name+`", "type": 1, "TTL": 60, "data": "`+addr+`"}]
}`), nil
		})
	httpmock.RegisterResponder("GET", providers.DefaultIPAPIEndpoint+"93.184.216.34",
		httpmock.NewStringResponder(http.StatusOK, `{
  "status": "success",
  "query": "93.184.216.34",
  "country": "United States",
  "countryCode": "US",
  "region": "MA",
  "regionName": "Massachusetts",
  "city": "Norwell",
  "lat": 42.1508,
  "lon": -70.8228,
  "timezone": "America/New_York",
  "isp": "Edgecast Inc.",
  "org": "Verizon Business",
  "as": "AS15133 Verizon Business"
}`))
	httpmock.RegisterResponder("GET", providers.DefaultIPAPIEndpoint+"151.101.0.81",
		httpmock.NewStringResponder(http.StatusOK, `{
  "status": "success",
  "query": "151.101.0.81",
  "country": "United States",
  "countryCode": "US",
  "city": "San Francisco",
  "isp": "Fastly"
}`))
}

func (suite *MainTestSuite) TearDownTest() {
	httpmock.Reset()
}

func (suite *MainTestSuite) Locate(domains ...string) ([]geolib.ServerLocationResult, error) {
	out := &bytes.Buffer{}
	err := runLocate(suite.ctx, suite.fs, "/config.hjson", "", domains, out)

	results := []geolib.ServerLocationResult{}

	suite.Require().NoError(json.Unmarshal(out.Bytes(), &results))

	return results, err
}

func (suite *MainTestSuite) TestLocateOk() {
	results, err := suite.Locate("https://Example.com/path", "bbc.co.uk")

	suite.NoError(err)
	suite.Len(results, 2)

	suite.True(results[0].Success)
	suite.Equal("example.com", results[0].Domain)
	suite.Equal("93.184.216.34", results[0].IP)
	suite.Equal("US", results[0].CountryCode)
	suite.Equal("Norwell, Massachusetts", results[0].City)
	suite.Equal(geolib.SourceGeolocation, results[0].Source)

	suite.True(results[1].Success)
	suite.Equal("GB", results[1].CountryCode)
	suite.Equal("Fastly", results[1].Provider)
	suite.Equal(geolib.SourceCompany, results[1].Source)
}

func (suite *MainTestSuite) TestLocateFailed() {
	results, err := suite.Locate("nothing.example", "intranet.com", "")

	suite.ErrorIs(err, errNotLocated)
	suite.Len(results, 3)
	suite.Equal(geolib.ErrorKindResolutionFailure, results[0].ErrorKind)
	suite.Equal("Could not resolve domain: nothing.example", results[0].Error)
	suite.Equal(geolib.ErrorKindGeolocationFailure, results[1].ErrorKind)
	suite.Equal("reserved range", results[1].Error)
	suite.Equal("10.0.0.1", results[1].IP)
	suite.Equal(geolib.ErrorKindMissingInput, results[2].ErrorKind)
}

func (suite *MainTestSuite) TestLocateNoConfig() {
	out := &bytes.Buffer{}

	suite.Error(runLocate(suite.ctx, suite.fs, "/nothing.hjson", "", []string{"example.com"}, out))
	suite.Empty(out.String())
}

func (suite *MainTestSuite) TestRouter() {
	conf, err := parseConfig(suite.fs, "/config.hjson")

	suite.Require().NoError(err)

	registry := prometheus.NewRegistry()
	locator, shutdown, err := makeLocator(conf, io.Discard, registry)

	suite.Require().NoError(err)

	defer shutdown()

	srv := httptest.NewServer(makeRouter(conf, locator, registry))
	defer srv.Close()

	client := &http.Client{Transport: httpmock.InitialTransport}

	resp, err := client.Get(srv.URL + "/?domain=example.com")

	suite.Require().NoError(err)
	resp.Body.Close()
	suite.Equal(http.StatusUnauthorized, resp.StatusCode)
	suite.NotEmpty(resp.Header.Get("WWW-Authenticate"))

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/?domain=example.com", nil)
	req.SetBasicAuth("admin", "secret")

	resp, err = client.Do(req)

	suite.Require().NoError(err)

	result := geolib.ServerLocationResult{}

	suite.NoError(json.NewDecoder(resp.Body).Decode(&result))
	resp.Body.Close()
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.True(result.Success)
	suite.Equal("US", result.CountryCode)

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/metrics", nil)
	req.SetBasicAuth("admin", "secret")

	resp, err = client.Do(req)

	suite.Require().NoError(err)

	body, err := io.ReadAll(resp.Body)

	suite.NoError(err)
	resp.Body.Close()
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.True(strings.Contains(string(body), "servergeo_located_total"))
}

func (suite *MainTestSuite) TestShutdown() {
	conf, err := parseConfig(suite.fs, "/config.hjson")

	suite.Require().NoError(err)

	locator, shutdown, err := makeLocator(conf, io.Discard, prometheus.NewRegistry())

	suite.Require().NoError(err)

	shutdown()

	_, err = locator.LocateAll(suite.ctx, []string{"example.com"})

	suite.ErrorIs(err, geolib.ErrLocatorShutdown)
}

func TestServergeo(t *testing.T) {
	suite.Run(t, &MainTestSuite{})
}
