package providers_test

import (
	"net/http"
	"time"

	"github.com/9seconds/servergeo/geolib"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"
)

type ProviderTestSuite struct {
	suite.Suite

	http geolib.ClosableHTTPClient
}

func (suite *ProviderTestSuite) SetupTest() {
	suite.http = geolib.NewHTTPClient(&http.Client{}, geolib.HTTPClientOptions{
		UserAgent:         "test-agent",
		Timeout:           10 * time.Second,
		RateLimitInterval: time.Millisecond,
		RateLimitBurst:    100,
	})
}

func (suite *ProviderTestSuite) TearDownTest() {
	suite.http.Close()
}

type MockedProviderTestSuite struct {
	ProviderTestSuite
}

func (suite *MockedProviderTestSuite) SetupSuite() {
	httpmock.Activate()
}

func (suite *MockedProviderTestSuite) TearDownSuite() {
	httpmock.DeactivateAndReset()
}

func (suite *MockedProviderTestSuite) TearDownTest() {
	httpmock.Reset()
	suite.ProviderTestSuite.TearDownTest()
}
