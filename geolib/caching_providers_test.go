package geolib_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/9seconds/servergeo/geolib"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CachingGeoProviderTestSuite struct {
	suite.Suite

	p       geolib.GeoProvider
	geoMock *GeoProviderMock
}

func (suite *CachingGeoProviderTestSuite) SetupTest() {
	suite.geoMock = &GeoProviderMock{}

	provider, err := geolib.NewCachingGeoProvider(suite.geoMock, 100, time.Minute)

	suite.Require().NoError(err)

	suite.p = provider
}

func (suite *CachingGeoProviderTestSuite) TearDownTest() {
	suite.geoMock.AssertExpectations(suite.T())
}

func (suite *CachingGeoProviderTestSuite) TestLookup() {
	ctx := context.Background()
	ip := net.ParseIP("80.80.81.81")

	suite.geoMock.On("Lookup", mock.Anything, matchIP("80.80.81.81")).
		Return(geolib.GeoCandidate{City: "Nizhny Novgorod", CountryCode: "RU"}, nil).
		Once()

	result1, err := suite.p.Lookup(ctx, ip)

	suite.NoError(err)

	// ristretto is eventually consistent
	time.Sleep(100 * time.Millisecond)

	result2, err := suite.p.Lookup(ctx, ip)

	suite.NoError(err)
	suite.Equal(result1, result2)
}

func (suite *CachingGeoProviderTestSuite) TestFailuresAreNotCached() {
	ctx := context.Background()
	ip := net.ParseIP("80.80.81.81")

	suite.geoMock.On("Lookup", mock.Anything, mock.Anything).
		Return(geolib.GeoCandidate{}, errors.New("timeout")).
		Twice()

	_, err := suite.p.Lookup(ctx, ip)

	suite.Error(err)

	time.Sleep(100 * time.Millisecond)

	_, err = suite.p.Lookup(ctx, ip)

	suite.Error(err)
}

func (suite *CachingGeoProviderTestSuite) TestName() {
	suite.geoMock.On("Name").Return("ipapi").Once()

	suite.Equal("ipapi", suite.p.Name())
}

func TestCachingGeoProvider(t *testing.T) {
	suite.Run(t, &CachingGeoProviderTestSuite{})
}
