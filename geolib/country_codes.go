package geolib

import (
	"strings"

	"github.com/pariz/gountries"
)

var countryCodeQuery = gountries.New()

// NormalizeAlpha2Code returns a normalized 2-letter ISO3166 code.
// Normalized code is uppercased with some additional mapping. Some
// services return ZZ as 'unknown' country, this function returns ""
// instead. UK is mapped to GB.
//
// So, whenever you want to use 2-letter ISO3166 code and it is coming
// from unknown source, it is recommended to normalize it with this
// function.
func NormalizeAlpha2Code(alpha2 string) string {
	alpha2 = strings.ToUpper(strings.TrimSpace(alpha2))

	if len(alpha2) != 2 {
		return ""
	}

	switch alpha2 {
	case "ZZ", "AP", "EU", "XX":
		return ""
	case "YU":
		return "CS"
	case "FX":
		return "FR"
	case "UK":
		return "GB"
	default:
		return alpha2
	}
}

// KnownCountry checks if alpha2 code corresponds to existing country.
func KnownCountry(alpha2 string) bool {
	_, err := countryCodeQuery.FindCountryByAlpha(NormalizeAlpha2Code(alpha2))

	return err == nil
}

// CountryName returns a common english name of the country by its
// alpha2 code or empty string if country is unknown.
func CountryName(alpha2 string) string {
	country, err := countryCodeQuery.FindCountryByAlpha(NormalizeAlpha2Code(alpha2))
	if err != nil {
		return ""
	}

	return country.Name.Common
}
