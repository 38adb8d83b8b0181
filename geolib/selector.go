package geolib

// Country codes which are plausible for servers of the given TLD. This
// table is used only as a hint for voting so unlike tldLocations it may
// list several countries per TLD.
var tldExpectedCountries = map[string][]string{
	"uk": {"GB"},
	"co": {"GB", "CO"},
	"us": {"US"},
	"ca": {"CA"},
	"mx": {"MX"},
	"br": {"BR"},
	"ar": {"AR"},
	"de": {"DE"},
	"fr": {"FR"},
	"it": {"IT"},
	"es": {"ES"},
	"nl": {"NL"},
	"se": {"SE"},
	"no": {"NO"},
	"fi": {"FI"},
	"dk": {"DK"},
	"pl": {"PL"},
	"ch": {"CH"},
	"at": {"AT", "DE"},
	"ie": {"IE", "GB"},
	"ru": {"RU"},
	"ua": {"UA"},
	"cn": {"CN", "HK"},
	"jp": {"JP"},
	"kr": {"KR"},
	"in": {"IN"},
	"au": {"AU"},
	"nz": {"NZ", "AU"},
	"sg": {"SG"},
	"eu": {"DE", "FR", "NL", "IE", "BE", "LU", "SE", "FI", "IT", "ES", "AT", "PL"},
}

// Expectations come from the TLD alone, so bare TLDs (example.de) and
// compound ones with com, net or org (example.com.br) behave the same.
// Other second-level labels are ignored, co.uk is always British even
// though co has its own entry.
func expectedCountries(domain string) map[string]bool {
	labels := splitDomain(domain)
	codes := tldExpectedCountries[labels.tld]

	if labels.secondLevel == "co" && labels.tld == "uk" {
		codes = []string{"GB"}
	}

	rv := make(map[string]bool, len(codes))

	for _, v := range codes {
		rv[v] = true
	}

	return rv
}

// SelectCandidate picks the most plausible candidate among geolocation
// results of different IP addresses of the same domain.
//
// If TLD of the domain implies some countries, the first candidate from
// these countries is chosen. Otherwise candidates vote by their country
// codes; on ties the country which was seen first wins. Candidates
// without country code do not vote. Returns false only if there are
// no candidates at all.
func SelectCandidate(candidates []GeoCandidate, domain string) (GeoCandidate, bool) {
	switch len(candidates) {
	case 0:
		return GeoCandidate{}, false
	case 1:
		return candidates[0], true
	}

	if expected := expectedCountries(domain); len(expected) > 0 {
		for _, v := range candidates {
			if expected[v.CountryCode] {
				return v, true
			}
		}
	}

	counters := map[string]int{}
	representatives := map[string]int{}
	order := []string{}

	for idx, v := range candidates {
		if v.CountryCode == "" {
			continue
		}

		if _, ok := counters[v.CountryCode]; !ok {
			order = append(order, v.CountryCode)
			representatives[v.CountryCode] = idx
		}

		counters[v.CountryCode]++
	}

	if len(order) == 0 {
		return candidates[0], true
	}

	winner := order[0]

	for _, code := range order[1:] {
		if counters[code] > counters[winner] {
			winner = code
		}
	}

	return candidates[representatives[winner]], true
}
