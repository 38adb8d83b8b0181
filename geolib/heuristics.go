package geolib

import "strings"

type companyEntry struct {
	key      string
	location HeuristicLocation
}

// Geolocation of big companies usually points to the nearest CDN node
// or to anycast address so it is more honest to show headquarters.
//
// Order matters: a first label is matched by substring and the first
// match wins. Short keys can match unrelated labels (pineapple contains
// "apple", zoominfo contains "zoom"), so do not reorder this table.
var companyLocations = []companyEntry{
	{"google", HeuristicLocation{"US", "United States", "Mountain View, California", 37.4220, -122.0841}},
	{"youtube", HeuristicLocation{"US", "United States", "San Bruno, California", 37.6305, -122.4111}},
	{"facebook", HeuristicLocation{"US", "United States", "Menlo Park, California", 37.4848, -122.1484}},
	{"instagram", HeuristicLocation{"US", "United States", "Menlo Park, California", 37.4848, -122.1484}},
	{"whatsapp", HeuristicLocation{"US", "United States", "Menlo Park, California", 37.4848, -122.1484}},
	{"microsoft", HeuristicLocation{"US", "United States", "Redmond, Washington", 47.6740, -122.1215}},
	{"github", HeuristicLocation{"US", "United States", "San Francisco, California", 37.7749, -122.4194}},
	{"apple", HeuristicLocation{"US", "United States", "Cupertino, California", 37.3349, -122.0090}},
	{"amazon", HeuristicLocation{"US", "United States", "Seattle, Washington", 47.6062, -122.3321}},
	{"netflix", HeuristicLocation{"US", "United States", "Los Gatos, California", 37.2358, -121.9624}},
	{"twitter", HeuristicLocation{"US", "United States", "San Francisco, California", 37.7749, -122.4194}},
	{"linkedin", HeuristicLocation{"US", "United States", "Sunnyvale, California", 37.3688, -122.0363}},
	{"reddit", HeuristicLocation{"US", "United States", "San Francisco, California", 37.7749, -122.4194}},
	{"wikipedia", HeuristicLocation{"US", "United States", "San Francisco, California", 37.7749, -122.4194}},
	{"yahoo", HeuristicLocation{"US", "United States", "Sunnyvale, California", 37.3688, -122.0363}},
	{"stackoverflow", HeuristicLocation{"US", "United States", "New York, New York", 40.7128, -74.0060}},
	{"cloudflare", HeuristicLocation{"US", "United States", "San Francisco, California", 37.7749, -122.4194}},
	{"dropbox", HeuristicLocation{"US", "United States", "San Francisco, California", 37.7749, -122.4194}},
	{"salesforce", HeuristicLocation{"US", "United States", "San Francisco, California", 37.7749, -122.4194}},
	{"adobe", HeuristicLocation{"US", "United States", "San Jose, California", 37.3382, -121.8863}},
	{"paypal", HeuristicLocation{"US", "United States", "San Jose, California", 37.3382, -121.8863}},
	{"ebay", HeuristicLocation{"US", "United States", "San Jose, California", 37.3382, -121.8863}},
	{"zoom", HeuristicLocation{"US", "United States", "San Jose, California", 37.3382, -121.8863}},
	{"oracle", HeuristicLocation{"US", "United States", "Austin, Texas", 30.2672, -97.7431}},
	{"ibm", HeuristicLocation{"US", "United States", "Armonk, New York", 41.1265, -73.7140}},
	{"shopify", HeuristicLocation{"CA", "Canada", "Ottawa, Ontario", 45.4215, -75.6972}},
	{"spotify", HeuristicLocation{"SE", "Sweden", "Stockholm", 59.3293, 18.0686}},
	{"bbc", HeuristicLocation{"GB", "United Kingdom", "London", 51.5074, -0.1278}},
	{"yandex", HeuristicLocation{"RU", "Russia", "Moscow", 55.7558, 37.6173}},
	{"baidu", HeuristicLocation{"CN", "China", "Beijing", 39.9042, 116.4074}},
	{"alibaba", HeuristicLocation{"CN", "China", "Hangzhou, Zhejiang", 30.2741, 120.1551}},
	{"tencent", HeuristicLocation{"CN", "China", "Shenzhen, Guangdong", 22.5431, 114.0579}},
	{"samsung", HeuristicLocation{"KR", "South Korea", "Suwon, Gyeonggi", 37.2636, 127.0286}},
	{"sony", HeuristicLocation{"JP", "Japan", "Tokyo", 35.6762, 139.6503}},
}

var unitedKingdom = HeuristicLocation{"GB", "United Kingdom", "London", 51.5074, -0.1278}

// Country-code TLDs mapped to capitals. Generic TLDs like com or net
// carry no country implication and must never appear here.
var tldLocations = map[string]HeuristicLocation{
	"uk": unitedKingdom,
	"gb": unitedKingdom,
	"us": {"US", "United States", "Washington, D.C.", 38.9072, -77.0369},
	"ca": {"CA", "Canada", "Ottawa", 45.4215, -75.6972},
	"mx": {"MX", "Mexico", "Mexico City", 19.4326, -99.1332},
	"br": {"BR", "Brazil", "Brasília", -15.7939, -47.8828},
	"ar": {"AR", "Argentina", "Buenos Aires", -34.6037, -58.3816},
	"co": {"CO", "Colombia", "Bogotá", 4.7110, -74.0721},
	"de": {"DE", "Germany", "Berlin", 52.5200, 13.4050},
	"fr": {"FR", "France", "Paris", 48.8566, 2.3522},
	"it": {"IT", "Italy", "Rome", 41.9028, 12.4964},
	"es": {"ES", "Spain", "Madrid", 40.4168, -3.7038},
	"pt": {"PT", "Portugal", "Lisbon", 38.7223, -9.1393},
	"nl": {"NL", "Netherlands", "Amsterdam", 52.3676, 4.9041},
	"be": {"BE", "Belgium", "Brussels", 50.8503, 4.3517},
	"ch": {"CH", "Switzerland", "Bern", 46.9480, 7.4474},
	"at": {"AT", "Austria", "Vienna", 48.2082, 16.3738},
	"ie": {"IE", "Ireland", "Dublin", 53.3498, -6.2603},
	"se": {"SE", "Sweden", "Stockholm", 59.3293, 18.0686},
	"no": {"NO", "Norway", "Oslo", 59.9139, 10.7522},
	"fi": {"FI", "Finland", "Helsinki", 60.1699, 24.9384},
	"dk": {"DK", "Denmark", "Copenhagen", 55.6761, 12.5683},
	"pl": {"PL", "Poland", "Warsaw", 52.2297, 21.0122},
	"cz": {"CZ", "Czechia", "Prague", 50.0755, 14.4378},
	"gr": {"GR", "Greece", "Athens", 37.9838, 23.7275},
	"tr": {"TR", "Turkey", "Ankara", 39.9334, 32.8597},
	"ua": {"UA", "Ukraine", "Kyiv", 50.4501, 30.5234},
	"ru": {"RU", "Russia", "Moscow", 55.7558, 37.6173},
	"cn": {"CN", "China", "Beijing", 39.9042, 116.4074},
	"jp": {"JP", "Japan", "Tokyo", 35.6762, 139.6503},
	"kr": {"KR", "South Korea", "Seoul", 37.5665, 126.9780},
	"tw": {"TW", "Taiwan", "Taipei", 25.0330, 121.5654},
	"hk": {"HK", "Hong Kong", "Hong Kong", 22.3193, 114.1694},
	"sg": {"SG", "Singapore", "Singapore", 1.3521, 103.8198},
	"in": {"IN", "India", "New Delhi", 28.6139, 77.2090},
	"au": {"AU", "Australia", "Canberra", -35.2809, 149.1300},
	"nz": {"NZ", "New Zealand", "Wellington", -41.2865, 174.7762},
	"za": {"ZA", "South Africa", "Pretoria", -25.7479, 28.2293},
}

// MatchCompany checks if the first label of the domain contains a name
// of a known company. For example, "github" in "github.com".
func MatchCompany(domain string) (HeuristicLocation, bool) {
	first := splitDomain(domain).first

	for _, v := range companyLocations {
		if strings.Contains(first, v.key) {
			return v.location, true
		}
	}

	return HeuristicLocation{}, false
}

// MatchTLD maps a country-code TLD of the domain to the capital of
// that country. Compound TLDs like co.uk or com.br are supported.
func MatchTLD(domain string) (HeuristicLocation, bool) {
	labels := splitDomain(domain)

	if labels.secondLevel == "co" && labels.tld == "uk" {
		return unitedKingdom, true
	}

	// com, net, org and co as second-level labels only confirm what TLD
	// says so both compound and bare TLDs end up in the same table.
	loc, ok := tldLocations[labels.tld]

	return loc, ok
}

// MatchHeuristics applies company match and then TLD match.
func MatchHeuristics(domain string) (HeuristicLocation, LocationSource, bool) {
	if loc, ok := MatchCompany(domain); ok {
		return loc, SourceCompany, true
	}

	if loc, ok := MatchTLD(domain); ok {
		return loc, SourceTLD, true
	}

	return HeuristicLocation{}, "", false
}
