package providers

const (
	// Identifier for ip-api.com.
	NameIPAPI = "ipapi"

	// Identifier for DNS-over-HTTPS JSON API (Google, Cloudflare).
	NameDOHJSON = "doh_json"

	// Identifier for RFC 8484 DNS-over-HTTPS.
	NameDOHWire = "doh_wire"
)
