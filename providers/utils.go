package providers

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/idna"
)

func flushResponse(resp io.ReadCloser) {
	io.Copy(io.Discard, resp) // nolint: errcheck
	resp.Close()
}

// toASCIIName converts internationalized domain into punycode and adds
// a trailing dot to make it fully qualified.
func toASCIIName(name string) (string, error) {
	name = strings.TrimSuffix(name, ".")

	converted, err := idna.Lookup.ToASCII(name)
	if err != nil {
		return "", fmt.Errorf("cannot convert %s to ascii: %w", name, err)
	}

	return converted + ".", nil
}
