package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned by Normalize when a raw href cannot be turned
// into a canonical absolute URL with a scheme and a host. Pseudo-protocol
// links (mailto:, javascript:, tel:, data:) and fragment-only references
// are rejected with this error.
var ErrInvalidURL = errors.New("invalid URL")

// pseudoProtocols are href prefixes that never lead to a fetchable page.
var pseudoProtocols = []string{"javascript:", "mailto:", "tel:", "data:"}

// Normalize canonicalizes a raw href string found on the page at base.
// Relative references are resolved against base (which may be nil for seed
// URLs). A missing scheme defaults to https, the fragment is stripped, the
// scheme and host are lower-cased, and the path gets trailing-slash
// normalization: the empty path becomes "/" and non-root paths lose a
// trailing slash.
//
// Design decision: Normalization does NOT consult the admission rules.
// All filtering happens in Filter.Decide at dequeue time so the admission
// logic lives in exactly one place.
func Normalize(base *url.URL, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", fmt.Errorf("%w: empty reference", ErrInvalidURL)
	}
	if strings.HasPrefix(href, "#") {
		return "", fmt.Errorf("%w: fragment-only reference %q", ErrInvalidURL, href)
	}

	lower := strings.ToLower(href)
	for _, proto := range pseudoProtocols {
		if strings.HasPrefix(lower, proto) {
			return "", fmt.Errorf("%w: %s pseudo-protocol", ErrInvalidURL, strings.TrimSuffix(proto, ":"))
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if base != nil {
		u = base.ResolveReference(u)
	}

	// A bare "example.com/path" parses as a path with no host. Reattach it
	// behind the default scheme before validating.
	if u.Scheme == "" {
		if u.Host == "" {
			u, err = url.Parse("https://" + u.String())
			if err != nil {
				return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
			}
		} else {
			u.Scheme = "https"
		}
	}

	if u.Host == "" {
		return "", fmt.Errorf("%w: no host in %q", ErrInvalidURL, href)
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	// Trailing-slash normalization: http://example.com and
	// http://example.com/ are the same page, as are /a/ and /a.
	switch {
	case u.Path == "":
		u.Path = "/"
	case len(u.Path) > 1 && strings.HasSuffix(u.Path, "/"):
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String(), nil
}
