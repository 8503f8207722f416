package crawler

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// BlockReason identifies which admission rule rejected a URL.
type BlockReason string

// Block reasons in decision order. The first matching rule wins.
const (
	// BlockScheme means the URL scheme is neither http nor https.
	BlockScheme BlockReason = "scheme"

	// BlockNotAllowed means the host matches no entry of the allow-list.
	BlockNotAllowed BlockReason = "not-allowed-domain"

	// BlockDenied means the host matches an entry of the deny-list.
	// An explicit deny overrides a subdomain allow-match.
	BlockDenied BlockReason = "denied-domain"

	// BlockPattern means the full URL matches a block pattern.
	BlockPattern BlockReason = "pattern"
)

// Decision is the outcome of an admission check.
type Decision struct {
	// Allowed reports whether the URL may be fetched.
	Allowed bool

	// Reason is set when the URL is blocked.
	Reason BlockReason
}

// Filter decides whether a normalized URL may be fetched. Its decision is a
// pure function of the URL and the configured rule sets, so the same input
// always yields the same outcome.
//
// Design decision: The filter has no side effects. Counting blocked URLs is
// the engine's job; keeping Decide pure makes the admission rules trivially
// testable and safe to call from concurrent workers.
type Filter struct {
	// allowed holds the normalized allow-list domains. A host is admitted
	// when it equals an entry or is a subdomain of one.
	allowed []string

	// denied holds the normalized deny-list domains, checked after the
	// allow-list so an explicit deny wins over a subdomain allow-match.
	denied []string

	// patterns are compiled expressions matched against the full URL.
	patterns []*regexp.Regexp
}

// NewFilter creates a Filter from the configured allow-list, deny-list, and
// precompiled block patterns. Domains are trimmed and lower-cased once here
// rather than on every check.
func NewFilter(allowed, denied []string, patterns []*regexp.Regexp) *Filter {
	return &Filter{
		allowed:  normalizeDomains(allowed),
		denied:   normalizeDomains(denied),
		patterns: patterns,
	}
}

// CompilePatterns compiles the configured block expressions once at
// configuration-load time. It returns an error naming the first expression
// that does not compile.
func CompilePatterns(exprs []string) ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid block pattern %q: %w", expr, err)
		}
		patterns = append(patterns, re)
	}
	return patterns, nil
}

// Decide returns the admission decision for a normalized URL. Rules are
// evaluated in order: scheme, allow-list, deny-list, block patterns.
func (f *Filter) Decide(rawURL string) Decision {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Decision{Reason: BlockScheme}
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return Decision{Reason: BlockScheme}
	}

	host := normalizeHost(u.Host)
	if !matchAnyDomain(host, f.allowed) {
		return Decision{Reason: BlockNotAllowed}
	}
	if matchAnyDomain(host, f.denied) {
		return Decision{Reason: BlockDenied}
	}

	for _, re := range f.patterns {
		if re.MatchString(rawURL) {
			return Decision{Reason: BlockPattern}
		}
	}

	return Decision{Allowed: true}
}

// normalizeDomains trims, lower-cases, and drops empty entries.
func normalizeDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		d = strings.TrimPrefix(d, "www.")
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

// normalizeHost lower-cases a host, strips any port, and removes a leading
// "www." so www.example.com and example.com match the same rules.
func normalizeHost(host string) string {
	host = strings.ToLower(host)
	if i := strings.LastIndex(host, ":"); i != -1 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	return strings.TrimPrefix(host, "www.")
}

// matchAnyDomain reports whether host equals any domain or is a subdomain
// of one.
func matchAnyDomain(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
