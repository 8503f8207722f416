package crawler

import "testing"

// TestFilterDecide tests the admission decision order and domain matching.
func TestFilterDecide(t *testing.T) {
	t.Parallel()

	patterns, err := CompilePatterns([]string{
		`\.(pdf|zip|jpg)$`,
		`/wp-json/`,
		`\?utm_`,
	})
	if err != nil {
		t.Fatalf("failed to compile patterns: %v", err)
	}

	f := NewFilter(
		[]string{"example.com", "kiec.edu.np"},
		[]string{"blocked.example.com", "facebook.com"},
		patterns,
	)

	tests := []struct {
		name    string
		url     string
		allowed bool
		reason  BlockReason
	}{
		{
			name:    "allowed domain",
			url:     "https://example.com/page",
			allowed: true,
		},
		{
			name:    "subdomain of allowed domain",
			url:     "https://sub.example.com/page",
			allowed: true,
		},
		{
			name:    "www prefix ignored",
			url:     "https://www.example.com/page",
			allowed: true,
		},
		{
			name:    "second allowed domain",
			url:     "http://kiec.edu.np/",
			allowed: true,
		},
		{
			name:   "host not on allow-list",
			url:    "https://evil.com/page",
			reason: BlockNotAllowed,
		},
		{
			name:   "non-http scheme",
			url:    "ftp://example.com/file",
			reason: BlockScheme,
		},
		{
			name:   "explicit deny overrides subdomain allow-match",
			url:    "https://blocked.example.com/page",
			reason: BlockDenied,
		},
		{
			name:   "denied domain off the allow-list reports not-allowed first",
			url:    "https://facebook.com/profile",
			reason: BlockNotAllowed,
		},
		{
			name:   "file extension pattern",
			url:    "https://example.com/report.pdf",
			reason: BlockPattern,
		},
		{
			name:   "path pattern",
			url:    "https://example.com/wp-json/v2/posts",
			reason: BlockPattern,
		},
		{
			name:   "tracking query pattern",
			url:    "https://example.com/page?utm_source=mail",
			reason: BlockPattern,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := f.Decide(tt.url)
			if got.Allowed != tt.allowed {
				t.Fatalf("expected allowed=%v, got %+v", tt.allowed, got)
			}
			if !tt.allowed && got.Reason != tt.reason {
				t.Errorf("expected reason %q, got %q", tt.reason, got.Reason)
			}
		})
	}
}

// TestFilterDeterministic tests that Decide is a pure function: the same
// input always yields the same decision.
func TestFilterDeterministic(t *testing.T) {
	t.Parallel()

	f := NewFilter([]string{"example.com"}, nil, nil)

	first := f.Decide("https://sub.example.com/page")
	for range 100 {
		if got := f.Decide("https://sub.example.com/page"); got != first {
			t.Fatalf("decision changed between calls: %+v vs %+v", first, got)
		}
	}
}

// TestCompilePatterns tests pattern compilation errors.
func TestCompilePatterns(t *testing.T) {
	t.Parallel()

	t.Run("valid patterns compile", func(t *testing.T) {
		t.Parallel()

		patterns, err := CompilePatterns([]string{`\.pdf$`, `^https://`})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(patterns) != 2 {
			t.Errorf("expected 2 patterns, got %d", len(patterns))
		}
	})

	t.Run("invalid pattern reports the expression", func(t *testing.T) {
		t.Parallel()

		_, err := CompilePatterns([]string{`[unclosed`})
		if err == nil {
			t.Fatal("expected error for invalid pattern")
		}
	})
}

// TestNormalizeHost tests host canonicalization for domain matching.
func TestNormalizeHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		want string
	}{
		{host: "Example.COM", want: "example.com"},
		{host: "www.example.com", want: "example.com"},
		{host: "example.com:8080", want: "example.com"},
		{host: "[::1]:8080", want: "[::1]"},
	}

	for _, tt := range tests {
		if got := normalizeHost(tt.host); got != tt.want {
			t.Errorf("normalizeHost(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}
