package cli

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURL accepts what a user would type in an address bar.
// Bare hosts get https://; about:, data:, file: and http(s) URLs pass through.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty url")
	}

	if !strings.Contains(raw, "://") && !hasOpaqueScheme(raw) {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return "", fmt.Errorf("url %q has no host", raw)
		}
	case "file", "about", "data":
	default:
		return "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	return u.String(), nil
}

func hasOpaqueScheme(raw string) bool {
	for _, scheme := range []string{"about:", "data:"} {
		if strings.HasPrefix(strings.ToLower(raw), scheme) {
			return true
		}
	}
	return false
}
