package analyzer

import (
	"net/url"
	"strings"

	sgerrors "github.com/sitegrade/sitegrade-cli/internal/shared/errors"
)

// Target contains parsed target information
type Target struct {
	Original string // Original target string
	Scheme   string // http or https
	Host     string // Hostname (without protocol, path, port)
	Port     string // Port if specified
	FullURL  string // Full normalized URL (for HTTP requests)
}

// ParseTarget parses a target string into structured components.
// This handles various input formats:
//   - example.com
//   - https://example.com
//   - http://example.com:8080/path
func ParseTarget(raw string) (*Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, sgerrors.ErrEmptyTarget
	}

	// If parsing fails OR the scheme is empty OR the scheme doesn't look like
	// a real scheme (contains dots), prepend https:// and parse again
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || strings.Contains(parsed.Scheme, ".") {
		parsed, err = url.Parse("https://" + raw)
		if err != nil {
			return nil, sgerrors.ErrInvalidTarget
		}
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, sgerrors.ErrUnsupportedScheme
	}
	if parsed.Hostname() == "" {
		return nil, sgerrors.ErrInvalidTarget
	}

	return &Target{
		Original: raw,
		Scheme:   parsed.Scheme,
		Host:     parsed.Hostname(),
		Port:     parsed.Port(),
		FullURL:  parsed.String(),
	}, nil
}

// NormalizeTarget normalizes a target for HTTP/HTTPS requests.
// Returns a full URL with scheme.
func NormalizeTarget(raw string) (string, error) {
	info, err := ParseTarget(raw)
	if err != nil {
		return "", err
	}
	return info.FullURL, nil
}

// ExtractHost extracts just the hostname from a target.
// This is useful for DNS and WHOIS lookups where we need the bare hostname.
func ExtractHost(raw string) string {
	info, err := ParseTarget(raw)
	if err != nil {
		return ""
	}
	return info.Host
}
