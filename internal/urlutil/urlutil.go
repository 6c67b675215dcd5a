// Package urlutil provides URL manipulation utilities.
package urlutil

import (
	"net/url"
	"strings"
)

// NormalizeBaseURL normalizes a panel base URL for consistent use:
//   - Adds http:// scheme if no scheme provided
//   - Removes trailing slash for clean path joining
//
// Examples:
//
//	"panel.example.com"          -> "http://panel.example.com"
//	"https://panel.example.com/" -> "https://panel.example.com"
//	"panel.example.com:8080"     -> "http://panel.example.com:8080"
func NormalizeBaseURL(baseURL string) string {
	if baseURL == "" {
		return ""
	}

	baseURL = strings.TrimSpace(baseURL)

	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	return strings.TrimSuffix(baseURL, "/")
}

// RedactStreamURL strips the credential segments of a panel stream URL so
// it can appear in logs and debug headers. Panel stream paths are
// {kind}/{username}/{password}/{asset}; segments two and three are
// replaced. The query string is dropped entirely.
func RedactStreamURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(unparseable)"
	}

	parts := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")
	if len(parts) >= 4 {
		parts[1] = "xxx"
		parts[2] = "xxx"
		u.Path = "/" + strings.Join(parts, "/")
	}
	u.RawQuery = ""
	return u.String()
}
