package auth

import (
	"net/url"
	"strings"
)

// SessionCookieName is the cookie that carries the session JWT for
// browser clients.
const SessionCookieName = "cohort_session"

// CookieSettings contains cookie security settings derived from base URL.
type CookieSettings struct {
	// Secure indicates whether the cookie should only be sent over HTTPS.
	Secure bool
	// Domain is the cookie domain scope (e.g., ".internal" for
	// cross-subdomain sharing on a hospital network).
	Domain string
}

// DeriveCookieSettings automatically determines cookie security settings from
// base URL. This supports the usual hosting scenarios:
//   - Local development (http://localhost:8080) → Secure: false, Domain: ""
//   - Internal network (https://cohort.research.internal) → Secure: true, Domain: ".internal"
//   - Anything else → Secure per scheme, Domain isolated to the exact host
//
// The configCookieDomain parameter allows explicit override if needed.
func DeriveCookieSettings(baseURL string, configCookieDomain string) CookieSettings {
	// If cookie_domain explicitly set in config, use it with scheme-based Secure
	if configCookieDomain != "" {
		return CookieSettings{
			Secure: isHTTPS(baseURL),
			Domain: configCookieDomain,
		}
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil || baseURL == "" {
		// Safe defaults for invalid URLs
		return CookieSettings{Secure: true, Domain: ""}
	}

	secure := parsedURL.Scheme != "http"
	hostname := parsedURL.Hostname()

	var domain string
	switch {
	case hostname == "localhost" || hostname == "127.0.0.1":
		// Localhost: no domain restriction, allow HTTP
		domain = ""
	case strings.HasSuffix(hostname, ".internal"):
		// Institutional network: share across internal subdomains
		domain = ".internal"
	default:
		// Unknown domain: isolate to specific hostname
		domain = ""
	}

	return CookieSettings{
		Secure: secure,
		Domain: domain,
	}
}

// isHTTPS determines if the given base URL uses HTTPS protocol.
// Returns true for HTTPS, false for HTTP, true for empty/invalid URLs (safe default).
func isHTTPS(baseURL string) bool {
	if baseURL == "" {
		return true
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return true
	}

	return parsedURL.Scheme != "http"
}
