// Helper for issuing / clearing the session cookie plus the
// security-header block sent with token-bearing responses.

package utils

import (
	"fmt"
	"net/http"
	"time"
)

// SessionCookieName is the cookie that carries the signed session token.
const SessionCookieName = "takkr_session"

// SetSessionCookie writes the session cookie and every response header
// recommended for credential-bearing responses. The cookie is HttpOnly,
// Secure, SameSite=Lax, Path=/.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	if token == "" {
		return
	}

	maxAge := int(ttl.Seconds())
	expires := time.Now().Add(ttl).UTC().Format(http.TimeFormat)

	line := fmt.Sprintf("%s=%s; Path=/; Max-Age=%d; Expires=%s; SameSite=Lax; Secure; HttpOnly",
		SessionCookieName, token, maxAge, expires)

	Logger.Debugf("[cookies] writing cookie %s Max-Age=%d", SessionCookieName, maxAge)
	w.Header().Add("Set-Cookie", line)

	addSecurityHeaders(w)
}

// ClearSessionCookie deletes the session cookie (logout).
func ClearSessionCookie(w http.ResponseWriter) {
	expired := time.Now().Add(-1 * time.Hour).UTC().Format(http.TimeFormat)

	w.Header().Add("Set-Cookie",
		fmt.Sprintf("%s=; Path=/; Expires=%s; Max-Age=0; SameSite=Lax; Secure; HttpOnly",
			SessionCookieName, expired))

	addSecurityHeaders(w)
}

// addSecurityHeaders applies the transport, CSP, COOP/COEP and
// privacy headers used on every auth response.
func addSecurityHeaders(w http.ResponseWriter) {
	// 1 transport / caching
	w.Header().Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")

	// 2 content isolation & click-jacking
	w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'none'; frame-ancestors 'none'")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY") // legacy fallback

	// 3 Spectre / XS-leak mitigations
	w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
}
