package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/dancestudio/internal/pkg/auth"
)

// SessionCookies names and writes the session cookies.
// Every cookie the service owns starts with Prefix.
type SessionCookies struct {
	Prefix string
	Domain string
	Secure bool
}

// AccessName is the cookie holding the access JWT
func (s SessionCookies) AccessName() string {
	return s.Prefix + "auth-token"
}

// RefreshName is the cookie holding the refresh token
func (s SessionCookies) RefreshName() string {
	return s.Prefix + "refresh-token"
}

// Read returns the access and refresh token of the request, empty when absent
func (s SessionCookies) Read(c *gin.Context) (access, refresh string) {
	access, _ = c.Cookie(s.AccessName())
	refresh, _ = c.Cookie(s.RefreshName())
	return access, refresh
}

// Write stores a token pair on the response
func (s SessionCookies) Write(c *gin.Context, pair *auth.TokenPair, now time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.AccessName(), pair.AccessToken, secondsUntil(pair.AccessExpiresAt, now), "/", s.Domain, s.Secure, true)
	c.SetCookie(s.RefreshName(), pair.RefreshToken, secondsUntil(pair.RefreshExpiresAt, now), "/", s.Domain, s.Secure, true)
}

// ClearAll expires every prefixed cookie the request carried plus the two session cookies
func (s SessionCookies) ClearAll(c *gin.Context) {
	names := map[string]struct{}{s.AccessName(): {}, s.RefreshName(): {}}
	for _, cookie := range c.Request.Cookies() {
		if strings.HasPrefix(cookie.Name, s.Prefix) {
			names[cookie.Name] = struct{}{}
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	for name := range names {
		c.SetCookie(name, "", -1, "/", s.Domain, s.Secure, true)
	}
}

func secondsUntil(t, now time.Time) int {
	seconds := int(t.Sub(now).Seconds())
	if seconds < 1 {
		return -1
	}
	return seconds
}
