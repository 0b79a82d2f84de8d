package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/dancestudio/internal/pkg/apperrors"
	"github.com/yigit/dancestudio/internal/pkg/auth"
)

// SessionRefresher resolves the caller from session tokens, rotating them when needed
type SessionRefresher interface {
	RefreshSession(ctx context.Context, accessToken, refreshToken string) (*auth.Session, error)
}

// DefaultPublicPaths are served without a session. A request matches an
// entry when its path equals it or continues it after a slash.
var DefaultPublicPaths = []string{
	"/",
	"/login",
	"/signup",
	"/auth",
	"/courses",
	"/faq",
	"/terms",
	"/privacy",
	"/health",
	"/api/v1/auth",
	"/api/v1/courses",
}

var staticExtensions = map[string]struct{}{
	".svg": {}, ".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {}, ".ico": {},
	".css": {}, ".js": {}, ".map": {}, ".woff": {}, ".woff2": {}, ".ttf": {},
}

// SessionConfig configures the session middleware
type SessionConfig struct {
	Cookies     SessionCookies
	LoginPath   string
	PublicPaths []string
}

// SessionMiddleware refreshes the member session on every protected request
type SessionMiddleware struct {
	sessions SessionRefresher
	config   SessionConfig
	now      func() time.Time
	logger   zerolog.Logger
}

// NewSessionMiddleware creates a new SessionMiddleware
func NewSessionMiddleware(sessions SessionRefresher, config SessionConfig, logger zerolog.Logger) *SessionMiddleware {
	if config.LoginPath == "" {
		config.LoginPath = "/login"
	}
	if len(config.PublicPaths) == 0 {
		config.PublicPaths = DefaultPublicPaths
	}
	return &SessionMiddleware{
		sessions: sessions,
		config:   config,
		now:      time.Now,
		logger:   logger.With().Str("component", "session").Logger(),
	}
}

// Handler returns the gin middleware
func (m *SessionMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if isStaticAsset(p) || m.isPublic(p) {
			c.Next()
			return
		}

		access, refresh := m.config.Cookies.Read(c)
		if access == "" && isAPIRequest(p) {
			access = bearerToken(c.GetHeader("Authorization"))
		}

		session, err := m.sessions.RefreshSession(c.Request.Context(), access, refresh)
		if err != nil {
			m.reject(c, err)
			return
		}

		if session.Tokens != nil {
			m.config.Cookies.Write(c, session.Tokens, m.now())
			m.logger.Debug().Str("userID", session.Identity.UserID.String()).Msg("Session refreshed")
		}

		auth.SetIdentity(c, session.Identity)
		c.Next()
	}
}

// reject clears the session and sends pages to the login screen.
// API requests continue anonymously so actions report "Not authenticated".
func (m *SessionMiddleware) reject(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrSessionInvalid) {
		m.logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("No valid session")
	} else {
		m.logger.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("Session refresh failed")
	}

	m.config.Cookies.ClearAll(c)

	if isAPIRequest(c.Request.URL.Path) {
		c.Next()
		return
	}

	target := m.config.LoginPath + "?redirectTo=" + url.QueryEscape(c.Request.URL.RequestURI())
	c.Redirect(http.StatusFound, target)
	c.Abort()
}

func (m *SessionMiddleware) isPublic(p string) bool {
	for _, public := range m.config.PublicPaths {
		if p == public {
			return true
		}
		if public != "/" && strings.HasPrefix(p, public+"/") {
			return true
		}
	}
	return false
}

func isStaticAsset(p string) bool {
	if strings.HasPrefix(p, "/static/") || p == "/favicon.ico" {
		return true
	}
	_, ok := staticExtensions[strings.ToLower(path.Ext(p))]
	return ok
}

func isAPIRequest(p string) bool {
	return strings.HasPrefix(p, "/api/")
}

// bearerToken extracts the token of an `Authorization: Bearer` header
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
