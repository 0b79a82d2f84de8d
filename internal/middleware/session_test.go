package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/dancestudio/internal/pkg/apperrors"
	"github.com/yigit/dancestudio/internal/pkg/auth"
)

type refreshCall struct {
	access  string
	refresh string
}

type fakeRefresher struct {
	session *auth.Session
	err     error
	calls   []refreshCall
}

func (f *fakeRefresher) RefreshSession(_ context.Context, access, refresh string) (*auth.Session, error) {
	f.calls = append(f.calls, refreshCall{access, refresh})
	return f.session, f.err
}

type handlerView struct {
	ran        bool
	identity   *auth.Identity
	setCookies []string
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newSessionRouter(refresher *fakeRefresher) (*gin.Engine, *handlerView) {
	view := &handlerView{}
	m := NewSessionMiddleware(refresher, SessionConfig{
		Cookies: SessionCookies{Prefix: "sb-test-"},
	}, zerolog.Nop())

	r := gin.New()
	r.Use(m.Handler())
	handler := func(c *gin.Context) {
		view.ran = true
		view.identity = auth.IdentityFrom(c)
		view.setCookies = c.Writer.Header().Values("Set-Cookie")
		c.Status(http.StatusOK)
	}
	r.GET("/courses", handler)
	r.GET("/profile", handler)
	r.GET("/static/app.css", handler)
	r.GET("/images/logo.png", handler)
	r.POST("/api/v1/bookings", handler)
	return r, view
}

func withSessionCookies(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: "sb-test-auth-token", Value: "access-1"})
	req.AddCookie(&http.Cookie{Name: "sb-test-refresh-token", Value: "refresh-1"})
	return req
}

func cookieHeader(headers []string, name string) string {
	for _, h := range headers {
		if strings.HasPrefix(h, name+"=") {
			return h
		}
	}
	return ""
}

func TestPublicListingNeverRefreshes(t *testing.T) {
	refresher := &fakeRefresher{err: apperrors.ErrSessionInvalid}
	r, view := newSessionRouter(refresher)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withSessionCookies(httptest.NewRequest(http.MethodGet, "/courses", nil)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, view.ran)
	assert.Empty(t, refresher.calls)
	assert.Empty(t, w.Header().Values("Set-Cookie"))
}

func TestStaticAssetsSkipSession(t *testing.T) {
	refresher := &fakeRefresher{err: apperrors.ErrSessionInvalid}
	r, _ := newSessionRouter(refresher)

	for _, p := range []string{"/static/app.css", "/images/logo.png"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusOK, w.Code, p)
	}
	assert.Empty(t, refresher.calls)
}

func TestProfileAlwaysRefreshes(t *testing.T) {
	identity := &auth.Identity{UserID: uuid.New(), Email: "m@studio.test"}
	refresher := &fakeRefresher{session: &auth.Session{Identity: identity}}
	r, view := newSessionRouter(refresher)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, withSessionCookies(httptest.NewRequest(http.MethodGet, "/profile", nil)))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	require.Len(t, refresher.calls, 2)
	assert.Equal(t, refreshCall{"access-1", "refresh-1"}, refresher.calls[0])
	assert.Equal(t, identity, view.identity)
	assert.Empty(t, view.setCookies)
}

func TestRotatedTokensAreWrittenBeforeHandler(t *testing.T) {
	now := time.Now()
	refresher := &fakeRefresher{session: &auth.Session{
		Identity: &auth.Identity{UserID: uuid.New(), Email: "m@studio.test"},
		Tokens: &auth.TokenPair{
			AccessToken:      "access-2",
			RefreshToken:     "refresh-2",
			AccessExpiresAt:  now.Add(time.Hour),
			RefreshExpiresAt: now.Add(24 * time.Hour),
		},
	}}
	r, view := newSessionRouter(refresher)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withSessionCookies(httptest.NewRequest(http.MethodGet, "/profile", nil)))

	require.True(t, view.ran)
	assert.Contains(t, cookieHeader(view.setCookies, "sb-test-auth-token"), "sb-test-auth-token=access-2")
	assert.Contains(t, cookieHeader(view.setCookies, "sb-test-refresh-token"), "HttpOnly")
	assert.NotNil(t, view.identity)
}

func TestPageRefreshFailureRedirectsAndClearsCookies(t *testing.T) {
	refresher := &fakeRefresher{err: errors.Join(apperrors.ErrSessionInvalid, apperrors.ErrTokenExpired)}
	r, view := newSessionRouter(refresher)

	req := withSessionCookies(httptest.NewRequest(http.MethodGet, "/profile?tab=bookings", nil))
	req.AddCookie(&http.Cookie{Name: "sb-test-code-verifier", Value: "x"})
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.False(t, view.ran)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?redirectTo=%2Fprofile%3Ftab%3Dbookings", w.Header().Get("Location"))

	cookies := w.Header().Values("Set-Cookie")
	for _, name := range []string{"sb-test-auth-token", "sb-test-refresh-token", "sb-test-code-verifier"} {
		header := cookieHeader(cookies, name)
		require.NotEmpty(t, header, name)
		assert.Contains(t, header, "Max-Age=0")
	}
	assert.Empty(t, cookieHeader(cookies, "theme"))
}

func TestAPIRefreshFailureContinuesAnonymously(t *testing.T) {
	refresher := &fakeRefresher{err: apperrors.ErrSessionInvalid}
	r, view := newSessionRouter(refresher)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withSessionCookies(httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, view.ran)
	assert.Nil(t, view.identity)
	assert.Contains(t, cookieHeader(w.Header().Values("Set-Cookie"), "sb-test-auth-token"), "Max-Age=0")
}

func TestAPIBearerTokenFallback(t *testing.T) {
	refresher := &fakeRefresher{session: &auth.Session{Identity: &auth.Identity{UserID: uuid.New()}}}
	r, _ := newSessionRouter(refresher)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, refresher.calls, 1)
	assert.Equal(t, "header-token", refresher.calls[0].access)
}

func TestPublicPathMatching(t *testing.T) {
	m := NewSessionMiddleware(&fakeRefresher{}, SessionConfig{}, zerolog.Nop())

	assert.True(t, m.isPublic("/"))
	assert.True(t, m.isPublic("/auth/callback"))
	assert.True(t, m.isPublic("/api/v1/courses/today"))
	assert.False(t, m.isPublic("/coursesx"))
	assert.False(t, m.isPublic("/profile"))
	assert.False(t, m.isPublic("/admin/scanner"))
}
