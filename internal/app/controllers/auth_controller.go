package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/dancestudio/internal/app/models/dto"
	"github.com/yigit/dancestudio/internal/app/services"
	"github.com/yigit/dancestudio/internal/middleware"
	"github.com/yigit/dancestudio/internal/pkg/apperrors"
	"github.com/yigit/dancestudio/internal/pkg/auth"
)

// IdentityProvider is the auth surface of the service layer
type IdentityProvider interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshSession(ctx context.Context, accessToken, refreshToken string) (*auth.Session, error)
	RequestMagicLink(ctx context.Context, email string) error
	RequestPasswordRecovery(ctx context.Context, email string) error
	ExchangeCode(ctx context.Context, code string) (*auth.Session, error)
	VerifyOTP(ctx context.Context, tokenHash, otpType string) (*auth.Session, error)
}

// AuthController handles sign-up, sign-in and the email link callback
type AuthController struct {
	auth      IdentityProvider
	cookies   middleware.SessionCookies
	errorPath string
	now       func() time.Time
	logger    zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(provider IdentityProvider, cookies middleware.SessionCookies, errorPath string, logger zerolog.Logger) *AuthController {
	if errorPath == "" {
		errorPath = "/auth/auth-code-error"
	}
	return &AuthController{
		auth:      provider,
		cookies:   cookies,
		errorPath: errorPath,
		now:       time.Now,
		logger:    logger,
	}
}

// Register handles POST /api/v1/auth/register
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.auth.Register(ctx.Request.Context(), req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Registration failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(resp))
}

// Login handles POST /api/v1/auth/login
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	session, err := c.auth.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.respondWithSession(ctx, session)
}

// RefreshToken handles POST /api/v1/auth/refresh for clients that keep the
// refresh token themselves; browsers are refreshed by the session middleware
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		_, req.RefreshToken = c.cookies.Read(ctx)
	}

	session, err := c.auth.RefreshSession(ctx.Request.Context(), "", req.RefreshToken)
	if err != nil {
		c.cookies.ClearAll(ctx)
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.respondWithSession(ctx, session)
}

// Logout handles POST /api/v1/auth/logout
func (c *AuthController) Logout(ctx *gin.Context) {
	_, refresh := c.cookies.Read(ctx)
	if refresh == "" {
		var req dto.RefreshTokenRequest
		if err := ctx.ShouldBindJSON(&req); err == nil {
			refresh = req.RefreshToken
		}
	}

	if err := c.auth.Logout(ctx.Request.Context(), refresh); err != nil {
		c.logger.Error().Err(err).Msg("Failed to revoke refresh token")
	}

	c.cookies.ClearAll(ctx)
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Signed out"}))
}

// RequestMagicLink handles POST /api/v1/auth/magic-link
func (c *AuthController) RequestMagicLink(ctx *gin.Context) {
	var req dto.MagicLinkRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.auth.RequestMagicLink(ctx.Request.Context(), req.Email); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{
		Message: "If the address is registered, a sign-in link is on its way",
	}))
}

// RequestPasswordRecovery handles POST /api/v1/auth/recover
func (c *AuthController) RequestPasswordRecovery(ctx *gin.Context) {
	var req dto.PasswordRecoveryRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.auth.RequestPasswordRecovery(ctx.Request.Context(), req.Email); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{
		Message: "If the address is registered, a reset link is on its way",
	}))
}

// Callback handles GET /auth/callback, the target of every emailed link.
// It establishes the session and redirects to `next`, or to the error page.
func (c *AuthController) Callback(ctx *gin.Context) {
	var (
		session *auth.Session
		err     error
		next    = "/"
	)

	code := ctx.Query("code")
	tokenHash, otpType := ctx.Query("token_hash"), ctx.Query("type")

	switch {
	case code != "":
		session, err = c.auth.ExchangeCode(ctx.Request.Context(), code)
	case tokenHash != "" && otpType != "":
		if otpType == services.OTPRecovery {
			next = "/reset-password"
		}
		session, err = c.auth.VerifyOTP(ctx.Request.Context(), tokenHash, otpType)
	default:
		err = apperrors.ErrInvalidOneTimeToken
	}

	if err != nil {
		c.logger.Info().Err(err).Str("type", otpType).Msg("Auth callback rejected")
		ctx.Redirect(http.StatusFound, c.errorPath)
		return
	}

	c.cookies.Write(ctx, session.Tokens, c.now())
	ctx.Redirect(http.StatusFound, safeRedirectPath(ctx.Query("next"), next))
}

func (c *AuthController) respondWithSession(ctx *gin.Context, session *auth.Session) {
	c.cookies.Write(ctx, session.Tokens, c.now())
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.AuthResponse{
		Token: dto.NewTokenResponse(session.Tokens, c.now()),
		User:  session.Identity,
	}))
}

// safeRedirectPath accepts only same-origin absolute paths
func safeRedirectPath(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
		return fallback
	}
	return next
}
