package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/dancestudio/internal/app/models/dto"
	"github.com/yigit/dancestudio/internal/middleware"
	"github.com/yigit/dancestudio/internal/pkg/auth"
)

// MemberProfile is the profile surface of the service layer
type MemberProfile interface {
	GetProfile(ctx context.Context, caller *auth.Identity) (*dto.ProfileResponse, error)
	SubmitVerification(ctx context.Context, caller *auth.Identity, kind, note string) dto.ActionResult
}

// PasswordUpdater changes the signed-in member's password
type PasswordUpdater interface {
	UpdatePassword(ctx context.Context, caller *auth.Identity, password string) error
}

// ProfileController handles the member's own profile
type ProfileController struct {
	profiles  MemberProfile
	passwords PasswordUpdater
	logger    zerolog.Logger
}

// NewProfileController creates a new ProfileController
func NewProfileController(profiles MemberProfile, passwords PasswordUpdater, logger zerolog.Logger) *ProfileController {
	return &ProfileController{
		profiles:  profiles,
		passwords: passwords,
		logger:    logger,
	}
}

// GetProfile handles GET /api/v1/profile
func (c *ProfileController) GetProfile(ctx *gin.Context) {
	profile, err := c.profiles.GetProfile(ctx.Request.Context(), auth.IdentityFrom(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(profile))
}

// SubmitVerification handles POST /api/v1/profile/verification
func (c *ProfileController) SubmitVerification(ctx *gin.Context) {
	var req dto.SubmitVerificationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result := c.profiles.SubmitVerification(ctx.Request.Context(), auth.IdentityFrom(ctx), req.Kind, req.Note)
	ctx.JSON(http.StatusOK, result)
}

// UpdatePassword handles PUT /api/v1/profile/password
func (c *ProfileController) UpdatePassword(ctx *gin.Context) {
	var req dto.UpdatePasswordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.passwords.UpdatePassword(ctx.Request.Context(), auth.IdentityFrom(ctx), req.Password); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Password updated"}))
}
