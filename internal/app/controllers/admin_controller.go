package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/dancestudio/internal/app/models"
	"github.com/yigit/dancestudio/internal/app/models/dto"
	"github.com/yigit/dancestudio/internal/middleware"
	"github.com/yigit/dancestudio/internal/pkg/auth"
)

// AdminConsole is the admin surface of the service layer
type AdminConsole interface {
	ListUsers(ctx context.Context, caller *auth.Identity, query dto.UserListQuery) (*dto.UserListResponse, error)
	SetUserRole(ctx context.Context, caller *auth.Identity, userID uuid.UUID, role models.Role) dto.ActionResult
	ListPendingVerifications(ctx context.Context, caller *auth.Identity) ([]models.VerificationRequest, error)
	ReviewVerification(ctx context.Context, caller *auth.Identity, verificationID uuid.UUID, approve bool, note string) dto.ActionResult
	ListCheckins(ctx context.Context, caller *auth.Identity, courseID uuid.UUID) ([]models.Checkin, error)
}

// AdminController handles the admin console endpoints
type AdminController struct {
	admin  AdminConsole
	logger zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(admin AdminConsole, logger zerolog.Logger) *AdminController {
	return &AdminController{
		admin:  admin,
		logger: logger,
	}
}

// ListUsers handles GET /api/v1/admin/users
func (c *AdminController) ListUsers(ctx *gin.Context) {
	var query dto.UserListQuery
	if !middleware.BindQuery(ctx, &query) {
		return
	}

	resp, err := c.admin.ListUsers(ctx.Request.Context(), auth.IdentityFrom(ctx), query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:       resp.Users,
		Pagination: &resp.Pagination,
		Timestamp:  time.Now(),
	})
}

// SetUserRole handles PUT /api/v1/admin/users/:userId/role
func (c *AdminController) SetUserRole(ctx *gin.Context) {
	userID, ok := parseUUIDParam(ctx, "userId")
	if !ok {
		return
	}

	var req dto.SetUserRoleRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result := c.admin.SetUserRole(ctx.Request.Context(), auth.IdentityFrom(ctx), userID, models.Role(req.Role))
	ctx.JSON(http.StatusOK, result)
}

// ListPendingVerifications handles GET /api/v1/admin/verifications
func (c *AdminController) ListPendingVerifications(ctx *gin.Context) {
	pending, err := c.admin.ListPendingVerifications(ctx.Request.Context(), auth.IdentityFrom(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(pending))
}

// ReviewVerification handles POST /api/v1/admin/verifications/:verificationId/review
func (c *AdminController) ReviewVerification(ctx *gin.Context) {
	verificationID, ok := parseUUIDParam(ctx, "verificationId")
	if !ok {
		return
	}

	var req dto.ReviewVerificationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result := c.admin.ReviewVerification(ctx.Request.Context(), auth.IdentityFrom(ctx), verificationID, *req.Approve, req.Note)
	ctx.JSON(http.StatusOK, result)
}

// ListCheckins handles GET /api/v1/admin/courses/:courseId/checkins
func (c *AdminController) ListCheckins(ctx *gin.Context) {
	courseID, ok := parseUUIDParam(ctx, "courseId")
	if !ok {
		return
	}

	checkins, err := c.admin.ListCheckins(ctx.Request.Context(), auth.IdentityFrom(ctx), courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(checkins))
}
