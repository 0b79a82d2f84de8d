package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/dancestudio/internal/app/models"
	"github.com/yigit/dancestudio/internal/app/models/dto"
	"github.com/yigit/dancestudio/internal/pkg/apperrors"
	"github.com/yigit/dancestudio/internal/pkg/auth"
)

// RoleReader resolves the stored role of a user
type RoleReader interface {
	GetRole(ctx context.Context, userID uuid.UUID) (models.Role, error)
}

// AdminRequired admits only callers whose stored role is admin.
// The role is read on every request; the token carries no role claim.
func AdminRequired(roles RoleReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := auth.IdentityFrom(c)
		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Not authenticated")))
			return
		}

		role, err := roles.GetRole(c.Request.Context(), identity.UserID)
		if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
			HandleAPIError(c, err)
			c.Abort()
			return
		}
		if role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeForbidden, "Admin privileges required")))
			return
		}

		c.Next()
	}
}
