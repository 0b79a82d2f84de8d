package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/yigit/dancestudio/internal/app/models"
	"github.com/yigit/dancestudio/internal/pkg/auth"
)

type staticRoles struct {
	role models.Role
	err  error
}

func (s staticRoles) GetRole(context.Context, uuid.UUID) (models.Role, error) {
	return s.role, s.err
}

func serveAdmin(roles RoleReader, identity *auth.Identity) int {
	r := gin.New()
	r.GET("/admin", func(c *gin.Context) {
		if identity != nil {
			auth.SetIdentity(c, identity)
		}
		c.Next()
	}, AdminRequired(roles), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	return w.Code
}

func TestAdminRequired(t *testing.T) {
	caller := &auth.Identity{UserID: uuid.New()}

	assert.Equal(t, http.StatusUnauthorized, serveAdmin(staticRoles{role: models.RoleAdmin}, nil))
	assert.Equal(t, http.StatusForbidden, serveAdmin(staticRoles{role: models.RoleMember}, caller))
	assert.Equal(t, http.StatusInternalServerError, serveAdmin(staticRoles{err: errors.New("db down")}, caller))
	assert.Equal(t, http.StatusNoContent, serveAdmin(staticRoles{role: models.RoleAdmin}, caller))
}
