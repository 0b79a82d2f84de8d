package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/dancestudio/internal/app/models"
	"github.com/yigit/dancestudio/internal/app/models/dto"
	"github.com/yigit/dancestudio/internal/middleware"
	"github.com/yigit/dancestudio/internal/pkg/auth"
)

// CourseCatalogue is the course surface of the service layer
type CourseCatalogue interface {
	ListCourses(ctx context.Context, query dto.CourseListQuery) ([]models.Course, error)
	GetCourse(ctx context.Context, id uuid.UUID) (*models.Course, error)
	ListInstructors(ctx context.Context) ([]models.InstructorSummary, error)
	ScheduleCourse(ctx context.Context, caller *auth.Identity, input dto.ScheduleCourseRequest) dto.CreateCourseResult
	UpdateCourseStatus(ctx context.Context, caller *auth.Identity, courseID uuid.UUID, status models.CourseStatus) dto.ActionResult
}

// CourseController handles the public catalogue and admin scheduling
type CourseController struct {
	courses CourseCatalogue
	logger  zerolog.Logger
}

// NewCourseController creates a new CourseController
func NewCourseController(courses CourseCatalogue, logger zerolog.Logger) *CourseController {
	return &CourseController{
		courses: courses,
		logger:  logger,
	}
}

// ListCourses handles GET /api/v1/courses
func (c *CourseController) ListCourses(ctx *gin.Context) {
	var query dto.CourseListQuery
	if !middleware.BindQuery(ctx, &query) {
		return
	}

	courses, err := c.courses.ListCourses(ctx.Request.Context(), query)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to list courses")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(courses))
}

// GetCourse handles GET /api/v1/courses/:courseId
func (c *CourseController) GetCourse(ctx *gin.Context) {
	courseID, ok := parseUUIDParam(ctx, "courseId")
	if !ok {
		return
	}

	course, err := c.courses.GetCourse(ctx.Request.Context(), courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(course))
}

// ListInstructors handles GET /api/v1/courses/instructors
func (c *CourseController) ListInstructors(ctx *gin.Context) {
	instructors, err := c.courses.ListInstructors(ctx.Request.Context())
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to list instructors")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(instructors))
}

// ScheduleCourse handles POST /api/v1/admin/courses
func (c *CourseController) ScheduleCourse(ctx *gin.Context) {
	var req dto.ScheduleCourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result := c.courses.ScheduleCourse(ctx.Request.Context(), auth.IdentityFrom(ctx), req)
	ctx.JSON(http.StatusOK, result)
}

// UpdateCourseStatus handles PATCH /api/v1/admin/courses/:courseId/status
func (c *CourseController) UpdateCourseStatus(ctx *gin.Context) {
	courseID, ok := parseUUIDParam(ctx, "courseId")
	if !ok {
		return
	}

	var req dto.UpdateCourseStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result := c.courses.UpdateCourseStatus(ctx.Request.Context(), auth.IdentityFrom(ctx), courseID, models.CourseStatus(req.Status))
	ctx.JSON(http.StatusOK, result)
}
