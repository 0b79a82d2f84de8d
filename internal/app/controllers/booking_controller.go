package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/dancestudio/internal/app/models"
	"github.com/yigit/dancestudio/internal/app/models/dto"
	"github.com/yigit/dancestudio/internal/app/services"
	"github.com/yigit/dancestudio/internal/middleware"
	"github.com/yigit/dancestudio/internal/pkg/auth"
)

// BookingActions is the booking surface of the service layer
type BookingActions interface {
	BookCourse(ctx context.Context, caller *auth.Identity, courseID uuid.UUID) dto.BookCourseResult
	CancelBooking(ctx context.Context, caller *auth.Identity, bookingID uuid.UUID) dto.ActionResult
	PerformCourseCheckin(ctx context.Context, caller *auth.Identity, userID, courseID uuid.UUID, isDropIn bool) dto.CheckinResult
	GetTodaysCourse(ctx context.Context) (*models.Course, services.ReadStatus)
	HasBookingForCourse(ctx context.Context, userID, courseID uuid.UUID) (bool, services.ReadStatus)
}

// BookingController handles member bookings and the admin scanner check-in.
// Action endpoints always answer 200 with the action result.
type BookingController struct {
	bookings BookingActions
	logger   zerolog.Logger
}

// NewBookingController creates a new BookingController
func NewBookingController(bookings BookingActions, logger zerolog.Logger) *BookingController {
	return &BookingController{
		bookings: bookings,
		logger:   logger,
	}
}

// BookCourse handles POST /api/v1/bookings
func (c *BookingController) BookCourse(ctx *gin.Context) {
	var req dto.BookCourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result := c.bookings.BookCourse(ctx.Request.Context(), auth.IdentityFrom(ctx), req.CourseID)
	ctx.JSON(http.StatusOK, result)
}

// CancelBooking handles DELETE /api/v1/bookings/:bookingId
func (c *BookingController) CancelBooking(ctx *gin.Context) {
	bookingID, ok := parseUUIDParam(ctx, "bookingId")
	if !ok {
		return
	}

	result := c.bookings.CancelBooking(ctx.Request.Context(), auth.IdentityFrom(ctx), bookingID)
	ctx.JSON(http.StatusOK, result)
}

// BookingStatus handles GET /api/v1/bookings/status?courseId=
func (c *BookingController) BookingStatus(ctx *gin.Context) {
	courseID, err := uuid.Parse(ctx.Query("courseId"))
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid courseId").WithField("courseId")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	identity := auth.IdentityFrom(ctx)
	if identity == nil {
		ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.BookingStatusResponse{Status: string(services.ReadEmpty)}))
		return
	}

	hasBooking, status := c.bookings.HasBookingForCourse(ctx.Request.Context(), identity.UserID, courseID)
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.BookingStatusResponse{
		HasBooking: hasBooking,
		Status:     string(status),
	}))
}

// TodaysCourse handles GET /api/v1/courses/today
func (c *BookingController) TodaysCourse(ctx *gin.Context) {
	course, status := c.bookings.GetTodaysCourse(ctx.Request.Context())
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.TodaysCourseResponse{
		Course: course,
		Status: string(status),
	}))
}

// Checkin handles POST /api/v1/admin/checkins, posted by the QR scanner
func (c *BookingController) Checkin(ctx *gin.Context) {
	var req dto.CheckinRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result := c.bookings.PerformCourseCheckin(ctx.Request.Context(), auth.IdentityFrom(ctx), req.UserID, req.CourseID, req.IsDropIn)
	if !result.Success {
		c.logger.Info().
			Str("userID", req.UserID.String()).
			Str("courseID", req.CourseID.String()).
			Str("reason", result.Message).
			Msg("Check-in refused")
	}
	ctx.JSON(http.StatusOK, result)
}
