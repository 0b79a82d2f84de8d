package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/yigit/dancestudio/internal/app/models"
	"github.com/yigit/dancestudio/internal/app/models/dto"
	"github.com/yigit/dancestudio/internal/app/services"
	"github.com/yigit/dancestudio/internal/pkg/auth"
)

type stubBookings struct {
	caller *auth.Identity
	result dto.BookCourseResult
}

func (s *stubBookings) BookCourse(_ context.Context, caller *auth.Identity, _ uuid.UUID) dto.BookCourseResult {
	s.caller = caller
	if caller == nil {
		return dto.BookCourseResult{ActionResult: dto.Failed("Not authenticated")}
	}
	return s.result
}

func (s *stubBookings) CancelBooking(context.Context, *auth.Identity, uuid.UUID) dto.ActionResult {
	return dto.ActionResult{Success: true, Message: "Booking cancelled"}
}

func (s *stubBookings) PerformCourseCheckin(context.Context, *auth.Identity, uuid.UUID, uuid.UUID, bool) dto.CheckinResult {
	return dto.CheckinResult{ActionResult: dto.Failed("Course is at full capacity")}
}

func (s *stubBookings) GetTodaysCourse(context.Context) (*models.Course, services.ReadStatus) {
	return nil, services.ReadFailed
}

func (s *stubBookings) HasBookingForCourse(context.Context, uuid.UUID, uuid.UUID) (bool, services.ReadStatus) {
	return true, services.ReadFound
}

func bookingRouter(stub *stubBookings, identity *auth.Identity) *gin.Engine {
	c := NewBookingController(stub, zerolog.Nop())
	r := gin.New()
	r.Use(func(ctx *gin.Context) {
		if identity != nil {
			auth.SetIdentity(ctx, identity)
		}
	})
	r.POST("/api/v1/bookings", c.BookCourse)
	r.DELETE("/api/v1/bookings/:bookingId", c.CancelBooking)
	r.GET("/api/v1/bookings/status", c.BookingStatus)
	r.GET("/api/v1/courses/today", c.TodaysCourse)
	r.POST("/api/v1/admin/checkins", c.Checkin)
	return r
}

func serve(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestBookCourseAnonymousAnswersTypedResult(t *testing.T) {
	stub := &stubBookings{}

	w := serve(bookingRouter(stub, nil), http.MethodPost, "/api/v1/bookings", `{"courseId":"`+uuid.NewString()+`"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Not authenticated"}`, w.Body.String())
	assert.Nil(t, stub.caller)
}

func TestBookCoursePassesCaller(t *testing.T) {
	capacity := 9
	stub := &stubBookings{result: dto.BookCourseResult{
		ActionResult:    dto.ActionResult{Success: true, Message: "Booked"},
		CurrentCapacity: &capacity,
	}}
	caller := &auth.Identity{UserID: uuid.New()}

	w := serve(bookingRouter(stub, caller), http.MethodPost, "/api/v1/bookings", `{"courseId":"`+uuid.NewString()+`"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Booked","current_capacity":9}`, w.Body.String())
	assert.Equal(t, caller, stub.caller)
}

func TestBookCourseRejectsMissingCourse(t *testing.T) {
	w := serve(bookingRouter(&stubBookings{}, nil), http.MethodPost, "/api/v1/bookings", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VAL_001")
}

func TestCancelBookingValidatesID(t *testing.T) {
	w := serve(bookingRouter(&stubBookings{}, nil), http.MethodDelete, "/api/v1/bookings/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckinRefusalIsStillOK(t *testing.T) {
	body := `{"userId":"` + uuid.NewString() + `","courseId":"` + uuid.NewString() + `","isDropIn":true}`

	w := serve(bookingRouter(&stubBookings{}, &auth.Identity{UserID: uuid.New()}), http.MethodPost, "/api/v1/admin/checkins", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Course is at full capacity"}`, w.Body.String())
}

func TestLenientReadsReportStatus(t *testing.T) {
	r := bookingRouter(&stubBookings{}, nil)

	w := serve(r, http.MethodGet, "/api/v1/courses/today", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"failed"`)
	assert.Contains(t, w.Body.String(), `"course":null`)

	w = serve(r, http.MethodGet, "/api/v1/bookings/status?courseId="+uuid.NewString(), "")
	assert.Contains(t, w.Body.String(), `"hasBooking":false`)
	assert.Contains(t, w.Body.String(), `"status":"empty"`)
}
