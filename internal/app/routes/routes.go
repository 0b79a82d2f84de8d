package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/dancestudio/internal/app/controllers"
	"github.com/yigit/dancestudio/internal/middleware"
	"github.com/yigit/dancestudio/internal/pkg/websocket"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Auth    *controllers.AuthController
	Booking *controllers.BookingController
	Course  *controllers.CourseController
	Profile *controllers.ProfileController
	Admin   *controllers.AdminController
	Feed    *websocket.Handler
	Roles   middleware.RoleReader
}

// SetupRouter configures all application routes.
// Session handling is global; role checks happen in the services so that
// actions can answer with their typed result.
func SetupRouter(router *gin.Engine, h Handlers) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Target of every emailed link
	router.GET("/auth/callback", h.Auth.Callback)

	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/logout", h.Auth.Logout)
		authGroup.POST("/refresh", h.Auth.RefreshToken)
		authGroup.POST("/magic-link", h.Auth.RequestMagicLink)
		authGroup.POST("/recover", h.Auth.RequestPasswordRecovery)
	}

	// --- Public course reads ---
	courses := v1.Group("/courses")
	{
		courses.GET("", h.Course.ListCourses)
		courses.GET("/today", h.Booking.TodaysCourse)
		courses.GET("/instructors", h.Course.ListInstructors)
		courses.GET("/:courseId", h.Course.GetCourse)
	}

	// --- Member routes ---
	bookings := v1.Group("/bookings")
	{
		bookings.POST("", h.Booking.BookCourse)
		bookings.GET("/status", h.Booking.BookingStatus)
		bookings.DELETE("/:bookingId", h.Booking.CancelBooking)
	}

	profile := v1.Group("/profile")
	{
		profile.GET("", h.Profile.GetProfile)
		profile.POST("/verification", h.Profile.SubmitVerification)
		profile.PUT("/password", h.Profile.UpdatePassword)
	}

	// --- Admin routes ---
	admin := v1.Group("/admin")
	{
		admin.POST("/courses", h.Course.ScheduleCourse)
		admin.PATCH("/courses/:courseId/status", h.Course.UpdateCourseStatus)
		admin.GET("/courses/:courseId/checkins", h.Admin.ListCheckins)
		admin.POST("/checkins", h.Booking.Checkin)

		admin.GET("/users", h.Admin.ListUsers)
		admin.PUT("/users/:userId/role", h.Admin.SetUserRole)

		admin.GET("/verifications", h.Admin.ListPendingVerifications)
		admin.POST("/verifications/:verificationId/review", h.Admin.ReviewVerification)

		admin.GET("/ws", middleware.AdminRequired(h.Roles), h.Feed.HandleConnection)
	}
}
