package services

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/dancestudio/internal/app/repositories"
	"github.com/yigit/dancestudio/internal/db"
	"github.com/yigit/dancestudio/internal/pkg/auth"
	"github.com/yigit/dancestudio/internal/pkg/email"
	"github.com/yigit/dancestudio/internal/pkg/viewcache"
)

// Services groups the application services built at startup
type Services struct {
	Auth    *AuthService
	Booking *BookingService
	Course  *CourseService
	Admin   *AdminService
	Profile *ProfileService
}

// Options carries the shared infrastructure every service is built from
type Options struct {
	Invoker   db.Invoker
	Repos     *repositories.Repositories
	Views     *viewcache.Cache
	JWT       *auth.JWTService
	Mailer    email.EmailService
	PublicURL string
	Location  *time.Location
	Logger    zerolog.Logger
}

// NewServices wires every service against one database invoker and one view cache
func NewServices(opts Options) *Services {
	repos := opts.Repos
	named := func(name string) zerolog.Logger {
		return opts.Logger.With().Str("service", name).Logger()
	}

	return &Services{
		Auth: NewAuthService(
			repos.AuthUserRepository,
			repos.TokenRepository,
			repos.OneTimeTokenRepository,
			opts.JWT,
			opts.Mailer,
			opts.PublicURL,
			named("auth"),
		),
		Booking: NewBookingService(
			opts.Invoker,
			repos.CourseRepository,
			repos.BookingRepository,
			repos.ProfileRepository,
			opts.Views,
			opts.Location,
			named("booking"),
		),
		Course: NewCourseService(
			opts.Invoker,
			repos.CourseRepository,
			repos.ProfileRepository,
			opts.Views,
			opts.Location,
			named("course"),
		),
		Admin: NewAdminService(
			opts.Invoker,
			repos.ProfileRepository,
			repos.VerificationRepository,
			repos.CheckinRepository,
			repos.ProfileRepository,
			opts.Views,
			named("admin"),
		),
		Profile: NewProfileService(
			opts.Invoker,
			repos.ProfileRepository,
			repos.SubscriptionRepository,
			repos.BookingRepository,
			opts.Views,
			opts.Location,
			named("profile"),
		),
	}
}
