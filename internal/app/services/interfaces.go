package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/dancestudio/internal/app/models"
	"github.com/yigit/dancestudio/internal/app/repositories"
)

// Invalidator marks cached views stale. It never fails the caller.
type Invalidator interface {
	Invalidate(ctx context.Context, paths ...string)
}

// RoleReader resolves the stored role of a user
type RoleReader interface {
	GetRole(ctx context.Context, userID uuid.UUID) (models.Role, error)
}

// TodaysCourseFinder finds the scheduled course of a calendar day
type TodaysCourseFinder interface {
	GetScheduledOn(ctx context.Context, day time.Time) (*models.Course, error)
}

// BookingChecker checks for a confirmed booking
type BookingChecker interface {
	HasConfirmed(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
}

// CourseReader is the read side of the course catalogue
type CourseReader interface {
	List(ctx context.Context, filter repositories.CourseFilter) ([]models.Course, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	ListInstructors(ctx context.Context) ([]models.InstructorSummary, error)
}

// ProfileLister pages through member profiles
type ProfileLister interface {
	List(ctx context.Context, search string, limit, offset int) ([]models.Profile, int64, error)
}

// ProfileGetter loads one profile
type ProfileGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// VerificationLister lists verification requests awaiting review
type VerificationLister interface {
	ListPending(ctx context.Context) ([]models.VerificationRequest, error)
}

// CheckinLister lists attendance for a course
type CheckinLister interface {
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]models.Checkin, error)
}

// SubscriptionLister lists a member's active passes
type SubscriptionLister interface {
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error)
}

// UpcomingBookingLister lists a member's confirmed bookings from a date on
type UpcomingBookingLister interface {
	ListUpcomingByUser(ctx context.Context, userID uuid.UUID, from time.Time) ([]models.Booking, error)
}

// AuthUserStore persists identity provider accounts
type AuthUserStore interface {
	Create(ctx context.Context, email, passwordHash string, metadata map[string]any) (*models.AuthUser, error)
	GetByEmail(ctx context.Context, email string) (*models.AuthUser, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.AuthUser, error)
	ConfirmEmail(ctx context.Context, id uuid.UUID, at time.Time) error
	TouchLastSignIn(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// RefreshTokenStore persists refresh tokens
type RefreshTokenStore interface {
	CreateToken(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error
	RotateToken(ctx context.Context, oldToken, newToken string, expiresAt time.Time, reuseWindow time.Duration) (*repositories.RefreshRotation, error)
	RevokeToken(ctx context.Context, token string) error
}

// OneTimeTokenStore persists email link tokens
type OneTimeTokenStore interface {
	CreateToken(ctx context.Context, tokenHash string, userID uuid.UUID, tokenType string, expiresAt time.Time) error
	ConsumeToken(ctx context.Context, tokenHash string, tokenTypes ...string) (uuid.UUID, error)
	DeleteTokensByUserID(ctx context.Context, userID uuid.UUID, tokenType string) error
}
