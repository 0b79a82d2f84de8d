package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	CourseRepository       *CourseRepository
	BookingRepository      *BookingRepository
	SubscriptionRepository *SubscriptionRepository
	CheckinRepository      *CheckinRepository
	ProfileRepository      *ProfileRepository
	VerificationRepository *VerificationRepository
	AuthUserRepository     *AuthUserRepository
	TokenRepository        *TokenRepository
	OneTimeTokenRepository *OneTimeTokenRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		CourseRepository:       NewCourseRepository(db),
		BookingRepository:      NewBookingRepository(db),
		SubscriptionRepository: NewSubscriptionRepository(db),
		CheckinRepository:      NewCheckinRepository(db),
		ProfileRepository:      NewProfileRepository(db),
		VerificationRepository: NewVerificationRepository(db),
		AuthUserRepository:     NewAuthUserRepository(db),
		TokenRepository:        NewTokenRepository(db),
		OneTimeTokenRepository: NewOneTimeTokenRepository(db),
	}
}
