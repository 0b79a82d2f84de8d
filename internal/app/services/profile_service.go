package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/dancestudio/internal/app/models/dto"
	"github.com/yigit/dancestudio/internal/db"
	"github.com/yigit/dancestudio/internal/pkg/apperrors"
	"github.com/yigit/dancestudio/internal/pkg/auth"
	"github.com/yigit/dancestudio/internal/pkg/viewcache"
)

// ProfileService serves a member's own profile page
type ProfileService struct {
	invoker       db.Invoker
	profiles      ProfileGetter
	subscriptions SubscriptionLister
	bookings      UpcomingBookingLister
	views         *viewcache.Cache
	location      *time.Location
	now           func() time.Time
	logger        zerolog.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(
	invoker db.Invoker,
	profiles ProfileGetter,
	subscriptions SubscriptionLister,
	bookings UpcomingBookingLister,
	views *viewcache.Cache,
	location *time.Location,
	logger zerolog.Logger,
) *ProfileService {
	if location == nil {
		location = time.UTC
	}
	return &ProfileService{
		invoker:       invoker,
		profiles:      profiles,
		subscriptions: subscriptions,
		bookings:      bookings,
		views:         views,
		location:      location,
		now:           time.Now,
		logger:        logger,
	}
}

// GetProfile returns the caller's profile, active passes and upcoming bookings
// through the /profile view cache, keyed by member
func (s *ProfileService) GetProfile(ctx context.Context, caller *auth.Identity) (*dto.ProfileResponse, error) {
	if caller == nil {
		return nil, apperrors.NewNotAuthenticatedError(MsgNotAuthenticated)
	}

	return viewcache.Fetch(ctx, s.views, viewcache.PathProfile, caller.UserID.String(), func(ctx context.Context) (*dto.ProfileResponse, error) {
		return s.loadProfile(ctx, caller)
	})
}

func (s *ProfileService) loadProfile(ctx context.Context, caller *auth.Identity) (*dto.ProfileResponse, error) {
	profile, err := s.profiles.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewResourceNotFoundError("Profile not found")
		}
		return nil, err
	}

	subscriptions, err := s.subscriptions.ListActiveByUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	balances := make([]dto.SubscriptionBalance, 0, len(subscriptions))
	for _, sub := range subscriptions {
		balance := dto.SubscriptionBalance{Subscription: sub, Unlimited: sub.Type.Unlimited()}
		if balance.Unlimited {
			balance.RemainingCredits = nil
		}
		balances = append(balances, balance)
	}

	upcoming, err := s.bookings.ListUpcomingByUser(ctx, caller.UserID, s.now().In(s.location))
	if err != nil {
		return nil, err
	}

	return &dto.ProfileResponse{
		Profile:          profile,
		Subscriptions:    balances,
		UpcomingBookings: upcoming,
	}, nil
}

// SubmitVerification asks staff to verify the caller's account
func (s *ProfileService) SubmitVerification(ctx context.Context, caller *auth.Identity, kind, note string) dto.ActionResult {
	if caller == nil {
		return dto.Failed(MsgNotAuthenticated)
	}

	var memberNote *string
	if trimmed := strings.TrimSpace(note); trimmed != "" {
		memberNote = &trimmed
	}

	result := callProcedure[dto.ActionResult](ctx, s.invoker, s.logger, db.ProcSubmitVerification, db.Args{
		{Name: "user_id", Value: caller.UserID},
		{Name: "kind", Value: strings.TrimSpace(kind)},
		{Name: "note", Value: memberNote},
	}, MsgVerificationFailed)

	if result.Success {
		s.views.Invalidate(ctx, viewcache.PathProfile, viewcache.PathAdminReviews)
	}
	return result
}
