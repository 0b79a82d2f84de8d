package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/dancestudio/internal/app/models"
	"github.com/yigit/dancestudio/internal/app/models/dto"
	"github.com/yigit/dancestudio/internal/db"
	"github.com/yigit/dancestudio/internal/pkg/auth"
	"github.com/yigit/dancestudio/internal/pkg/helpers"
	"github.com/yigit/dancestudio/internal/pkg/viewcache"
)

// AdminService backs the admin console: members, roles, verification review and attendance
type AdminService struct {
	invoker       db.Invoker
	profiles      ProfileLister
	verifications VerificationLister
	checkins      CheckinLister
	guard         adminGuard
	views         Invalidator
	logger        zerolog.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(
	invoker db.Invoker,
	profiles ProfileLister,
	verifications VerificationLister,
	checkins CheckinLister,
	roles RoleReader,
	views Invalidator,
	logger zerolog.Logger,
) *AdminService {
	return &AdminService{
		invoker:       invoker,
		profiles:      profiles,
		verifications: verifications,
		checkins:      checkins,
		guard:         adminGuard{roles: roles, logger: logger},
		views:         views,
		logger:        logger,
	}
}

// ListUsers returns one page of member profiles
func (s *AdminService) ListUsers(ctx context.Context, caller *auth.Identity, query dto.UserListQuery) (*dto.UserListResponse, error) {
	if err := s.guard.require(ctx, caller); err != nil {
		return nil, err
	}

	page, size := helpers.NormalizePage(query.Page, query.PageSize)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	users, total, err := s.profiles.List(ctx, strings.TrimSpace(query.Search), limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list users")
		return nil, err
	}

	return &dto.UserListResponse{
		Users:      users,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, nil
}

// SetUserRole changes a member's role. Admins cannot change their own role.
func (s *AdminService) SetUserRole(ctx context.Context, caller *auth.Identity, userID uuid.UUID, role models.Role) dto.ActionResult {
	if denied, ok := s.guard.authorize(ctx, caller, MsgRoleFailed); !ok {
		return denied
	}
	if userID == caller.UserID {
		return dto.Failed("You cannot change your own role")
	}
	if !role.IsValid() {
		return dto.Failed("Invalid role")
	}

	result := callProcedure[dto.ActionResult](ctx, s.invoker, s.logger, db.ProcSetUserRole, db.Args{
		{Name: "user_id", Value: userID},
		{Name: "role", Value: string(role)},
		{Name: "admin_id", Value: caller.UserID},
	}, MsgRoleFailed)

	if result.Success {
		s.views.Invalidate(ctx, viewcache.PathAdminUsers)
	}
	return result
}

// ListPendingVerifications returns requests waiting for review, oldest first
func (s *AdminService) ListPendingVerifications(ctx context.Context, caller *auth.Identity) ([]models.VerificationRequest, error) {
	if err := s.guard.require(ctx, caller); err != nil {
		return nil, err
	}
	return s.verifications.ListPending(ctx)
}

// ReviewVerification approves or rejects a verification request
func (s *AdminService) ReviewVerification(ctx context.Context, caller *auth.Identity, verificationID uuid.UUID, approve bool, note string) dto.ActionResult {
	if denied, ok := s.guard.authorize(ctx, caller, MsgReviewFailed); !ok {
		return denied
	}

	var reviewNote *string
	if trimmed := strings.TrimSpace(note); trimmed != "" {
		reviewNote = &trimmed
	}

	result := callProcedure[dto.ActionResult](ctx, s.invoker, s.logger, db.ProcReviewVerification, db.Args{
		{Name: "verification_id", Value: verificationID},
		{Name: "approved", Value: approve},
		{Name: "note", Value: reviewNote},
		{Name: "admin_id", Value: caller.UserID},
	}, MsgReviewFailed)

	if result.Success {
		s.views.Invalidate(ctx, viewcache.PathAdminReviews, viewcache.PathAdminUsers, viewcache.PathProfile)
	}
	return result
}

// ListCheckins returns the attendance of a course for the scanner view
func (s *AdminService) ListCheckins(ctx context.Context, caller *auth.Identity, courseID uuid.UUID) ([]models.Checkin, error) {
	if err := s.guard.require(ctx, caller); err != nil {
		return nil, err
	}
	return s.checkins.ListByCourse(ctx, courseID)
}
