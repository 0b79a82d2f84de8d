package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/dancestudio/internal/app/models"
	"github.com/yigit/dancestudio/internal/app/models/dto"
	"github.com/yigit/dancestudio/internal/db"
	"github.com/yigit/dancestudio/internal/pkg/apperrors"
	"github.com/yigit/dancestudio/internal/pkg/auth"
)

type actionOutcome interface {
	Outcome() *dto.ActionResult
}

// callProcedure invokes one remote procedure and decodes its result into T.
// Every failure is folded into a failed T whose message is the remote
// rejection text or fallback; nothing is retried.
func callProcedure[T any, PT interface {
	*T
	actionOutcome
}](ctx context.Context, invoker db.Invoker, logger zerolog.Logger, procedure string, args db.Args, fallback string) T {
	var result T
	err := invoker.Invoke(ctx, procedure, args, PT(&result))
	if err != nil {
		if apperrors.IsRemoteRejection(err) {
			logger.Info().Err(err).Str("procedure", procedure).Msg("Action rejected")
		} else {
			logger.Error().Err(err).Str("procedure", procedure).Msg("Action failed")
		}

		var failed T
		*PT(&failed).Outcome() = dto.Failed(apperrors.Normalize(err, fallback))
		return failed
	}

	PT(&result).Outcome().Settle(fallback)
	return result
}

// adminGuard admits signed-in callers whose stored role is admin
type adminGuard struct {
	roles  RoleReader
	logger zerolog.Logger
}

// authorize returns ok, or the failed result to hand back to the caller
func (g adminGuard) authorize(ctx context.Context, caller *auth.Identity, fallback string) (dto.ActionResult, bool) {
	if caller == nil {
		return dto.Failed(MsgNotAuthenticated), false
	}

	role, err := g.roles.GetRole(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return dto.Failed(MsgAdminRequired), false
		}
		g.logger.Error().Err(err).Str("userID", caller.UserID.String()).Msg("Failed to look up caller role")
		return dto.Failed(fallback), false
	}

	if role != models.RoleAdmin {
		return dto.Failed(MsgAdminRequired), false
	}
	return dto.ActionResult{}, true
}

// require is the error-returning form of authorize used by admin reads
func (g adminGuard) require(ctx context.Context, caller *auth.Identity) error {
	if caller == nil {
		return apperrors.NewNotAuthenticatedError(MsgNotAuthenticated)
	}

	role, err := g.roles.GetRole(ctx, caller.UserID)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return fmt.Errorf("failed to verify admin privileges: %w", err)
	}
	if role != models.RoleAdmin {
		return apperrors.NewForbiddenError(MsgAdminRequired)
	}
	return nil
}
