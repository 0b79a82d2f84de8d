package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/dancestudio/internal/app/models"
	"github.com/yigit/dancestudio/internal/app/models/dto"
	"github.com/yigit/dancestudio/internal/pkg/apperrors"
	"github.com/yigit/dancestudio/internal/pkg/auth"
	"github.com/yigit/dancestudio/internal/pkg/email"
	"github.com/yigit/dancestudio/internal/pkg/validation"
)

// One-time token types, matching the `type` query parameter of email links
const (
	OTPSignup    = "signup"
	OTPEmail     = "email"
	OTPMagicLink = "magiclink"
	OTPRecovery  = "recovery"
)

const (
	signupTokenTTL    = 24 * time.Hour
	magicLinkTokenTTL = time.Hour
	recoveryTokenTTL  = time.Hour

	// requests sent in parallel with one refresh cookie all resolve to the
	// first rotation's token while it is this fresh
	refreshReuseWindow = 10 * time.Second
)

var (
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrInvalidPassword = errors.New("invalid password format")
	ErrInvalidPhone    = errors.New("invalid phone number")
)

// AuthService is the identity provider: accounts, sessions and email links
type AuthService struct {
	users     AuthUserStore
	refresh   RefreshTokenStore
	oneTime   OneTimeTokenStore
	jwt       *auth.JWTService
	mailer    email.EmailService
	publicURL string
	now       func() time.Time
	logger    zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users AuthUserStore,
	refresh RefreshTokenStore,
	oneTime OneTimeTokenStore,
	jwtService *auth.JWTService,
	mailer email.EmailService,
	publicURL string,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		refresh:   refresh,
		oneTime:   oneTime,
		jwt:       jwtService,
		mailer:    mailer,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
		logger:    logger,
	}
}

// validateEmail validates an email address
func (s *AuthService) validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email cannot be empty", apperrors.ErrValidationFailed)
	}
	if !validation.CompiledPatterns.Email.MatchString(email) {
		return fmt.Errorf("%w: %w", apperrors.ErrValidationFailed, ErrInvalidEmail)
	}
	return nil
}

// validatePassword checks if password meets requirements
func (s *AuthService) validatePassword(password string) error {
	if len(password) < validation.PasswordMinLength {
		return fmt.Errorf("%w: %w: password must be at least %d characters long", apperrors.ErrValidationFailed, ErrInvalidPassword, validation.PasswordMinLength)
	}
	if len(password) > validation.PasswordMaxLength {
		return fmt.Errorf("%w: %w: password must be at most %d bytes long", apperrors.ErrValidationFailed, ErrInvalidPassword, validation.PasswordMaxLength)
	}

	hasLetter, hasDigit := false, false
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	if !hasLetter {
		return fmt.Errorf("%w: %w: password must contain at least one letter", apperrors.ErrValidationFailed, ErrInvalidPassword)
	}
	if !hasDigit {
		return fmt.Errorf("%w: %w: password must contain at least one number", apperrors.ErrValidationFailed, ErrInvalidPassword)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an unconfirmed account and emails the confirmation link.
// The studio profile is created from the account metadata by the database.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	addr := normalizeEmail(req.Email)
	if err := s.validateEmail(addr); err != nil {
		return nil, err
	}
	if err := s.validatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	metadata := map[string]any{"full_name": strings.TrimSpace(req.FullName)}
	if req.Phone != nil && strings.TrimSpace(*req.Phone) != "" {
		phone := strings.TrimSpace(*req.Phone)
		if !validation.CompiledPatterns.Phone.MatchString(phone) {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrValidationFailed, ErrInvalidPhone)
		}
		metadata["phone"] = phone
	}

	user, err := s.users.Create(ctx, addr, hash, metadata)
	if err != nil {
		return nil, err
	}

	token, err := s.issueOneTimeToken(ctx, user.ID, OTPSignup, signupTokenTTL)
	if err != nil {
		return nil, err
	}

	link := s.callbackURL(url.Values{"token_hash": {token}, "type": {OTPSignup}})
	if err := s.mailer.SendConfirmationEmail(user.Email, strings.TrimSpace(req.FullName), link); err != nil {
		s.logger.Error().Err(err).Str("userID", user.ID.String()).Msg("Failed to send confirmation email")
	}

	s.logger.Info().Str("userID", user.ID.String()).Msg("Member registered")

	return &dto.RegisterResponse{
		User:    &auth.Identity{UserID: user.ID, Email: user.Email},
		Message: "Check your email to confirm your account",
	}, nil
}

// Login signs a member in with email and password
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (*auth.Session, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}
	if user.EmailConfirmedAt == nil {
		return nil, apperrors.ErrEmailNotVerified
	}

	return s.startSession(ctx, user)
}

// RefreshSession resolves the caller from the session cookies. A valid access
// token is used as is; otherwise the refresh token is rotated and a new pair
// is returned in Session.Tokens. Every failure wraps ErrSessionInvalid.
func (s *AuthService) RefreshSession(ctx context.Context, accessToken, refreshToken string) (*auth.Session, error) {
	if accessToken != "" {
		identity, err := s.jwt.IdentityFromToken(accessToken)
		if err == nil {
			return &auth.Session{Identity: identity}, nil
		}
	}

	if refreshToken == "" {
		return nil, apperrors.ErrSessionInvalid
	}

	rotation, err := s.refresh.RotateToken(ctx, refreshToken, auth.NewRefreshToken(), s.jwt.RefreshExpiry(), refreshReuseWindow)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrSessionInvalid, err)
	}
	userID := rotation.UserID

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrSessionInvalid, err)
	}
	if !user.IsActive {
		if err := s.refresh.RevokeToken(ctx, rotation.Token); err != nil {
			s.logger.Warn().Err(err).Str("userID", userID.String()).Msg("Failed to revoke token of disabled account")
		}
		return nil, fmt.Errorf("%w: %w", apperrors.ErrSessionInvalid, apperrors.ErrAccountDisabled)
	}

	identity := &auth.Identity{UserID: user.ID, Email: user.Email}
	accessToken, accessExpiry, err := s.jwt.IssueAccessToken(*identity)
	if err != nil {
		return nil, err
	}

	return &auth.Session{
		Identity: identity,
		Tokens: &auth.TokenPair{
			AccessToken:      accessToken,
			RefreshToken:     rotation.Token,
			AccessExpiresAt:  accessExpiry,
			RefreshExpiresAt: rotation.ExpiresAt,
		},
	}, nil
}

// Logout revokes the refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.refresh.RevokeToken(ctx, refreshToken); err != nil && !errors.Is(err, apperrors.ErrTokenNotFound) {
		return err
	}
	return nil
}

// RequestMagicLink emails a sign-in link. Unknown or disabled accounts get
// no email and no error, so the endpoint does not reveal who is registered.
func (s *AuthService) RequestMagicLink(ctx context.Context, emailAddr string) error {
	user, ok, err := s.lookupForLink(ctx, emailAddr)
	if err != nil || !ok {
		return err
	}

	if err := s.oneTime.DeleteTokensByUserID(ctx, user.ID, OTPMagicLink); err != nil {
		return err
	}
	code, err := s.issueOneTimeToken(ctx, user.ID, OTPMagicLink, magicLinkTokenTTL)
	if err != nil {
		return err
	}

	if err := s.mailer.SendMagicLinkEmail(user.Email, s.callbackURL(url.Values{"code": {code}})); err != nil {
		return fmt.Errorf("failed to send magic link: %w", err)
	}
	return nil
}

// RequestPasswordRecovery emails a password reset link, with the same
// silence for unknown accounts as RequestMagicLink
func (s *AuthService) RequestPasswordRecovery(ctx context.Context, emailAddr string) error {
	user, ok, err := s.lookupForLink(ctx, emailAddr)
	if err != nil || !ok {
		return err
	}

	if err := s.oneTime.DeleteTokensByUserID(ctx, user.ID, OTPRecovery); err != nil {
		return err
	}
	token, err := s.issueOneTimeToken(ctx, user.ID, OTPRecovery, recoveryTokenTTL)
	if err != nil {
		return err
	}

	link := s.callbackURL(url.Values{"token_hash": {token}, "type": {OTPRecovery}})
	if err := s.mailer.SendRecoveryEmail(user.Email, link); err != nil {
		return fmt.Errorf("failed to send recovery email: %w", err)
	}
	return nil
}

func (s *AuthService) lookupForLink(ctx context.Context, emailAddr string) (*models.AuthUser, bool, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Debug().Msg("Email link requested for unknown address")
			return nil, false, nil
		}
		return nil, false, err
	}
	if !user.IsActive {
		return nil, false, nil
	}
	return user, true, nil
}

// ExchangeCode turns a magic link code into a session
func (s *AuthService) ExchangeCode(ctx context.Context, code string) (*auth.Session, error) {
	if code == "" {
		return nil, apperrors.ErrInvalidOneTimeToken
	}
	userID, err := s.oneTime.ConsumeToken(ctx, auth.HashOneTimeToken(code), OTPMagicLink)
	if err != nil {
		return nil, err
	}
	return s.confirmAndStart(ctx, userID)
}

// VerifyOTP consumes a token_hash link of the given type and starts a session
func (s *AuthService) VerifyOTP(ctx context.Context, tokenHash, otpType string) (*auth.Session, error) {
	var stored string
	switch otpType {
	case OTPSignup, OTPEmail:
		stored = OTPSignup
	case OTPMagicLink, OTPRecovery:
		stored = otpType
	default:
		return nil, apperrors.ErrInvalidOneTimeToken
	}
	if tokenHash == "" {
		return nil, apperrors.ErrInvalidOneTimeToken
	}

	userID, err := s.oneTime.ConsumeToken(ctx, auth.HashOneTimeToken(tokenHash), stored)
	if err != nil {
		return nil, err
	}
	return s.confirmAndStart(ctx, userID)
}

// confirmAndStart marks the email confirmed, since following an emailed link proves ownership
func (s *AuthService) confirmAndStart(ctx context.Context, userID uuid.UUID) (*auth.Session, error) {
	if err := s.users.ConfirmEmail(ctx, userID, s.now()); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}
	return s.startSession(ctx, user)
}

// UpdatePassword sets a new password for the caller
func (s *AuthService) UpdatePassword(ctx context.Context, caller *auth.Identity, password string) error {
	if caller == nil {
		return apperrors.NewNotAuthenticatedError(MsgNotAuthenticated)
	}
	if err := s.validatePassword(password); err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, caller.UserID, hash)
}

func (s *AuthService) startSession(ctx context.Context, user *models.AuthUser) (*auth.Session, error) {
	identity := &auth.Identity{UserID: user.ID, Email: user.Email}

	pair, err := s.jwt.IssueTokenPair(*identity)
	if err != nil {
		return nil, err
	}
	if err := s.refresh.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	if err := s.users.TouchLastSignIn(ctx, user.ID, s.now()); err != nil {
		s.logger.Warn().Err(err).Str("userID", user.ID.String()).Msg("Failed to record sign-in time")
	}

	return &auth.Session{Identity: identity, Tokens: pair}, nil
}

// issueOneTimeToken stores the hash of a fresh token and returns the token itself
func (s *AuthService) issueOneTimeToken(ctx context.Context, userID uuid.UUID, tokenType string, ttl time.Duration) (string, error) {
	token, err := auth.NewOneTimeToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate %s token: %w", tokenType, err)
	}
	if err := s.oneTime.CreateToken(ctx, auth.HashOneTimeToken(token), userID, tokenType, s.now().Add(ttl)); err != nil {
		return "", err
	}
	return token, nil
}

func (s *AuthService) callbackURL(query url.Values) string {
	return s.publicURL + "/auth/callback?" + query.Encode()
}
