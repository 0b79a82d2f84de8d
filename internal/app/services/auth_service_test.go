package services

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/dancestudio/internal/app/models"
	"github.com/yigit/dancestudio/internal/app/models/dto"
	"github.com/yigit/dancestudio/internal/app/repositories"
	"github.com/yigit/dancestudio/internal/pkg/apperrors"
	"github.com/yigit/dancestudio/internal/pkg/auth"
)

type memoryUsers struct {
	byID     map[uuid.UUID]*models.AuthUser
	metadata map[uuid.UUID]map[string]any
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: map[uuid.UUID]*models.AuthUser{}, metadata: map[uuid.UUID]map[string]any{}}
}

func (m *memoryUsers) Create(_ context.Context, email, hash string, metadata map[string]any) (*models.AuthUser, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return nil, apperrors.ErrEmailAlreadyExists
		}
	}
	u := &models.AuthUser{ID: uuid.New(), Email: email, PasswordHash: hash, IsActive: true, CreatedAt: time.Now()}
	m.byID[u.ID] = u
	m.metadata[u.ID] = metadata
	return u, nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*models.AuthUser, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *memoryUsers) GetByID(_ context.Context, id uuid.UUID) (*models.AuthUser, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *memoryUsers) ConfirmEmail(_ context.Context, id uuid.UUID, at time.Time) error {
	if u, ok := m.byID[id]; ok && u.EmailConfirmedAt == nil {
		u.EmailConfirmedAt = &at
	}
	return nil
}

func (m *memoryUsers) TouchLastSignIn(_ context.Context, id uuid.UUID, at time.Time) error {
	m.byID[id].LastSignInAt = &at
	return nil
}

func (m *memoryUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	m.byID[id].PasswordHash = hash
	return nil
}

type storedRefresh struct {
	userID     uuid.UUID
	revoked    bool
	revokedAt  time.Time
	replacedBy string
	expiresAt  time.Time
}

type memoryRefreshTokens struct {
	tokens map[string]*storedRefresh
}

func (m *memoryRefreshTokens) CreateToken(_ context.Context, token string, userID uuid.UUID, expiresAt time.Time) error {
	m.tokens[token] = &storedRefresh{userID: userID, expiresAt: expiresAt}
	return nil
}

func (m *memoryRefreshTokens) RotateToken(_ context.Context, oldToken, newToken string, expiresAt time.Time, reuseWindow time.Duration) (*repositories.RefreshRotation, error) {
	t, ok := m.tokens[oldToken]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	if t.revoked {
		next, ok := m.tokens[t.replacedBy]
		if t.replacedBy == "" || time.Since(t.revokedAt) > reuseWindow || !ok || next.revoked {
			return nil, apperrors.ErrTokenRevoked
		}
		return &repositories.RefreshRotation{UserID: t.userID, Token: t.replacedBy, ExpiresAt: next.expiresAt}, nil
	}
	t.revoked, t.revokedAt, t.replacedBy = true, time.Now(), newToken
	m.tokens[newToken] = &storedRefresh{userID: t.userID, expiresAt: expiresAt}
	return &repositories.RefreshRotation{UserID: t.userID, Token: newToken, ExpiresAt: expiresAt}, nil
}

func (m *memoryRefreshTokens) RevokeToken(_ context.Context, token string) error {
	t, ok := m.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.revoked, t.revokedAt = true, time.Now()
	return nil
}

type storedOneTime struct {
	userID    uuid.UUID
	tokenType string
	consumed  bool
}

type memoryOneTimeTokens struct {
	tokens map[string]*storedOneTime
}

func (m *memoryOneTimeTokens) CreateToken(_ context.Context, hash string, userID uuid.UUID, tokenType string, _ time.Time) error {
	m.tokens[hash] = &storedOneTime{userID: userID, tokenType: tokenType}
	return nil
}

func (m *memoryOneTimeTokens) ConsumeToken(_ context.Context, hash string, types ...string) (uuid.UUID, error) {
	t, ok := m.tokens[hash]
	if !ok || t.consumed || !slices.Contains(types, t.tokenType) {
		return uuid.Nil, apperrors.ErrInvalidOneTimeToken
	}
	t.consumed = true
	return t.userID, nil
}

func (m *memoryOneTimeTokens) DeleteTokensByUserID(_ context.Context, userID uuid.UUID, tokenType string) error {
	for hash, t := range m.tokens {
		if t.userID == userID && t.tokenType == tokenType && !t.consumed {
			delete(m.tokens, hash)
		}
	}
	return nil
}

type sentMail struct {
	kind string
	to   string
	link string
}

type recordingMailer struct {
	sent []sentMail
	err  error
}

func (r *recordingMailer) SendConfirmationEmail(to, _, link string) error {
	r.sent = append(r.sent, sentMail{"confirm", to, link})
	return r.err
}

func (r *recordingMailer) SendMagicLinkEmail(to, link string) error {
	r.sent = append(r.sent, sentMail{"magiclink", to, link})
	return r.err
}

func (r *recordingMailer) SendRecoveryEmail(to, link string) error {
	r.sent = append(r.sent, sentMail{"recovery", to, link})
	return r.err
}

type authFixture struct {
	svc     *AuthService
	users   *memoryUsers
	refresh *memoryRefreshTokens
	oneTime *memoryOneTimeTokens
	mailer  *recordingMailer
	jwt     *auth.JWTService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:   newMemoryUsers(),
		refresh: &memoryRefreshTokens{tokens: map[string]*storedRefresh{}},
		oneTime: &memoryOneTimeTokens{tokens: map[string]*storedOneTime{}},
		mailer:  &recordingMailer{},
		jwt: auth.NewJWTService(auth.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenExp:  time.Hour,
			RefreshTokenExp: 24 * time.Hour,
			TokenIssuer:     "dancestudio-test",
		}),
	}
	f.svc = NewAuthService(f.users, f.refresh, f.oneTime, f.jwt, f.mailer, "https://studio.test/", zerolog.Nop())
	return f
}

func (f *authFixture) confirmedUser(t *testing.T, email, password string) *models.AuthUser {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	user, err := f.users.Create(context.Background(), email, hash, nil)
	require.NoError(t, err)
	now := time.Now()
	user.EmailConfirmedAt = &now
	return user
}

func linkQuery(t *testing.T, link string) url.Values {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/auth/callback", u.Path)
	return u.Query()
}

func TestRegisterSendsSignupLink(t *testing.T) {
	f := newAuthFixture()
	phone := " 010-1234-5678 "

	resp, err := f.svc.Register(context.Background(), dto.RegisterRequest{
		Email: " Dancer@Studio.Test ", Password: "tango2025", FullName: "Dae Han", Phone: &phone,
	})

	require.NoError(t, err)
	assert.Equal(t, "dancer@studio.test", resp.User.Email)
	assert.Equal(t, "Dae Han", f.users.metadata[resp.User.UserID]["full_name"])
	assert.Equal(t, "010-1234-5678", f.users.metadata[resp.User.UserID]["phone"])

	require.Len(t, f.mailer.sent, 1)
	q := linkQuery(t, f.mailer.sent[0].link)
	assert.Equal(t, "signup", q.Get("type"))

	raw := q.Get("token_hash")
	require.NotEmpty(t, raw)
	_, storedRaw := f.oneTime.tokens[raw]
	assert.False(t, storedRaw)
	assert.Contains(t, f.oneTime.tokens, auth.HashOneTimeToken(raw))
}

func TestRegisterValidation(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.Register(context.Background(), dto.RegisterRequest{Email: "a@studio.test", Password: "onlyletters", FullName: "A"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.ErrorIs(t, err, ErrInvalidPassword)

	_, err = f.svc.Register(context.Background(), dto.RegisterRequest{Email: "not-an-email", Password: "abc12345", FullName: "A"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	phone := "call me"
	_, err = f.svc.Register(context.Background(), dto.RegisterRequest{Email: "p@studio.test", Password: "abc12345", FullName: "P", Phone: &phone})
	assert.ErrorIs(t, err, ErrInvalidPhone)
	assert.Empty(t, f.mailer.sent)
}

func TestRegisterSurvivesMailFailure(t *testing.T) {
	f := newAuthFixture()
	f.mailer.err = errors.New("smtp down")

	_, err := f.svc.Register(context.Background(), dto.RegisterRequest{Email: "b@studio.test", Password: "salsa1234", FullName: "B"})

	assert.NoError(t, err)
}

func TestLoginFailures(t *testing.T) {
	f := newAuthFixture()
	f.confirmedUser(t, "ok@studio.test", "waltz1234")
	hash, _ := auth.HashPassword("waltz1234")
	_, err := f.users.Create(context.Background(), "new@studio.test", hash, nil)
	require.NoError(t, err)
	disabled := f.confirmedUser(t, "off@studio.test", "waltz1234")
	disabled.IsActive = false

	_, err = f.svc.Login(context.Background(), "nobody@studio.test", "waltz1234")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), "ok@studio.test", "wrong1234")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), "new@studio.test", "waltz1234")
	assert.ErrorIs(t, err, apperrors.ErrEmailNotVerified)

	_, err = f.svc.Login(context.Background(), "off@studio.test", "waltz1234")
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestLoginStoresRefreshToken(t *testing.T) {
	f := newAuthFixture()
	user := f.confirmedUser(t, "ok@studio.test", "waltz1234")

	session, err := f.svc.Login(context.Background(), "OK@studio.test", "waltz1234")

	require.NoError(t, err)
	assert.Equal(t, user.ID, session.Identity.UserID)
	require.NotNil(t, session.Tokens)
	assert.Contains(t, f.refresh.tokens, session.Tokens.RefreshToken)
	assert.NotNil(t, user.LastSignInAt)
}

func TestRefreshSessionKeepsValidAccessToken(t *testing.T) {
	f := newAuthFixture()
	user := f.confirmedUser(t, "ok@studio.test", "waltz1234")
	pair, err := f.jwt.IssueTokenPair(auth.Identity{UserID: user.ID, Email: user.Email})
	require.NoError(t, err)

	session, err := f.svc.RefreshSession(context.Background(), pair.AccessToken, "")

	require.NoError(t, err)
	assert.Equal(t, user.ID, session.Identity.UserID)
	assert.Nil(t, session.Tokens)
}

func TestRefreshSessionRotatesRefreshToken(t *testing.T) {
	f := newAuthFixture()
	user := f.confirmedUser(t, "ok@studio.test", "waltz1234")
	require.NoError(t, f.refresh.CreateToken(context.Background(), "old-refresh", user.ID, time.Now().Add(time.Hour)))

	session, err := f.svc.RefreshSession(context.Background(), "expired.or.garbage", "old-refresh")

	require.NoError(t, err)
	require.NotNil(t, session.Tokens)
	assert.NotEqual(t, "old-refresh", session.Tokens.RefreshToken)
	assert.True(t, f.refresh.tokens["old-refresh"].revoked)

	identity, err := f.jwt.IdentityFromToken(session.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
}

func TestRefreshSessionParallelRequestsShareRotation(t *testing.T) {
	f := newAuthFixture()
	user := f.confirmedUser(t, "ok@studio.test", "waltz1234")
	require.NoError(t, f.refresh.CreateToken(context.Background(), "refresh-old", user.ID, time.Now().Add(time.Hour)))

	first, err := f.svc.RefreshSession(context.Background(), "expired", "refresh-old")
	require.NoError(t, err)
	second, err := f.svc.RefreshSession(context.Background(), "expired", "refresh-old")
	require.NoError(t, err)

	require.NotNil(t, second.Tokens)
	assert.Equal(t, first.Tokens.RefreshToken, second.Tokens.RefreshToken)
	assert.Equal(t, user.ID, second.Identity.UserID)
	assert.Len(t, f.refresh.tokens, 2)
}

func TestRefreshSessionRejectsStaleRotatedToken(t *testing.T) {
	f := newAuthFixture()
	user := f.confirmedUser(t, "ok@studio.test", "waltz1234")
	require.NoError(t, f.refresh.CreateToken(context.Background(), "refresh-old", user.ID, time.Now().Add(time.Hour)))

	_, err := f.svc.RefreshSession(context.Background(), "", "refresh-old")
	require.NoError(t, err)
	f.refresh.tokens["refresh-old"].revokedAt = time.Now().Add(-time.Minute)

	_, err = f.svc.RefreshSession(context.Background(), "", "refresh-old")
	assert.ErrorIs(t, err, apperrors.ErrSessionInvalid)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestRefreshSessionRejectsLoggedOutToken(t *testing.T) {
	f := newAuthFixture()
	user := f.confirmedUser(t, "ok@studio.test", "waltz1234")
	require.NoError(t, f.refresh.CreateToken(context.Background(), "refresh-old", user.ID, time.Now().Add(time.Hour)))
	require.NoError(t, f.svc.Logout(context.Background(), "refresh-old"))

	_, err := f.svc.RefreshSession(context.Background(), "", "refresh-old")
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestRefreshSessionWithoutTokens(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.RefreshSession(context.Background(), "", "")
	assert.ErrorIs(t, err, apperrors.ErrSessionInvalid)

	_, err = f.svc.RefreshSession(context.Background(), "", "unknown")
	assert.ErrorIs(t, err, apperrors.ErrSessionInvalid)
}

func TestRefreshSessionDisabledAccount(t *testing.T) {
	f := newAuthFixture()
	user := f.confirmedUser(t, "ok@studio.test", "waltz1234")
	user.IsActive = false
	require.NoError(t, f.refresh.CreateToken(context.Background(), "r1", user.ID, time.Now().Add(time.Hour)))

	_, err := f.svc.RefreshSession(context.Background(), "", "r1")

	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
	for _, tok := range f.refresh.tokens {
		assert.True(t, tok.revoked)
	}
}

func TestLogoutIgnoresUnknownToken(t *testing.T) {
	f := newAuthFixture()
	assert.NoError(t, f.svc.Logout(context.Background(), "never-issued"))
	assert.NoError(t, f.svc.Logout(context.Background(), ""))
}

func TestMagicLinkRoundTrip(t *testing.T) {
	f := newAuthFixture()
	hash, _ := auth.HashPassword("rumba1234")
	user, err := f.users.Create(context.Background(), "magic@studio.test", hash, nil)
	require.NoError(t, err)

	require.NoError(t, f.svc.RequestMagicLink(context.Background(), "magic@studio.test"))
	require.Len(t, f.mailer.sent, 1)
	code := linkQuery(t, f.mailer.sent[0].link).Get("code")
	require.NotEmpty(t, code)

	session, err := f.svc.ExchangeCode(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.Identity.UserID)
	assert.NotNil(t, user.EmailConfirmedAt)

	_, err = f.svc.ExchangeCode(context.Background(), code)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOneTimeToken)
}

func TestMagicLinkForUnknownEmailIsSilent(t *testing.T) {
	f := newAuthFixture()

	assert.NoError(t, f.svc.RequestMagicLink(context.Background(), "ghost@studio.test"))
	assert.NoError(t, f.svc.RequestPasswordRecovery(context.Background(), "ghost@studio.test"))
	assert.Empty(t, f.mailer.sent)
}

func TestVerifyOTP(t *testing.T) {
	f := newAuthFixture()
	_, err := f.svc.Register(context.Background(), dto.RegisterRequest{Email: "otp@studio.test", Password: "samba1234", FullName: "O"})
	require.NoError(t, err)
	token := linkQuery(t, f.mailer.sent[0].link).Get("token_hash")

	_, err = f.svc.VerifyOTP(context.Background(), token, "invite")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOneTimeToken)

	_, err = f.svc.VerifyOTP(context.Background(), token, OTPRecovery)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOneTimeToken)

	session, err := f.svc.VerifyOTP(context.Background(), token, OTPEmail)
	require.NoError(t, err)
	require.NotNil(t, session.Tokens)

	_, err = f.svc.Login(context.Background(), "otp@studio.test", "samba1234")
	assert.NoError(t, err)
}

func TestPasswordRecoveryAndUpdate(t *testing.T) {
	f := newAuthFixture()
	user := f.confirmedUser(t, "rec@studio.test", "bolero1234")

	require.NoError(t, f.svc.RequestPasswordRecovery(context.Background(), "rec@studio.test"))
	q := linkQuery(t, f.mailer.sent[0].link)
	assert.Equal(t, "recovery", q.Get("type"))

	session, err := f.svc.VerifyOTP(context.Background(), q.Get("token_hash"), OTPRecovery)
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdatePassword(context.Background(), session.Identity, "newpass99"))
	assert.True(t, auth.CheckPassword(user.PasswordHash, "newpass99"))

	err = f.svc.UpdatePassword(context.Background(), nil, "newpass99")
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
}
