package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yigit/dancestudio/internal/pkg/apperrors"
)

// AudienceAuthenticated is the audience stamped on every access token
const AudienceAuthenticated = "authenticated"

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey       string
	AccessTokenExp  time.Duration
	RefreshTokenExp time.Duration
	TokenIssuer     string
}

// JWTService signs and verifies session access tokens
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{
		config: config,
		now:    time.Now,
	}
}

// Identity is the authenticated caller resolved from a session
type Identity struct {
	UserID uuid.UUID `json:"id"`
	Email  string    `json:"email"`
}

// Claims defines JWT token content
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenPair is an access token plus the opaque refresh token that can renew it
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Session is the result of a sign-in or a session check.
// Tokens is nil when the presented access token was still valid.
type Session struct {
	Identity *Identity
	Tokens   *TokenPair
}

// IssueAccessToken signs a short-lived access token for identity
func (s *JWTService) IssueAccessToken(identity Identity) (string, time.Time, error) {
	now := s.now()
	expiry := now.Add(s.config.AccessTokenExp)

	claims := &Claims{
		Email: identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.TokenIssuer,
			Subject:   identity.UserID.String(),
			Audience:  jwt.ClaimStrings{AudienceAuthenticated},
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create access token: %w", err)
	}
	return signed, expiry, nil
}

// IssueTokenPair creates a signed access token and a fresh refresh token
func (s *JWTService) IssueTokenPair(identity Identity) (*TokenPair, error) {
	accessToken, accessExpiry, err := s.IssueAccessToken(identity)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     NewRefreshToken(),
		AccessExpiresAt:  accessExpiry,
		RefreshExpiresAt: s.RefreshExpiry(),
	}, nil
}

// NewRefreshToken returns an opaque refresh token value
func NewRefreshToken() string {
	return uuid.NewString()
}

// RefreshExpiry returns the expiry of a refresh token issued now
func (s *JWTService) RefreshExpiry() time.Time {
	return s.now().Add(s.config.RefreshTokenExp)
}

// ValidateToken parses and verifies an access token
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	},
		jwt.WithIssuer(s.config.TokenIssuer),
		jwt.WithAudience(AudienceAuthenticated),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, apperrors.ErrTokenInvalid
}

// IdentityFromToken validates the token and returns the caller it names
func (s *JWTService) IdentityFromToken(tokenString string) (*Identity, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil || claims.Email == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	return &Identity{UserID: userID, Email: claims.Email}, nil
}
