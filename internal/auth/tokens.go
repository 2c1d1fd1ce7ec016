package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token verification failures. ErrTokenExpired is split out so the API
// layer can answer with TOKEN_EXPIRED instead of a generic rejection.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

const (
	tokenIssuer   = "basspress-api"
	tokenAudience = "basspress-client"

	// DefaultAccessTTL is the access-token lifetime when config does not
	// override it.
	DefaultAccessTTL = 7 * 24 * time.Hour
	// RefreshTTL is the refresh-token lifetime.
	RefreshTTL = 30 * 24 * time.Hour
)

// TokenPair is one issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenIssuer signs and verifies the two token classes. Access and
// refresh tokens use distinct secrets, so one class can never be
// presented as the other.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
}

// NewTokenIssuer creates a TokenIssuer. A non-positive accessTTL falls
// back to DefaultAccessTTL.
func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
	}
}

// AccessTTL returns the configured access-token lifetime.
func (i *TokenIssuer) AccessTTL() time.Duration { return i.accessTTL }

// IssuePair issues a fresh access/refresh pair for the user. The caller
// is responsible for appending the refresh token to the account's
// stored token list.
func (i *TokenIssuer) IssuePair(userID uint) (*TokenPair, error) {
	access, err := i.sign(userID, i.accessSecret, i.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := i.sign(userID, i.refreshSecret, RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// IssueAccess issues a new access token only (used by the refresh flow).
func (i *TokenIssuer) IssueAccess(userID uint) (string, error) {
	return i.sign(userID, i.accessSecret, i.accessTTL)
}

// VerifyAccess validates an access token and returns the user ID it
// carries.
func (i *TokenIssuer) VerifyAccess(token string) (uint, error) {
	return i.verify(token, i.accessSecret)
}

// VerifyRefresh validates a refresh token cryptographically. Presence
// in the account's stored token list is checked separately by the
// caller; that list is the revocation mechanism.
func (i *TokenIssuer) VerifyRefresh(token string) (uint, error) {
	return i.verify(token, i.refreshSecret)
}

func (i *TokenIssuer) sign(userID uint, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": tokenIssuer,
		"aud": tokenAudience,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": generateJTI(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (i *TokenIssuer) verify(tokenString string, secret []byte) (uint, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}
	if !token.Valid {
		return 0, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrTokenInvalid
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, ErrTokenInvalid
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, ErrTokenInvalid
	}
	return uint(userID), nil
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func generateJTI(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8])
}
