package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(accessTTL time.Duration) *TokenIssuer {
	return NewTokenIssuer("access-secret-for-tests", "refresh-secret-for-tests", accessTTL)
}

func TestIssuePair_RoundTrip(t *testing.T) {
	issuer := newTestIssuer(time.Hour)

	pair, err := issuer.IssuePair(42)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	userID, err := issuer.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)

	userID, err = issuer.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestVerify_ClassesAreNotInterchangeable(t *testing.T) {
	issuer := newTestIssuer(time.Hour)
	pair, err := issuer.IssuePair(7)
	require.NoError(t, err)

	// Distinct secrets: a refresh token is never a valid access token.
	_, err = issuer.VerifyAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = issuer.VerifyRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyAccess_Expired(t *testing.T) {
	issuer := newTestIssuer(-time.Minute)

	token, err := issuer.IssueAccess(7)
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyAccess_WrongSecret(t *testing.T) {
	issuer := newTestIssuer(time.Hour)
	other := NewTokenIssuer("a different secret entirely", "refresh-secret-for-tests", time.Hour)

	token, err := other.IssueAccess(7)
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyAccess_RejectsNonHMAC(t *testing.T) {
	issuer := newTestIssuer(time.Hour)

	// alg=none tokens must never pass.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "7",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestNewTokenIssuer_DefaultTTL(t *testing.T) {
	issuer := newTestIssuer(0)
	assert.Equal(t, DefaultAccessTTL, issuer.AccessTTL())
}

func TestTokenClaims(t *testing.T) {
	issuer := newTestIssuer(time.Hour)
	token, err := issuer.IssueAccess(99)
	require.NoError(t, err)

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return []byte("access-secret-for-tests"), nil
	})
	require.NoError(t, err)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "99", claims["sub"])
	assert.Equal(t, "basspress-api", claims["iss"])
	assert.Equal(t, "basspress-client", claims["aud"])
	assert.NotEmpty(t, claims["jti"])
}
