package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/studio-pms-api/internal/models"
	appErrors "github.com/noah-isme/studio-pms-api/pkg/errors"
)

func newTestAuthService() *AuthService {
	svc := NewAuthService(zap.NewNop(), AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "studio-pms"})
	svc.now = fixedClock(time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC))
	return svc
}

func TestValidateToken(t *testing.T) {
	svc := newTestAuthService()
	token, expires, err := svc.IssueToken("u1", "t1", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 8, 11, 0, 0, 0, time.UTC), expires)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "t1", claims.TenantID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := newTestAuthService()
	token, _, err := svc.IssueToken("u1", "t1", models.RoleStaff)
	require.NoError(t, err)

	svc.now = fixedClock(time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC))
	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsForeignSecretAndIssuer(t *testing.T) {
	svc := newTestAuthService()

	other := NewAuthService(nil, AuthConfig{AccessTokenSecret: "other", Issuer: "studio-pms"})
	other.now = svc.now
	token, _, err := other.IssueToken("u1", "t1", models.RoleStaff)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	require.Error(t, err)

	foreign := NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret", Issuer: "someone-else"})
	foreign.now = svc.now
	token, _, err = foreign.IssueToken("u1", "t1", models.RoleStaff)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateTokenRequiresTenant(t *testing.T) {
	svc := newTestAuthService()
	issued := svc.now()
	claims := &models.JWTClaims{
		UserID: "u1",
		Role:   models.RoleStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "studio-pms",
			ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(issued),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	_, _, err = svc.IssueToken("u1", " ", models.RoleStaff)
	require.Error(t, err)
}
