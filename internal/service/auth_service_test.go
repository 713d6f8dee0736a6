package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/config"
	"github.com/spec-kit/incident-service/internal/domain"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

func authFixture(t *testing.T) (*AuthService, *memUserStore) {
	t.Helper()
	users := &memUserStore{byID: map[string]*domain.User{}, buildings: map[string]string{}}
	hash, err := auth.HashPassword("correct horse", 4)
	require.NoError(t, err)
	users.byID["user-1"] = &domain.User{
		ID:           "user-1",
		Name:         "Thandi",
		Email:        "thandi@example.gov",
		PasswordHash: hash,
		Role:         domain.RoleSupervisor,
	}
	svc := NewAuthService(config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 30}, users)
	return svc, users
}

func TestLoginIssuesToken(t *testing.T) {
	svc, _ := authFixture(t)

	result, err := svc.Login(context.Background(), "Thandi@Example.gov", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, "user-1", result.User.ID)

	claims, err := svc.TokenManager().ParseToken(result.Token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, domain.RoleSupervisor, claims.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := authFixture(t)

	_, err := svc.Login(context.Background(), "thandi@example.gov", "wrong")
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, "UNAUTHORIZED", domainErr.Code)

	_, err = svc.Login(context.Background(), "nobody@example.gov", "correct horse")
	domainErr = apperrors.ToDomainError(err)
	require.Equal(t, "UNAUTHORIZED", domainErr.Code)

	_, err = svc.Login(context.Background(), "", "")
	require.True(t, apperrors.IsValidation(err))
}
