package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

func newAuthFixture(t *testing.T, seed ...*domain.User) (*service.AuthService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo(seed...)
	tokens := auth.NewTokenManager("test-secret", 60)
	return service.NewAuthService(users, tokens, bcrypt.MinCost), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, service.RegisterInput{
		Name:          "Alice Student",
		Email:         "Student1@University.edu",
		Password:      "changeme123",
		StudentNumber: "STU2024001",
		Department:    "Computer Science",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, result.User.Role)
	assert.Equal(t, "student1@university.edu", result.User.Email)
	assert.NotEmpty(t, result.Token)

	login, err := svc.Login(ctx, "student1@university.edu", "changeme123")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, login.User.ID)

	claims, err := auth.NewTokenManager("test-secret", 60).ParseToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, domain.RoleStudent, claims.Role)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, service.RegisterInput{Name: "x", Email: "x@y.z", Password: "short"})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = svc.Register(ctx, service.RegisterInput{
		Name: "x", Email: "x@y.z", Password: "changeme123", Role: "SUPERUSER",
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	// Students must carry a student number.
	_, err = svc.Register(ctx, service.RegisterInput{
		Name: "x", Email: "x@y.z", Password: "changeme123", Role: domain.RoleStudent,
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	input := service.RegisterInput{
		Name:          "Alice Student",
		Email:         "student1@university.edu",
		Password:      "changeme123",
		StudentNumber: "STU2024001",
	}
	_, err := svc.Register(ctx, input)
	require.NoError(t, err)

	_, err = svc.Register(ctx, input)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, service.RegisterInput{
		Name: "Tech", Email: "tech@scfms.com", Password: "changeme123", Role: domain.RoleTechnician,
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "tech@scfms.com", "wrongpass")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	_, err = svc.Login(ctx, "nobody@scfms.com", "changeme123")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
}
