package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func newAccountFixture() (*AccountService, *memUserRepo, *memResetRepo) {
	users := newMemUserRepo()
	resets := newMemResetRepo()
	svc := NewAccountService(AccountDependencies{
		UserRepo:   users,
		ResetRepo:  resets,
		Tokens:     auth.NewTokenManager("test-secret", 60),
		BcryptCost: 4,
		ResetTTL:   time.Hour,
		Logger:     zap.NewNop(),
	})
	return svc, users, resets
}

func TestRegisterClientAndLogin(t *testing.T) {
	svc, _, _ := newAccountFixture()
	ctx := context.Background()

	user, err := svc.RegisterClient(ctx, RegisterInput{Name: "Carol", Email: "carol@example.com", Password: "secret", City: "Halifax"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleClient, user.Role)
	assert.NotEqual(t, "secret", user.PasswordHash)

	session, err := svc.Login(ctx, "CAROL@example.com", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, user.ID, session.User.ID)
}

func TestRegisterClientDuplicateEmail(t *testing.T) {
	svc, _, _ := newAccountFixture()
	ctx := context.Background()

	_, err := svc.RegisterClient(ctx, RegisterInput{Name: "Carol", Email: "carol@example.com", Password: "secret"})
	require.NoError(t, err)

	_, err = svc.RegisterClient(ctx, RegisterInput{Name: "Other", Email: "Carol@Example.com", Password: "secret"})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newAccountFixture()
	ctx := context.Background()

	_, err := svc.RegisterClient(ctx, RegisterInput{Name: "Carol", Email: "carol@example.com", Password: "secret"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "carol@example.com", "wrong")
	require.Error(t, err)

	_, err = svc.Login(ctx, "nobody@example.com", "secret")
	require.Error(t, err)
}

func TestCreateStaffRequiresDepartment(t *testing.T) {
	svc, _, _ := newAccountFixture()

	_, err := svc.CreateStaff(context.Background(), StaffInput{
		Name: "Alice", Email: "alice@example.com", Password: "secret", Role: domain.RoleStaff,
	})
	require.Error(t, err)
}

func TestCreateStaffRejectsClientRole(t *testing.T) {
	svc, _, _ := newAccountFixture()

	_, err := svc.CreateStaff(context.Background(), StaffInput{
		Name: "Alice", Email: "alice@example.com", Password: "secret", Role: domain.RoleClient,
	})
	require.Error(t, err)
}

func TestDeleteStaffRemovesFromCandidatePool(t *testing.T) {
	svc, users, _ := newAccountFixture()
	ctx := context.Background()

	staff, err := svc.CreateStaff(ctx, StaffInput{
		Name: "Alice", Email: "alice@example.com", Password: "secret",
		Role: domain.RoleStaff, Department: "Billing",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteStaff(ctx, staff.ID))

	pool, err := users.ListStaffWithDepartment(ctx)
	require.NoError(t, err)
	assert.Empty(t, pool)

	err = svc.DeleteStaff(ctx, staff.ID)
	require.Error(t, err)
}

func TestDeleteStaffRejectsClientAccounts(t *testing.T) {
	svc, _, _ := newAccountFixture()
	ctx := context.Background()

	client, err := svc.RegisterClient(ctx, RegisterInput{Name: "Carol", Email: "carol@example.com", Password: "secret"})
	require.NoError(t, err)

	err = svc.DeleteStaff(ctx, client.ID)
	require.Error(t, err)
	assert.False(t, apperrors.IsNotFound(err))
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _, _ := newAccountFixture()
	ctx := context.Background()

	_, err := svc.RegisterClient(ctx, RegisterInput{Name: "Carol", Email: "carol@example.com", Password: "old-secret"})
	require.NoError(t, err)

	token, err := svc.RequestPasswordReset(ctx, "carol@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, svc.ResetPassword(ctx, token, "new-secret"))

	_, err = svc.Login(ctx, "carol@example.com", "old-secret")
	require.Error(t, err)
	_, err = svc.Login(ctx, "carol@example.com", "new-secret")
	require.NoError(t, err)

	// tokens are single use
	err = svc.ResetPassword(ctx, token, "another")
	require.Error(t, err)
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	svc, _, _ := newAccountFixture()

	token, err := svc.RequestPasswordReset(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, token)
}
