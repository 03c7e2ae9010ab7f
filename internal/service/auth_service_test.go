package service

import (
	"context"
	"testing"
	"time"

	"warkop-pos/internal/auth"
	"warkop-pos/internal/model"
	"warkop-pos/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, repo *fakeUserRepo, username, password string, role auth.Role) *model.User {
	t.Helper()
	u := &model.User{Username: username, FullName: "Andi", Role: role, IsActive: true}
	require.NoError(t, u.SetPassword(password))
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestLoginAndValidate(t *testing.T) {
	repo := newFakeUserRepo()
	tokens := jwt.NewManager("test-secret", time.Hour, time.Hour)
	svc := NewAuthService(repo, tokens)
	ctx := context.Background()
	seedUser(t, repo, "andi", "rahasia", auth.RoleCashier)

	_, err := svc.Login(ctx, "andi", "salah")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "rahasia")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	first, err := svc.Login(ctx, "andi", "rahasia")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleCashier, first.User.Role)

	user, err := svc.ValidateToken(ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, "andi", user.Username)

	// a second login replaces the first session
	_, err = svc.Login(ctx, "andi", "rahasia")
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, first.Token)
	assert.ErrorIs(t, err, ErrSessionReplaced)
}

func TestLoginInactive(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, jwt.NewManager("s", time.Hour, time.Hour))
	u := seedUser(t, repo, "andi", "rahasia", auth.RoleCashier)
	u.IsActive = false
	require.NoError(t, repo.Update(context.Background(), u))

	_, err := svc.Login(context.Background(), "andi", "rahasia")
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestChangePassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, jwt.NewManager("s", time.Hour, time.Hour))
	ctx := context.Background()
	u := seedUser(t, repo, "andi", "rahasia", auth.RoleCashier)

	assert.ErrorIs(t, svc.ChangePassword(ctx, u.ID, "salah", "barubaru"), ErrWrongPassword)
	assert.ErrorIs(t, svc.ChangePassword(ctx, u.ID, "rahasia", "123"), ErrValidation)
	require.NoError(t, svc.ChangePassword(ctx, u.ID, "rahasia", "barubaru"))

	_, err := svc.Login(ctx, "andi", "barubaru")
	assert.NoError(t, err)
}

func TestUserService(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()
	owner := seedUser(t, repo, "owner", "owner123", auth.RoleOwner)
	ownerActor := auth.Staff(auth.RoleOwner, owner.ID, "Owner")

	created, err := svc.CreateUser(ctx, ownerActor, CreateUserRequest{Username: "andi", Password: "rahasia", Role: auth.RoleCashier})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleCashier, created.Role)

	_, err = svc.CreateUser(ctx, ownerActor, CreateUserRequest{Username: "andi", Password: "rahasia", Role: auth.RoleCashier})
	assert.ErrorIs(t, err, ErrUsernameExists)

	_, err = svc.CreateUser(ctx, ownerActor, CreateUserRequest{Username: "budi", Password: "rahasia", Role: auth.RoleCustomer})
	assert.ErrorIs(t, err, ErrValidation)

	cashier := auth.Staff(auth.RoleCashier, created.ID, "Andi")
	_, err = svc.GetAllUsers(ctx, cashier)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	inactive := false
	updated, err := svc.UpdateUser(ctx, ownerActor, created.ID, UpdateUserRequest{FullName: "Andi P", Role: auth.RoleCashier, IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	users, err := svc.GetAllUsers(ctx, ownerActor)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
