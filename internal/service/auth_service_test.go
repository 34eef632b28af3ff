package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motorserve/internal/db"
	"motorserve/internal/entities"
	apperrors "motorserve/internal/errors"
)

type fakeUserStore struct {
	users map[string]*db.User
}

func (f *fakeUserStore) CreateUser(user *db.User) error {
	if _, exists := f.users[user.Username]; exists {
		return apperrors.ErrConflict("a user with that username or email already exists")
	}
	user.ID = len(f.users) + 1
	f.users[user.Username] = user
	return nil
}

func (f *fakeUserStore) GetByUsername(username string) (*db.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, apperrors.ErrNotFound("User not found")
	}
	return user, nil
}

func TestRegisterAndLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	svc := NewAuthService(&fakeUserStore{users: map[string]*db.User{}})

	user, err := svc.Register(entities.RegisterRequest{
		Username: "asha",
		Email:    "asha@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, db.RoleCustomer, user.Role, "role defaults to customer")
	assert.NotEqual(t, "hunter22", user.PasswordHash, "password is never stored in clear")

	token, logged, err := svc.Login("asha", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, logged.ID)

	_, _, err = svc.Login("asha", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, 401, apperrors.StatusCode(err))

	_, _, err = svc.Login("nobody", "hunter22")
	require.Error(t, err)
	assert.Equal(t, 401, apperrors.StatusCode(err))
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(&fakeUserStore{users: map[string]*db.User{}})

	_, err := svc.Register(entities.RegisterRequest{Username: "x"})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.StatusCode(err))

	_, err = svc.Register(entities.RegisterRequest{
		Username: "boss", Email: "boss@example.com", Password: "pw", Role: "admin",
	})
	require.Error(t, err, "admin self-registration is blocked")
	assert.Equal(t, 400, apperrors.StatusCode(err))

	_, err = svc.Register(entities.RegisterRequest{
		Username: "m", Email: "m@example.com", Password: "pw", Role: "mechanic",
	})
	assert.NoError(t, err)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := NewAuthService(&fakeUserStore{users: map[string]*db.User{}})

	req := entities.RegisterRequest{Username: "asha", Email: "asha@example.com", Password: "pw"}
	_, err := svc.Register(req)
	require.NoError(t, err)

	_, err = svc.Register(req)
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.StatusCode(err))
}
