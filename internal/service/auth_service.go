package service

import (
	"motorserve/internal/auth"
	"motorserve/internal/db"
	"motorserve/internal/entities"
	apperrors "motorserve/internal/errors"

	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(req entities.RegisterRequest) (*db.User, error)
	Login(username, password string) (string, *db.User, error)
}

type userStore interface {
	CreateUser(user *db.User) error
	GetByUsername(username string) (*db.User, error)
}

type authService struct {
	users userStore
}

func NewAuthService(users userStore) AuthService {
	return &authService{users: users}
}

func (s *authService) Register(req entities.RegisterRequest) (*db.User, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, apperrors.ErrValidation("username, email and password are required")
	}

	role := db.Role(req.Role)
	if req.Role == "" {
		role = db.RoleCustomer
	}
	// Admin accounts are provisioned out of band, never via self-registration.
	if !role.Valid() || role == db.RoleAdmin {
		return nil, apperrors.ErrValidation("invalid role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &db.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		Phone:        req.Phone,
		Address:      req.Address,
	}
	if err := s.users.CreateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(username, password string) (string, *db.User, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return "", nil, apperrors.ErrUnauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperrors.ErrUnauthorized("invalid credentials")
	}

	token, err := auth.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
