package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"taskManager/internal/auth"
	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	rep "taskManager/internal/repository"

	"go.uber.org/zap"
)

const msgInvalidCredentials = "Invalid email or password"

// RegisterInput is a self-service signup. A matching AdminInviteToken
// grants the admin role.
type RegisterInput struct {
	Name             string
	Email            string
	Password         string
	ProfileImageURL  string
	AdminInviteToken string
}

type AuthService struct {
	users       UserRepository
	tokens      *auth.TokenManager
	inviteToken string
}

// NewAuthService builds the service. With an empty adminInviteToken every
// signup becomes a member.
func NewAuthService(users UserRepository, tokens *auth.TokenManager, adminInviteToken string) *AuthService {
	return &AuthService{
		users:       users,
		tokens:      tokens,
		inviteToken: adminInviteToken,
	}
}

// Register creates the user and logs them in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, *user.User, error) {
	role := user.RoleMember
	if s.inviteToken != "" && subtle.ConstantTimeCompare([]byte(in.AdminInviteToken), []byte(s.inviteToken)) == 1 {
		role = user.RoleAdmin
	}

	u, err := createUser(ctx, s.users, CreateUserInput{
		Name:            in.Name,
		Email:           in.Email,
		Password:        in.Password,
		Role:            role,
		ProfileImageURL: in.ProfileImageURL,
	})
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// Login checks the credentials and returns a bearer token for the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Warn("Service: login with unknown email")
			return "", nil, NewUnauthorized(msgInvalidCredentials)
		}
		logger.Error("Service: login lookup", err)
		return "", nil, NewStoreError("login", err)
	}

	if !auth.CheckPassword(u.PasswordHash, password) {
		logger.Warn("Service: login with wrong password", zap.String("user_id", u.UUID.String()))
		return "", nil, NewUnauthorized(msgInvalidCredentials)
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}
