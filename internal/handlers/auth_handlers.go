package handlers

import (
	"net/http"
	"time"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/service"

	"go.uber.org/zap"
)

type AuthHandler struct {
	AuthService AuthService
	UserService UserService
}

func NewAuthHandler(authService AuthService, userService UserService) AuthHandler {
	return AuthHandler{
		AuthService: authService,
		UserService: userService,
	}
}

func (s *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.LoginRequest
	if !decodeRequest(w, r, &request) {
		return
	}

	token, u, err := s.AuthService.Login(r.Context(), request.Email, request.Password)
	if err != nil {
		handleServiceError(w, r, err, "login")
		return
	}

	logger.Info("HTTP_OUT: user logged in",
		zap.String("user_id", u.UUID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromAuth(token, u))
}

func (s *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.RegisterRequest
	if !decodeRequest(w, r, &request) {
		return
	}

	token, u, err := s.AuthService.Register(r.Context(), service.RegisterInput{
		Name:             request.Name,
		Email:            request.Email,
		Password:         request.Password,
		ProfileImageURL:  request.ProfileImageURL,
		AdminInviteToken: request.AdminInviteToken,
	})
	if err != nil {
		handleServiceError(w, r, err, "register")
		return
	}

	logger.Info("HTTP_OUT: user registered",
		zap.String("user_id", u.UUID.String()),
		zap.String("role", string(u.Role)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithBody(w, http.StatusCreated, dto.FromAuth(token, u))
}

func (s *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	u, err := s.UserService.GetProfile(r.Context(), caller.ID)
	if err != nil {
		handleServiceError(w, r, err, "profile")
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromUser(u))
}
