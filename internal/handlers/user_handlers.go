package handlers

import (
	"net/http"
	"time"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"

	"go.uber.org/zap"
)

type UserHandler struct {
	UserService UserService
}

func NewUserHandler(userService UserService) UserHandler {
	return UserHandler{UserService: userService}
}

// ListMembers returns every member with per-status task counts.
func (s *UserHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	members, err := s.UserService.ListMembers(r.Context())
	if err != nil {
		handleServiceError(w, r, err, "list_members")
		return
	}

	logger.Info("HTTP_OUT: members listed",
		zap.Int("count", len(members)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromMembers(members))
}
