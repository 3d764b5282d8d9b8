package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"taskManager/internal/auth"
	"taskManager/internal/logger"
	"taskManager/internal/models/user"

	"go.uber.org/zap"
)

type TokenParser interface {
	Parse(token string) (user.Caller, error)
}

// Authenticate resolves the bearer token into a caller stored on the
// request context. Requests without a valid token get 401.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				logger.Warn("HTTP: missing bearer token",
					zap.String("path", r.URL.Path),
					zap.String("client_ip", r.RemoteAddr))
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not authorized, no token")
				return
			}

			caller, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				logger.Warn("HTTP: token rejected",
					zap.Error(err),
					zap.String("client_ip", r.RemoteAddr))
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not authorized, token failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithCaller(r.Context(), caller)))
		})
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := auth.CallerFromContext(r.Context())
		if !ok || !caller.IsAdmin() {
			logger.Warn("HTTP: admin route denied",
				zap.String("path", r.URL.Path),
				zap.String("caller_id", caller.ID.String()))
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Access denied, admin only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error":   code,
		"message": message,
	})
}
