package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/daniel-lerner/lerners-game-tournament/services"
)

type contextKey string

const adminContextKey contextKey = "admin"

// TokenValidator проверяет токен администратора.
type TokenValidator interface {
	ValidateToken(tokenString string) error
}

// RequireAdmin пропускает запрос только с действующим токеном "Authorization: Bearer <token>".
func RequireAdmin(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization token")
				return
			}

			if err := validator.ValidateToken(strings.TrimSpace(token)); err != nil {
				status := http.StatusUnauthorized
				if errors.Is(err, services.ErrAuthNotConfigured) {
					status = http.StatusServiceUnavailable
				}
				writeError(w, status, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), adminContextKey, true)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsAdmin сообщает, прошёл ли запрос через RequireAdmin.
func IsAdmin(ctx context.Context) bool {
	ok, _ := ctx.Value(adminContextKey).(bool)
	return ok
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
