package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/picwall-dev/picwall/internal/domain"
	internal_jwt "github.com/picwall-dev/picwall/internal/jwt"
	"github.com/picwall-dev/picwall/internal/utils"
)

// Key to store the user claims in the request context
type key int

const userClaimsKey key = 0

// Auth authenticates the request from the accessToken cookie, falling back
// to an Authorization bearer header for non-browser clients, and stores the
// user in the request context.
func Auth(jwtService internal_jwt.JwtService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := extractToken(r)
			if err != nil {
				http.Error(w, "Please sign-in", http.StatusUnauthorized)
				return
			}

			token, err := jwtService.DecodeToken(tokenStr)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}

			user, err := internal_jwt.UserFromToken(token)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userClaimsKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) (string, error) {
	accessCookie, err := r.Cookie("accessToken")
	if err == nil {
		return accessCookie.Value, nil
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer "), nil
	}
	return "", http.ErrNoCookie
}

// GetUserFromContext retrieves the authenticated user, or nil outside the
// Auth middleware.
func GetUserFromContext(r *http.Request) *domain.User {
	user, ok := r.Context().Value(userClaimsKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}
