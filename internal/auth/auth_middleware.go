package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/sebuszqo/MyFiance/internal/user"
)

const (
	msgNotAuthenticated = "Not authenticated"
	msgInvalidToken     = "Could not validate credentials"
)

func (s *service) JWTAccessTokenMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				respondUnauthorized(w, msgNotAuthenticated)
				return
			}

			existingUser, err := s.Authenticate(r.Context(), tokenString)
			if err != nil {
				if errors.Is(err, ErrUnauthorized) {
					respondUnauthorized(w, msgInvalidToken)
					return
				}
				log.Printf("[Auth_Middleware] resolving identity failed: %v", err)
				respondError(w, http.StatusInternalServerError, ErrInternalError.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(user.WithContext(r.Context(), existingUser)))
		})
	}
}

// bearerToken extracts the credentials of an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	respondError(w, http.StatusUnauthorized, message)
}
