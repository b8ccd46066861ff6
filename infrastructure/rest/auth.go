package rest

import (
	"context"
	"net/http"
	"strings"

	"teamchat/auth"
)

type contextKey string

const userIDKey contextKey = "userID"

// withAuth validates the bearer token and stashes the caller's user id
// in the request context. Token issuance happens elsewhere.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			respondWithError(w, http.StatusUnauthorized, "forbidden", "missing bearer token")
			return
		}

		claims, err := auth.ValidateToken(token, s.jwtSecret)
		if err != nil || claims.UserID == "" {
			respondWithError(w, http.StatusUnauthorized, "forbidden", "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next(w, r.WithContext(ctx))
	}
}

func callerID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}
