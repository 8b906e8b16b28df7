package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/vaultshare/vaultshare/internal/api"
	"github.com/vaultshare/vaultshare/internal/common"
	"github.com/vaultshare/vaultshare/internal/server/auth"
)

type ctxKey string

const (
	userIDKey ctxKey = "userID"
	emailKey  ctxKey = "email"
)

// requireAuth validates the Bearer token and stores the caller's identity
// in the request context. An expired token gets its own error kind so
// clients can refresh and retry instead of re-authenticating.
func (s *HTTPServer) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		header := r.Header.Get(common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{Error: api.ErrKindUnauthorized})
			return
		}
		tokenString := strings.TrimPrefix(header, common.BearerPrefix)

		claims, err := auth.ParseToken(tokenString, s.jwtSecret)
		if err != nil {
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		ctx = context.WithValue(ctx, emailKey, claims.Email)
		next(w, r.WithContext(ctx))
	}
}

func callerID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func callerEmail(ctx context.Context) string {
	email, _ := ctx.Value(emailKey).(string)
	return email
}
