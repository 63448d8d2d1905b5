package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pliu/socialboard/internal/apierror"
)

type contextKey string

const UserIDKey contextKey = "user_id"

type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Auth rejects requests without a valid bearer token and stores the token's user id
// in the request context.
func Auth(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				apierror.Write(w, apierror.Unauthorized("No token, authorization denied"))
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				apierror.Write(w, apierror.Unauthorized("Token is not valid"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// bearerToken extracts the credential of a Bearer authorization header. The scheme
// name is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// UserID returns the authenticated user id, or "" outside the Auth middleware.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}
