package middleware

import (
	"context"
	"net/http"
	"strings"

	"crm/internal/auth"
	"crm/internal/transport/http/api"
)

type ctxKey int

const (
	ctxKeyUser ctxKey = iota
	ctxKeyToken
)

type UserContext struct {
	UserID       string
	TenantID     string
	RoleName     string
	CustomerType string
}

// Auth attaches the caller's claims when a valid bearer token is present. The
// raw token is kept in context so handlers can hand it to background jobs.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, UserContext{
				UserID:       claims.UserID,
				TenantID:     claims.TenantID,
				RoleName:     claims.RoleName,
				CustomerType: claims.CustomerType,
			})
			ctx = context.WithValue(ctx, ctxKeyToken, parts[1])
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests that did not authenticate.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetUser(ctx context.Context) (UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(UserContext)
	return user, ok
}

func GetToken(ctx context.Context) string {
	if token, ok := ctx.Value(ctxKeyToken).(string); ok {
		return token
	}
	return ""
}
