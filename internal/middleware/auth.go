package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"clinic-booking-client/internal/auth"
	"clinic-booking-client/internal/model"
)

type ctxKey string

const (
	UserIDKey ctxKey = "uid"
	RoleKey   ctxKey = "role"
)

// Detail writes an error body in the {"detail": "..."} shape the clinic
// API uses.
func Detail(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": msg})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	Detail(w, http.StatusUnauthorized, msg)
}

// Auth rejects requests without a valid bearer token and stores the
// caller's id and role on the request context.
func Auth(iss *auth.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// token from Authorization: Bearer <jwt>
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if raw == "" || raw == r.Header.Get("Authorization") {
				unauthorized(w, "Not authenticated")
				return
			}

			claims, err := iss.ParseToken(raw)
			if err != nil {
				unauthorized(w, "Could not validate credentials")
				return
			}
			uid, err := claims.UserID()
			if err != nil {
				unauthorized(w, "Could not validate credentials")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, uid)
			ctx = context.WithValue(ctx, RoleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}

func Role(ctx context.Context) model.Role {
	r, _ := ctx.Value(RoleKey).(model.Role)
	return r
}
