package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campushq/labops/internal/lifecycle"
	"github.com/campushq/labops/internal/models"
)

type key string

const performerKey key = "performer"

// JWT authenticates requests via the Authorization bearer token and stores
// the verified performer identity (user id, role, campus scope) in the
// request context.
func JWT(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				unauthorized(w, "missing authorization header")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				unauthorized(w, "invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				unauthorized(w, "invalid token claims")
				return
			}
			userID, ok1 := claims["user_id"].(float64)
			role, ok2 := claims["role"].(string)
			campusID, ok3 := claims["campus_id"].(float64)
			username, _ := claims["username"].(string)
			if !ok1 || !ok2 || !ok3 || !models.ValidRole(role) {
				unauthorized(w, "invalid token claims")
				return
			}

			p := lifecycle.Performer{
				UserID:   int(userID),
				Username: username,
				Role:     role,
				CampusID: int(campusID),
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), performerKey, p)))
		})
	}
}

// WithPerformer returns a context carrying p, as the JWT middleware would
// set it.
func WithPerformer(ctx context.Context, p lifecycle.Performer) context.Context {
	return context.WithValue(ctx, performerKey, p)
}

// PerformerFrom returns the authenticated identity set by JWT middleware.
func PerformerFrom(ctx context.Context) (lifecycle.Performer, bool) {
	p, ok := ctx.Value(performerKey).(lifecycle.Performer)
	return p, ok
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
