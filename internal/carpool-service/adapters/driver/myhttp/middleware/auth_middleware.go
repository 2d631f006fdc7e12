package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"carpool/internal/carpool-service/core/domain/model"
)

type contextKey string

const actorKey contextKey = "actor"

func WithActor(ctx context.Context, a model.Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

func ActorFromContext(ctx context.Context) (model.Actor, bool) {
	a, ok := ctx.Value(actorKey).(model.Actor)
	return a, ok
}

// AuthMiddleware turns a bearer token into an Actor on the request
// context. Token issuance lives upstream; this only verifies and decodes.
type AuthMiddleware struct {
	accessSecret string
}

func NewAuthMiddleware(accessSecret string) *AuthMiddleware {
	return &AuthMiddleware{accessSecret: accessSecret}
}

func (am *AuthMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.Header.Get("Authorization")
		if tokenString == "" {
			unauthorized(w, "missing bearer token")
			return
		}
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			return []byte(am.accessSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			unauthorized(w, "invalid bearer token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			unauthorized(w, "invalid claims")
			return
		}
		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			unauthorized(w, "user_id claim missing")
			return
		}
		role, ok := claims["role"].(string)
		if !ok {
			unauthorized(w, "role claim missing")
			return
		}
		switch role {
		case model.RoleDriver, model.RolePassenger:
		default:
			unauthorized(w, "unknown role")
			return
		}

		ctx := WithActor(r.Context(), model.Actor{ID: userID, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}
