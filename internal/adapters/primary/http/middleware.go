package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/jupiterclapton/murmur/internal/adapters/secondary/security"
	"github.com/jupiterclapton/murmur/internal/core/domain"
)

// Clé privée pour le contexte (évite les collisions)
type contextKey struct{ name string }

var userCtxKey = &contextKey{"user_id"}

// sessionCookie : l'Identity Provider pose le jeton de session dans ce cookie
// pour les navigateurs ; les clients API passent par Authorization: Bearer.
const sessionCookie = "__session"

// WithSession décode le jeton de session s'il est présent et injecte
// l'utilisateur dans le contexte. Pas de jeton → on laisse passer (les
// routes publiques existent) ; jeton invalide → 401 direct.
func WithSession(verifier *security.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := sessionToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := verifier.Verify(tokenStr)
			if err != nil {
				writeError(w, http.StatusUnauthorized, domain.ErrUnauthenticated)
				return
			}

			ctx := context.WithValue(r.Context(), userCtxKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession protège les routes qui exigent un principal authentifié.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ForContext(r.Context()) == "" {
			writeError(w, http.StatusUnauthorized, domain.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ForContext récupère l'ID utilisateur posé par WithSession ("" si anonyme).
func ForContext(ctx context.Context) string {
	raw, _ := ctx.Value(userCtxKey).(string)
	return raw
}

// sessionToken cherche d'abord le header Authorization, puis le cookie.
func sessionToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if strings.HasPrefix(header, "Bearer ") {
			return strings.TrimPrefix(header, "Bearer ")
		}
		return ""
	}
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}
