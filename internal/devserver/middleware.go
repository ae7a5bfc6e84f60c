package devserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/bizpulse/bizdash/internal/session"
)

type ctxKey string

const principalKey ctxKey = "principal"

func principalFrom(ctx context.Context) (session.Principal, bool) {
	p, ok := ctx.Value(principalKey).(session.Principal)
	return p, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// authMiddleware validates the bearer token and injects the principal into
// the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			s.writeError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := s.tokens.Validate(token)
		if err != nil {
			s.logger.Warn("token validation failed", "error", err)
			s.writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		principal := session.Principal{
			Identity: claims.Email,
			Role:     session.ParseRole(claims.Role),
			Token:    token,
		}
		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole gates a subtree to the given roles.
func (s *Server) requireRole(roles ...session.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := principalFrom(r.Context())
			if !ok {
				s.writeError(w, http.StatusUnauthorized, "missing authorization token")
				return
			}
			for _, role := range roles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			s.logger.Warn("access denied: insufficient role",
				"identity", principal.Identity,
				"role", principal.Role)
			s.writeError(w, http.StatusForbidden, "insufficient role")
		})
	}
}
