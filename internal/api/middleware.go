package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/reviewforge/reviewforge/internal/app/auth"
	"github.com/reviewforge/reviewforge/internal/domain"
)

type contextKey string

const claimsContextKey contextKey = "claims"

func claimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	return c, ok
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimPrefix(h, prefix)
}

// requireUser verifies a user-surface bearer token and attaches its
// claims to the request context.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.authenticate(w, r, next, auth.SurfaceUser)
	})
}

// requireAdmin verifies an admin-surface bearer token and attaches its
// claims to the request context.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.authenticate(w, r, next, auth.SurfaceAdmin)
	})
}

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request, next http.Handler, want auth.Surface) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, domain.ErrMalformedToken.Error())
		return
	}
	claims, err := s.auth.Verify(r.Context(), token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if claims.Surf != want {
		writeError(w, http.StatusUnauthorized, domain.ErrInvalidSession.Error())
		return
	}
	ctx := context.WithValue(r.Context(), claimsContextKey, claims)
	next.ServeHTTP(w, r.WithContext(ctx))
}
