package http

import (
	"context"
	"net/http"

	"finman/internal/core"
)

type contextKey string

const userKey contextKey = "user"

// requireUser resolves the bearer token into the verified user id threaded
// through every service call.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.svc.Users.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user.ID)))
	})
}

func withUser(ctx context.Context, id core.UserID) context.Context {
	return context.WithValue(ctx, userKey, id)
}

// UserFromContext returns the authenticated user of the request.
func UserFromContext(ctx context.Context) (core.UserID, bool) {
	id, ok := ctx.Value(userKey).(core.UserID)
	return id, ok
}

// currentUser is only called behind requireUser.
func currentUser(r *http.Request) core.UserID {
	id, _ := UserFromContext(r.Context())
	return id
}
