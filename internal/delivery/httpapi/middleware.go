package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/aliskhannn/tilawah-daily-bot/internal/service"
)

type ctxKey int

const subjectKey ctxKey = iota

// subject is the user id the request's bearer token was issued to.
func subject(ctx context.Context) string {
	id, _ := ctx.Value(subjectKey).(string)
	return id
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// authenticate rejects requests without the ID token of a signed-in user.
func (a *API) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			respondError(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		id, err := a.Auth.Verify(r.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				respondError(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}
			a.logger.Error("verify token", zap.Error(err))
			respondError(w, "authentication unavailable", http.StatusServiceUnavailable)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), subjectKey, id)))
	})
}

// requireOwner lets a user reach only their own /users/{id} resources.
func (a *API) requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID(r) != subject(r.Context()) {
			respondError(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
