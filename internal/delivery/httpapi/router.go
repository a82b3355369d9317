// Package httpapi serves the reading habit over a JSON HTTP API.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type API struct {
	Services

	logger *zap.Logger
}

func New(services Services, logger *zap.Logger) *API {
	return &API{
		Services: services,
		logger:   logger,
	}
}

// Routes builds the router of the API.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", a.login)
		r.Post("/register", a.register)
		r.Post("/oauth", a.oauth)
		r.With(a.authenticate).Post("/logout", a.logout)
		r.Post("/password-reset", a.passwordReset)
	})

	r.Route("/users/{id}", func(r chi.Router) {
		r.Use(a.authenticate, a.requireOwner)

		r.Get("/dashboard", a.dashboard)
		r.Get("/preferences", a.preferences)
		r.Patch("/preferences", a.updatePreferences)
		r.Post("/sessions", a.startSession)
		r.Delete("/sessions", a.stopSession)
		r.Post("/ayahs/advance", a.advance)
		r.Get("/streak", a.streak)
		r.Get("/bookmarks", a.bookmarks)
		r.Post("/bookmarks", a.addBookmark)
		r.Delete("/bookmarks/{bookmarkID}", a.removeBookmark)
		r.Post("/subscription", a.purchase)
		r.Delete("/subscription", a.cancelSubscription)
		r.Get("/features/{feature}", a.feature)
	})

	r.Get("/surahs", a.surahs)
	r.Get("/surahs/{id}", a.surah)

	return r
}

func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		a.logger.Debug("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
