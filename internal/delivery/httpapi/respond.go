package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
	"github.com/aliskhannn/tilawah-daily-bot/internal/quran"
	"github.com/aliskhannn/tilawah-daily-bot/internal/service"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("empty request body")

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, errorResponse{Error: message}, status)
}

// decode reads a JSON body into v. An empty body yields errEmptyBody.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// decodeOptional is decode for endpoints whose body may be omitted.
func decodeOptional(w http.ResponseWriter, r *http.Request, v any) error {
	if err := decode(w, r, v); err != nil && !errors.Is(err, errEmptyBody) {
		return err
	}
	return nil
}

func userID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

func intParam(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	return n, err == nil
}

// respondServiceError answers with the status a service error maps to.
// Unexpected errors are logged and hidden behind a generic message.
func (a *API) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var aerr *service.AuthError
	if errors.As(err, &aerr) {
		status := http.StatusUnauthorized
		if aerr.Err == nil {
			status = http.StatusBadRequest
		}
		respondError(w, aerr.Message, status)
		return
	}

	switch {
	case errors.Is(err, entities.ErrInvalidGoal),
		errors.Is(err, entities.ErrInvalidFontSize),
		errors.Is(err, entities.ErrInvalidTheme),
		errors.Is(err, entities.ErrInvalidTime),
		errors.Is(err, entities.ErrInvalidTimezone),
		errors.Is(err, service.ErrUnknownReciter),
		errors.Is(err, service.ErrUnknownTranslation),
		errors.Is(err, service.ErrInvalidAyahRef),
		errors.Is(err, service.ErrUnknownPlan):
		respondError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrPremiumRequired):
		respondError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, service.ErrBookmarkNotFound),
		errors.Is(err, quran.ErrNotFound):
		respondError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrBookmarkExists),
		errors.Is(err, service.ErrNoOpenSurah):
		respondError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrSurahUnavailable):
		respondError(w, "content service unavailable", http.StatusBadGateway)
	default:
		a.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondError(w, "internal error", http.StatusInternalServerError)
	}
}
