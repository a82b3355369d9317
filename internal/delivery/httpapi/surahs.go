package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
	"github.com/aliskhannn/tilawah-daily-bot/internal/quran"
)

type surahResponse struct {
	Surah *entities.Surah `json:"surah"`
	Ayahs []entities.Ayah `json:"ayahs"`
}

func (a *API) surahs(w http.ResponseWriter, r *http.Request) {
	surahs, err := a.Content.Surahs(r.Context())
	if err != nil {
		a.logger.Warn("surah list unavailable", zap.Error(err))
		respondError(w, "content service unavailable", http.StatusBadGateway)
		return
	}
	respondJSON(w, surahs, http.StatusOK)
}

// surah returns one surah with its verses; ?translation= picks the edition.
func (a *API) surah(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok || id < 1 || id > entities.TotalSurahs {
		respondError(w, "invalid surah", http.StatusBadRequest)
		return
	}

	translation := r.URL.Query().Get("translation")
	if translation == "" {
		translation = quran.DefaultTranslation
	}

	surah, ayahs, err := a.Content.Surah(r.Context(), id, translation)
	switch {
	case errors.Is(err, quran.ErrNotFound):
		respondError(w, "surah not found", http.StatusNotFound)
		return
	case err != nil:
		a.logger.Warn("surah unavailable", zap.Int("surah_id", id), zap.Error(err))
		respondError(w, "content service unavailable", http.StatusBadGateway)
		return
	}
	respondJSON(w, surahResponse{Surah: surah, Ayahs: ayahs}, http.StatusOK)
}
