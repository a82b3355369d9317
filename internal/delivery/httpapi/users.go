package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
	"github.com/aliskhannn/tilawah-daily-bot/internal/service"
)

type ayahRef struct {
	SurahID    int    `json:"surahId"`
	AyahNumber int    `json:"ayahNumber"`
	Note       string `json:"note,omitempty"`
}

type sessionResponse struct {
	UserID         string `json:"userId"`
	State          string `json:"state"`
	ElapsedSeconds int    `json:"elapsedSeconds"`
}

type advanceResponse struct {
	Progress entities.ProgressRecord `json:"progress"`
	Streak   entities.StreakRecord   `json:"streak"`
}

func (a *API) dashboard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, a.Dashboard.Summary(r.Context(), userID(r)), http.StatusOK)
}

func (a *API) preferences(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, a.Preferences.Get(r.Context(), userID(r)), http.StatusOK)
}

func (a *API) updatePreferences(w http.ResponseWriter, r *http.Request) {
	var patch entities.PreferencesPatch
	if err := decode(w, r, &patch); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	prefs, err := a.Preferences.Update(r.Context(), userID(r), patch)
	if err != nil {
		a.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, prefs, http.StatusOK)
}

// startSession starts the reading timer. With a surahId it also opens
// that surah and answers with its first verse.
func (a *API) startSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SurahID int `json:"surahId"`
	}
	if err := decodeOptional(w, r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id := userID(r)
	if req.SurahID != 0 {
		if req.SurahID < 1 || req.SurahID > entities.TotalSurahs {
			respondError(w, "invalid surah", http.StatusBadRequest)
			return
		}
		view, err := a.Reading.Open(r.Context(), id, req.SurahID)
		if err != nil {
			a.respondServiceError(w, r, err)
			return
		}
		respondJSON(w, view, http.StatusCreated)
		return
	}

	timer := a.Sessions.Start(r.Context(), id)
	respondJSON(w, sessionResponse{
		UserID: id,
		State:  timer.State().String(),
	}, http.StatusCreated)
}

func (a *API) stopSession(w http.ResponseWriter, r *http.Request) {
	id := userID(r)
	elapsed, ok := a.Reading.Close(r.Context(), id)
	if !ok {
		respondError(w, "no reading session", http.StatusNotFound)
		return
	}

	respondJSON(w, sessionResponse{
		UserID:         id,
		State:          "idle",
		ElapsedSeconds: int(elapsed.Seconds()),
	}, http.StatusOK)
}

// advance counts one ayah read. Without a body it moves the open surah
// to its next verse.
func (a *API) advance(w http.ResponseWriter, r *http.Request) {
	var ref ayahRef
	if err := decodeOptional(w, r, &ref); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	id := userID(r)

	if ref.SurahID == 0 && ref.AyahNumber == 0 {
		view, err := a.Reading.Next(ctx, id)
		if err != nil {
			a.respondServiceError(w, r, err)
			return
		}
		respondJSON(w, view, http.StatusOK)
		return
	}

	if ref.SurahID < 1 || ref.SurahID > entities.TotalSurahs || ref.AyahNumber < 1 {
		respondError(w, "invalid ayah reference", http.StatusBadRequest)
		return
	}

	a.Sessions.Refresh(id)
	progress := a.Progress.RecordAyahRead(ctx, id, ref.SurahID, ref.AyahNumber)
	streak, _ := a.Streak.RegisterActivityToday(ctx, id)
	respondJSON(w, advanceResponse{Progress: progress, Streak: streak}, http.StatusOK)
}

func (a *API) streak(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, a.Streak.Streak(r.Context(), userID(r)), http.StatusOK)
}

func (a *API) bookmarks(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, a.Bookmarks.List(r.Context(), userID(r)), http.StatusOK)
}

func (a *API) addBookmark(w http.ResponseWriter, r *http.Request) {
	var ref ayahRef
	if err := decode(w, r, &ref); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	b, err := a.Bookmarks.Add(r.Context(), userID(r), ref.SurahID, ref.AyahNumber, ref.Note)
	if err != nil {
		a.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, b, http.StatusCreated)
}

func (a *API) removeBookmark(w http.ResponseWriter, r *http.Request) {
	if err := a.Bookmarks.Remove(r.Context(), userID(r), chi.URLParam(r, "bookmarkID")); err != nil {
		a.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) purchase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Plan     service.Plan `json:"plan"`
		Platform string       `json:"platform"`
	}
	if err := decode(w, r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sub, err := a.Subscriptions.Purchase(r.Context(), userID(r), req.Plan, req.Platform)
	if err != nil {
		a.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, sub, http.StatusCreated)
}

func (a *API) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	if err := a.Subscriptions.Cancel(r.Context(), userID(r)); err != nil {
		a.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) feature(w http.ResponseWriter, r *http.Request) {
	feature := chi.URLParam(r, "feature")
	respondJSON(w, struct {
		Feature   string `json:"feature"`
		Available bool   `json:"available"`
	}{
		Feature:   feature,
		Available: a.Subscriptions.IsFeatureAvailable(r.Context(), userID(r), feature),
	}, http.StatusOK)
}
