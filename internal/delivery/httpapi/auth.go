package httpapi

import (
	"net/http"
	"strings"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
	"github.com/aliskhannn/tilawah-daily-bot/internal/service"
)

type credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

type oauthRequest struct {
	IDToken string `json:"idToken,omitempty"`
	Code    string `json:"code,omitempty"`
}

type userResponse struct {
	User            *entities.User `json:"user"`
	IsAuthenticated bool           `json:"isAuthenticated"`
	IDToken         string         `json:"idToken,omitempty"`
	RefreshToken    string         `json:"refreshToken,omitempty"`
}

func signedIn(acct *service.Account) userResponse {
	return userResponse{
		User:            acct.User,
		IsAuthenticated: true,
		IDToken:         acct.IDToken,
		RefreshToken:    acct.RefreshToken,
	}
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decode(w, r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	acct, err := a.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, signedIn(acct), http.StatusOK)
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decode(w, r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	acct, err := a.Auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		a.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, signedIn(acct), http.StatusCreated)
}

// oauth signs in with a Google ID token, or with an authorization code
// exchanged for one.
func (a *API) oauth(w http.ResponseWriter, r *http.Request) {
	var req oauthRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var (
		acct *service.Account
		err  error
	)
	switch {
	case strings.TrimSpace(req.IDToken) != "":
		acct, err = a.Auth.LoginWithGoogle(r.Context(), req.IDToken)
	case strings.TrimSpace(req.Code) != "":
		acct, err = a.Auth.LoginWithGoogleCode(r.Context(), req.Code)
	default:
		respondError(w, "idToken or code is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		a.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, signedIn(acct), http.StatusOK)
}

// logout signs out the user the bearer token belongs to.
func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	a.Auth.Logout(r.Context(), subject(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) passwordReset(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decode(w, r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	msg, err := a.Auth.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		a.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, struct {
		Message string `json:"message"`
	}{Message: msg}, http.StatusOK)
}
