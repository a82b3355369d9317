package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultIdentityToolkitURL is the Firebase Auth REST endpoint.
const DefaultIdentityToolkitURL = "https://identitytoolkit.googleapis.com/v1"

// restCodes maps REST error messages to SDK error codes.
var restCodes = map[string]string{
	"EMAIL_NOT_FOUND":             CodeUserNotFound,
	"INVALID_PASSWORD":            CodeWrongPassword,
	"INVALID_EMAIL":               CodeInvalidEmail,
	"MISSING_EMAIL":               CodeInvalidEmail,
	"USER_DISABLED":               CodeUserDisabled,
	"TOO_MANY_ATTEMPTS_TRY_LATER": CodeTooManyRequests,
	"INVALID_LOGIN_CREDENTIALS":   CodeInvalidCredential,
	"INVALID_IDP_RESPONSE":        CodeInvalidCredential,
	"EMAIL_EXISTS":                CodeEmailAlreadyInUse,
	"WEAK_PASSWORD":               CodeWeakPassword,
	"OPERATION_NOT_ALLOWED":       CodeOperationNotAllowed,
	"PASSWORD_LOGIN_DISABLED":     CodeOperationNotAllowed,
	"INVALID_ID_TOKEN":            CodeInvalidToken,
	"TOKEN_EXPIRED":               CodeTokenExpired,
	"USER_NOT_FOUND":              CodeUserNotFound,
}

// Firebase implements Provider over the Identity Toolkit REST API.
type Firebase struct {
	baseURL    string
	apiKey     string
	requestURI string
	httpClient *http.Client
}

func NewFirebase(baseURL, apiKey string, timeout time.Duration) *Firebase {
	if baseURL == "" {
		baseURL = DefaultIdentityToolkitURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Firebase{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		requestURI: "http://localhost",
		httpClient: &http.Client{Timeout: timeout},
	}
}

type accountResponse struct {
	LocalID          string `json:"localId"`
	Email            string `json:"email"`
	DisplayName      string `json:"displayName"`
	IDToken          string `json:"idToken"`
	RefreshToken     string `json:"refreshToken"`
	NeedConfirmation bool   `json:"needConfirmation"`
}

func (r accountResponse) identity() *Identity {
	return &Identity{
		UID:          r.LocalID,
		Email:        r.Email,
		DisplayName:  r.DisplayName,
		IDToken:      r.IDToken,
		RefreshToken: r.RefreshToken,
	}
}

func (f *Firebase) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	var resp accountResponse
	err := f.post(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	id := resp.identity()
	if created, err := f.createdAt(ctx, resp.IDToken); err == nil {
		id.CreatedAt = created
	}
	return id, nil
}

func (f *Firebase) SignUp(ctx context.Context, email, password, displayName string) (*Identity, error) {
	var resp accountResponse
	err := f.post(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	id := resp.identity()
	id.CreatedAt = time.Now().UTC()

	if displayName != "" {
		err := f.post(ctx, "accounts:update", map[string]any{
			"idToken":           resp.IDToken,
			"displayName":       displayName,
			"returnSecureToken": false,
		}, nil)
		if err != nil {
			return nil, fmt.Errorf("set display name: %w", err)
		}
		id.DisplayName = displayName
	}

	return id, nil
}

func (f *Firebase) SignInWithGoogle(ctx context.Context, idToken string) (*Identity, error) {
	postBody := url.Values{}
	postBody.Set("id_token", idToken)
	postBody.Set("providerId", "google.com")

	var resp accountResponse
	err := f.post(ctx, "accounts:signInWithIdp", map[string]any{
		"postBody":            postBody.Encode(),
		"requestUri":          f.requestURI,
		"returnIdpCredential": true,
		"returnSecureToken":   true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.NeedConfirmation {
		return nil, &Error{Code: CodeAccountExistsDifferent}
	}

	id := resp.identity()
	if created, err := f.createdAt(ctx, resp.IDToken); err == nil {
		id.CreatedAt = created
	}
	return id, nil
}

func (f *Firebase) SendPasswordReset(ctx context.Context, email string) error {
	return f.post(ctx, "accounts:sendOobCode", map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, nil)
}

// Lookup resolves idToken to its account. Expired or forged tokens come
// back as CodeTokenExpired or CodeInvalidToken.
func (f *Firebase) Lookup(ctx context.Context, idToken string) (*Identity, error) {
	var resp struct {
		Users []struct {
			LocalID     string `json:"localId"`
			Email       string `json:"email"`
			DisplayName string `json:"displayName"`
			CreatedAt   string `json:"createdAt"` // milliseconds since epoch
		} `json:"users"`
	}
	if err := f.post(ctx, "accounts:lookup", map[string]any{"idToken": idToken}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Users) == 0 {
		return nil, &Error{Code: CodeUserNotFound}
	}

	u := resp.Users[0]
	id := &Identity{
		UID:         u.LocalID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		IDToken:     idToken,
	}
	if u.CreatedAt != "" {
		ms, err := strconv.ParseInt(u.CreatedAt, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse createdAt: %w", err)
		}
		id.CreatedAt = time.UnixMilli(ms).UTC()
	}
	return id, nil
}

// createdAt looks up the account creation time.
func (f *Firebase) createdAt(ctx context.Context, idToken string) (time.Time, error) {
	id, err := f.Lookup(ctx, idToken)
	if err != nil {
		return time.Time{}, err
	}
	return id.CreatedAt, nil
}

func (f *Firebase) post(ctx context.Context, method string, body, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s?key=%s", f.baseURL, method, url.QueryEscape(f.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp.Body)
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(r io.Reader) error {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&body); err != nil {
		return &Error{Code: CodeInternal, Detail: "unreadable error response"}
	}

	// Messages look like "WEAK_PASSWORD : Password should be at least 6 characters".
	message, detail, _ := strings.Cut(body.Error.Message, " : ")
	message = strings.TrimSpace(message)

	code, ok := restCodes[message]
	if !ok {
		return &Error{Code: CodeInternal, Detail: body.Error.Message}
	}
	return &Error{Code: code, Detail: detail}
}
