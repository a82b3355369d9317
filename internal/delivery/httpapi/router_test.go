package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/tilawah-daily-bot/internal/auth"
	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
	"github.com/aliskhannn/tilawah-daily-bot/internal/quran"
	"github.com/aliskhannn/tilawah-daily-bot/internal/service"
	"github.com/aliskhannn/tilawah-daily-bot/internal/storage/kv"
)

type nasContent struct{}

func (nasContent) Surahs(context.Context) ([]entities.Surah, error) {
	return []entities.Surah{{ID: 114, EnglishName: "An-Naas", AyahCount: 3}}, nil
}

func (nasContent) Surah(_ context.Context, id int, translation string) (*entities.Surah, []entities.Ayah, error) {
	if id != 114 {
		return nil, nil, quran.ErrNotFound
	}
	ayahs := make([]entities.Ayah, 3)
	for i := range ayahs {
		ayahs[i] = entities.Ayah{
			SurahID:         114,
			AyahNumber:      i + 1,
			TextArabic:      fmt.Sprintf("arabic %d", i+1),
			TextTranslation: translation,
		}
	}
	return &entities.Surah{ID: 114, EnglishName: "An-Naas", AyahCount: 3}, ayahs, nil
}

func (nasContent) Juz(context.Context, int, string) ([]entities.Ayah, error) { return nil, nil }

type stubProvider struct {
	err error
}

func (p stubProvider) identity(email, name string) (*auth.Identity, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &auth.Identity{UID: "fb-1", Email: email, DisplayName: name, IDToken: "token-fb-1"}, nil
}

func (p stubProvider) SignIn(_ context.Context, email, _ string) (*auth.Identity, error) {
	return p.identity(email, "")
}

func (p stubProvider) SignUp(_ context.Context, email, _, name string) (*auth.Identity, error) {
	return p.identity(email, name)
}

func (p stubProvider) SignInWithGoogle(context.Context, string) (*auth.Identity, error) {
	return p.identity("g@example.com", "Google User")
}

func (p stubProvider) SendPasswordReset(context.Context, string) error { return p.err }

func (p stubProvider) Lookup(_ context.Context, idToken string) (*auth.Identity, error) {
	if p.err != nil {
		return nil, p.err
	}
	if idToken != "token-fb-1" {
		return nil, &auth.Error{Code: auth.CodeInvalidToken}
	}
	return &auth.Identity{UID: "fb-1", IDToken: idToken}, nil
}

type testAPI struct {
	server *httptest.Server
	token  string
}

func newTestAPI(t *testing.T, provider auth.Provider) *testAPI {
	t.Helper()
	logger := zap.NewNop()
	safe := kv.NewSafeStore(kv.NewMemoryStore(), logger)
	writer := kv.NewAsyncWriter(safe, logger)
	t.Cleanup(func() { _ = writer.Close(context.Background()) })

	catalog := quran.NewCatalog()
	clock := service.SystemClock
	idle := func(time.Duration) (<-chan time.Time, func()) { return nil, func() {} }

	preferences := service.NewPreferenceStore(safe, writer, catalog, clock, logger)
	progress := service.NewProgressTracker(safe, writer, preferences, clock, logger)
	streak := service.NewStreakTracker(safe, writer, preferences, clock, logger)
	bookmarks := service.NewBookmarkStore(safe, writer, clock, logger)
	sessions := service.NewSessionManager(progress, clock, idle, 0, logger)
	t.Cleanup(func() { sessions.StopAll(context.Background()) })

	api := New(Services{
		Auth:          service.NewAuthService(provider, nil, preferences, streak, sessions, time.Minute, logger),
		Reading:       service.NewReadingService(nasContent{}, catalog, progress, streak, sessions, preferences, bookmarks, logger),
		Sessions:      sessions,
		Dashboard:     service.NewDashboard(progress, streak, preferences),
		Progress:      progress,
		Streak:        streak,
		Preferences:   preferences,
		Bookmarks:     bookmarks,
		Subscriptions: service.NewSubscriptions(preferences, clock, logger),
		Content:       nasContent{},
	}, logger)

	srv := httptest.NewServer(api.Routes())
	t.Cleanup(srv.Close)
	return &testAPI{server: srv}
}

// do sends body as JSON and decodes the answer into out when it is non-nil.
func (a *testAPI) do(t *testing.T, method, path, body string, out any) int {
	t.Helper()

	req, err := http.NewRequest(method, a.server.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.server.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

// signIn logs in and sends the issued token with every later request.
func (a *testAPI) signIn(t *testing.T) {
	t.Helper()

	var resp userResponse
	if status := a.do(t, http.MethodPost, "/auth/login", `{"email":"amina@example.com","password":"secret"}`, &resp); status != http.StatusOK {
		t.Fatalf("login status = %d", status)
	}
	a.token = resp.IDToken
}

func TestAuthEndpoints(t *testing.T) {
	tests := []struct {
		name     string
		provider auth.Provider
		path     string
		body     string
		status   int
		message  string
	}{
		{"login", stubProvider{}, "/auth/login", `{"email":"amina@example.com","password":"secret"}`, http.StatusOK, ""},
		{"login without email", stubProvider{}, "/auth/login", `{"password":"secret"}`, http.StatusBadRequest, "Email is required"},
		{"wrong password", stubProvider{err: &auth.Error{Code: auth.CodeWrongPassword}}, "/auth/login", `{"email":"a@b.c","password":"x"}`, http.StatusUnauthorized, "Incorrect password"},
		{"register", stubProvider{}, "/auth/register", `{"name":"Amina","email":"amina@example.com","password":"secret1"}`, http.StatusCreated, ""},
		{"short password", stubProvider{}, "/auth/register", `{"email":"a@b.c","password":"123"}`, http.StatusBadRequest, "Password must be at least 6 characters"},
		{"oauth token", stubProvider{}, "/auth/oauth", `{"idToken":"tok"}`, http.StatusOK, ""},
		{"oauth nothing", stubProvider{}, "/auth/oauth", `{}`, http.StatusBadRequest, "idToken or code is required"},
		{"oauth code without exchanger", stubProvider{}, "/auth/oauth", `{"code":"c"}`, http.StatusBadRequest, "No Google token received"},
		{"reset", stubProvider{}, "/auth/password-reset", `{"email":"a@b.c"}`, http.StatusOK, ""},
		{"unknown field", stubProvider{}, "/auth/login", `{"login":"a"}`, http.StatusBadRequest, "invalid request body"},
		{"logout without token", stubProvider{}, "/auth/logout", `{"userId":"fb-1"}`, http.StatusUnauthorized, "missing bearer token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, tt.provider)

			var resp map[string]any
			status := api.do(t, http.MethodPost, tt.path, tt.body, &resp)
			if status != tt.status {
				t.Fatalf("status = %d, want %d (%v)", status, tt.status, resp)
			}
			if tt.message != "" && resp["error"] != tt.message {
				t.Fatalf("error = %v, want %q", resp["error"], tt.message)
			}
		})
	}
}

func TestLoginReturnsUser(t *testing.T) {
	api := newTestAPI(t, stubProvider{})

	var resp userResponse
	api.do(t, http.MethodPost, "/auth/register", `{"name":"Amina","email":"amina@example.com","password":"secret1"}`, &resp)
	if resp.User == nil || resp.User.ID != "fb-1" || resp.User.Name != "Amina" || !resp.IsAuthenticated {
		t.Fatalf("register = %+v", resp)
	}
	if resp.IDToken != "token-fb-1" {
		t.Fatalf("id token = %q", resp.IDToken)
	}
	api.token = resp.IDToken

	var prefs entities.UserPreferences
	api.do(t, http.MethodGet, "/users/fb-1/preferences", "", &prefs)
	if prefs != entities.DefaultPreferences() {
		t.Fatalf("preferences = %+v", prefs)
	}

	if status := api.do(t, http.MethodPost, "/auth/logout", "", nil); status != http.StatusNoContent {
		t.Fatalf("logout status = %d", status)
	}
	if status := api.do(t, http.MethodGet, "/users/fb-1/preferences", "", nil); status != http.StatusUnauthorized {
		t.Fatalf("token after logout status = %d", status)
	}
}

func TestUserRoutesRequireOwnToken(t *testing.T) {
	api := newTestAPI(t, stubProvider{})
	api.signIn(t)
	own := api.token

	tests := []struct {
		name   string
		header string
		path   string
		status int
	}{
		{"no token", "", "/users/fb-1/dashboard", http.StatusUnauthorized},
		{"not bearer", "Basic " + own, "/users/fb-1/dashboard", http.StatusUnauthorized},
		{"unknown token", "Bearer forged", "/users/fb-1/dashboard", http.StatusUnauthorized},
		{"other user", "Bearer " + own, "/users/fb-2/dashboard", http.StatusForbidden},
		{"other user write", "Bearer " + own, "/users/fb-2/subscription", http.StatusForbidden},
		{"own user", "Bearer " + own, "/users/fb-1/dashboard", http.StatusOK},
		{"lowercase scheme", "bearer " + own, "/users/fb-1/streak", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodGet
			if strings.HasSuffix(tt.path, "/subscription") {
				method = http.MethodDelete
			}
			req, err := http.NewRequest(method, api.server.URL+tt.path, nil)
			if err != nil {
				t.Fatal(err)
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := api.server.Client().Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()

			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.status == http.StatusUnauthorized && resp.Header.Get("WWW-Authenticate") == "" {
				t.Fatal("401 without WWW-Authenticate")
			}
		})
	}
}

func TestLogoutSignsOutTokenOwner(t *testing.T) {
	api := newTestAPI(t, stubProvider{})
	api.signIn(t)

	// The body names someone else; only the token decides who is signed out.
	if status := api.do(t, http.MethodPost, "/auth/logout", `{"userId":"fb-2"}`, nil); status != http.StatusNoContent {
		t.Fatalf("logout status = %d", status)
	}
	if status := api.do(t, http.MethodPost, "/auth/logout", "", nil); status != http.StatusUnauthorized {
		t.Fatalf("second logout status = %d", status)
	}

	api.signIn(t)
	if status := api.do(t, http.MethodGet, "/users/fb-1/streak", "", nil); status != http.StatusOK {
		t.Fatalf("streak after signing in again = %d", status)
	}
}

func TestAuthenticateProviderOutage(t *testing.T) {
	api := newTestAPI(t, stubProvider{err: errors.New("connection refused")})
	api.token = "token-fb-1"

	if status := api.do(t, http.MethodGet, "/users/fb-1/dashboard", "", nil); status != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", status, http.StatusServiceUnavailable)
	}
}

func TestReadingFlow(t *testing.T) {
	api := newTestAPI(t, stubProvider{})
	api.signIn(t)

	var view service.ReadingView
	if status := api.do(t, http.MethodPost, "/users/fb-1/sessions", `{"surahId":114}`, &view); status != http.StatusCreated {
		t.Fatalf("open status = %d", status)
	}
	if view.Surah.ID != 114 || view.Position != 1 || view.AyahCount != 3 {
		t.Fatalf("open = %+v", view)
	}

	api.do(t, http.MethodPost, "/users/fb-1/ayahs/advance", "", &view)
	if view.Position != 2 {
		t.Fatalf("advance = %+v", view)
	}

	var adv advanceResponse
	if status := api.do(t, http.MethodPost, "/users/fb-1/ayahs/advance", `{"surahId":2,"ayahNumber":255}`, &adv); status != http.StatusOK {
		t.Fatalf("advance by ref status = %d", status)
	}
	if adv.Progress.TotalAyahsRead != 2 || adv.Progress.LastReadSurahID != 2 || adv.Streak.CurrentStreak != 1 {
		t.Fatalf("advance by ref = %+v", adv)
	}

	var streak entities.StreakRecord
	api.do(t, http.MethodGet, "/users/fb-1/streak", "", &streak)
	if streak.CurrentStreak != 1 || streak.LongestStreak != 1 {
		t.Fatalf("streak = %+v", streak)
	}

	var summary service.Summary
	api.do(t, http.MethodGet, "/users/fb-1/dashboard", "", &summary)
	if summary.XP != 20 || summary.TotalAyahsRead != 2 || summary.CurrentStreak != 1 {
		t.Fatalf("dashboard = %+v", summary)
	}

	var stopped sessionResponse
	if status := api.do(t, http.MethodDelete, "/users/fb-1/sessions", "", &stopped); status != http.StatusOK {
		t.Fatalf("stop status = %d", status)
	}
	if status := api.do(t, http.MethodDelete, "/users/fb-1/sessions", "", nil); status != http.StatusNotFound {
		t.Fatalf("second stop status = %d", status)
	}
	if status := api.do(t, http.MethodPost, "/users/fb-1/ayahs/advance", "", nil); status != http.StatusConflict {
		t.Fatalf("advance without surah status = %d", status)
	}
}

func TestTimerOnlySession(t *testing.T) {
	api := newTestAPI(t, stubProvider{})
	api.signIn(t)

	var resp sessionResponse
	if status := api.do(t, http.MethodPost, "/users/fb-1/sessions", "", &resp); status != http.StatusCreated {
		t.Fatalf("status = %d", status)
	}
	if resp.State != "running" || resp.UserID != "fb-1" {
		t.Fatalf("session = %+v", resp)
	}
}

func TestPreferencesPatch(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"goal", `{"dailyGoal":{"type":"ayahs","value":20}}`, http.StatusOK},
		{"timezone offset", `{"timezone":"UTC+3"}`, http.StatusOK},
		{"bad font size", `{"fontSize":"huge"}`, http.StatusBadRequest},
		{"bad reminder time", `{"reminderTime":"7pm"}`, http.StatusBadRequest},
		{"unknown reciter", `{"preferredReciter":"nobody"}`, http.StatusBadRequest},
		{"premium reciter", `{"preferredReciter":"maher_al_muaiqly"}`, http.StatusForbidden},
		{"empty body", ``, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, stubProvider{})
			api.signIn(t)
			if status := api.do(t, http.MethodPatch, "/users/fb-1/preferences", tt.body, nil); status != tt.status {
				t.Fatalf("status = %d, want %d", status, tt.status)
			}
		})
	}
}

func TestBookmarkEndpoints(t *testing.T) {
	api := newTestAPI(t, stubProvider{})
	api.signIn(t)

	var b entities.Bookmark
	if status := api.do(t, http.MethodPost, "/users/fb-1/bookmarks", `{"surahId":36,"ayahNumber":58,"note":"salam"}`, &b); status != http.StatusCreated {
		t.Fatalf("add status = %d", status)
	}
	if b.ID == "" || b.Note != "salam" {
		t.Fatalf("bookmark = %+v", b)
	}
	if status := api.do(t, http.MethodPost, "/users/fb-1/bookmarks", `{"surahId":36,"ayahNumber":58}`, nil); status != http.StatusConflict {
		t.Fatalf("duplicate status = %d", status)
	}
	if status := api.do(t, http.MethodPost, "/users/fb-1/bookmarks", `{"surahId":115,"ayahNumber":1}`, nil); status != http.StatusBadRequest {
		t.Fatalf("invalid ref status = %d", status)
	}

	var list []entities.Bookmark
	api.do(t, http.MethodGet, "/users/fb-1/bookmarks", "", &list)
	if len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("list = %+v", list)
	}

	if status := api.do(t, http.MethodDelete, "/users/fb-1/bookmarks/"+b.ID, "", nil); status != http.StatusNoContent {
		t.Fatalf("remove status = %d", status)
	}
	if status := api.do(t, http.MethodDelete, "/users/fb-1/bookmarks/"+b.ID, "", nil); status != http.StatusNotFound {
		t.Fatalf("second remove status = %d", status)
	}
}

func TestSurahEndpoints(t *testing.T) {
	api := newTestAPI(t, stubProvider{})

	var list []entities.Surah
	if status := api.do(t, http.MethodGet, "/surahs", "", &list); status != http.StatusOK || len(list) != 1 {
		t.Fatalf("surahs = %d %+v", status, list)
	}

	var resp surahResponse
	api.do(t, http.MethodGet, "/surahs/114?translation=en.asad", "", &resp)
	if resp.Surah == nil || len(resp.Ayahs) != 3 || resp.Ayahs[0].TextTranslation != "en.asad" {
		t.Fatalf("surah = %+v", resp)
	}

	tests := []struct {
		path   string
		status int
	}{
		{"/surahs/abc", http.StatusBadRequest},
		{"/surahs/0", http.StatusBadRequest},
		{"/surahs/3", http.StatusNotFound},
	}
	for _, tt := range tests {
		if status := api.do(t, http.MethodGet, tt.path, "", nil); status != tt.status {
			t.Errorf("GET %s = %d, want %d", tt.path, status, tt.status)
		}
	}
}

func TestSubscriptionUnlocksPremium(t *testing.T) {
	api := newTestAPI(t, stubProvider{})
	api.signIn(t)

	var feature struct {
		Available bool `json:"available"`
	}
	api.do(t, http.MethodGet, "/users/fb-1/features/"+entities.FeatureAdditionalReciters, "", &feature)
	if feature.Available {
		t.Fatal("premium feature available on the free tier")
	}

	if status := api.do(t, http.MethodPost, "/users/fb-1/subscription", `{"plan":"weekly"}`, nil); status != http.StatusBadRequest {
		t.Fatalf("unknown plan status = %d", status)
	}

	var sub entities.Subscription
	if status := api.do(t, http.MethodPost, "/users/fb-1/subscription", `{"plan":"yearly","platform":"web"}`, &sub); status != http.StatusCreated {
		t.Fatalf("purchase status = %d", status)
	}
	if sub.Tier != entities.TierPremium || sub.ExpiryDate.Sub(sub.StartDate) != 365*24*time.Hour {
		t.Fatalf("subscription = %+v", sub)
	}

	if status := api.do(t, http.MethodPatch, "/users/fb-1/preferences", `{"preferredReciter":"maher_al_muaiqly"}`, nil); status != http.StatusOK {
		t.Fatalf("premium reciter status = %d", status)
	}
	api.do(t, http.MethodGet, "/users/fb-1/features/"+entities.FeatureAdditionalReciters, "", &feature)
	if !feature.Available {
		t.Fatal("premium feature unavailable after purchase")
	}

	if status := api.do(t, http.MethodDelete, "/users/fb-1/subscription", "", nil); status != http.StatusNoContent {
		t.Fatalf("cancel status = %d", status)
	}
}
