package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/tilawah-daily-bot/internal/auth"
	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
)

type fakeProvider struct {
	err      error
	identity auth.Identity
	resets   []string
	lookups  int
}

func (p *fakeProvider) SignIn(_ context.Context, email, _ string) (*auth.Identity, error) {
	if p.err != nil {
		return nil, p.err
	}
	id := p.identity
	id.Email = email
	return &id, nil
}

func (p *fakeProvider) SignUp(_ context.Context, email, _, name string) (*auth.Identity, error) {
	if p.err != nil {
		return nil, p.err
	}
	id := p.identity
	id.Email = email
	id.DisplayName = name
	return &id, nil
}

func (p *fakeProvider) SignInWithGoogle(_ context.Context, _ string) (*auth.Identity, error) {
	if p.err != nil {
		return nil, p.err
	}
	id := p.identity
	return &id, nil
}

func (p *fakeProvider) SendPasswordReset(_ context.Context, email string) error {
	if p.err != nil {
		return p.err
	}
	p.resets = append(p.resets, email)
	return nil
}

func (p *fakeProvider) Lookup(_ context.Context, idToken string) (*auth.Identity, error) {
	p.lookups++
	if p.err != nil {
		return nil, p.err
	}
	if idToken == "" || idToken != p.identity.IDToken {
		return nil, &auth.Error{Code: auth.CodeInvalidToken}
	}
	id := p.identity
	return &id, nil
}

type fakeExchanger struct{ token string }

func (x fakeExchanger) Exchange(context.Context, string) (string, error) {
	if x.token == "" {
		return "", auth.ErrNoIDToken
	}
	return x.token, nil
}

func newAuthService(t *testing.T, e *env, provider auth.Provider) *AuthService {
	t.Helper()
	return NewAuthService(provider, fakeExchanger{token: "id-token"}, e.preferences, e.streak, e.sessions, time.Minute, zap.NewNop())
}

func authMessage(t *testing.T, err error) string {
	t.Helper()
	var aerr *AuthError
	if !errors.As(err, &aerr) {
		t.Fatalf("error %v is not an AuthError", err)
	}
	return aerr.Message
}

func TestAuthValidationBeforeProvider(t *testing.T) {
	e := newEnv(t)
	provider := &fakeProvider{err: errors.New("provider must not be called")}
	svc := newAuthService(t, e, provider)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want string
	}{
		{"login email", func() error { _, err := svc.Login(ctx, "  ", "secret"); return err }, "Email is required"},
		{"login password", func() error { _, err := svc.Login(ctx, "a@b.c", ""); return err }, "Password is required"},
		{"register email", func() error { _, err := svc.Register(ctx, "A", "", "secret1"); return err }, "Email is required"},
		{"register short", func() error { _, err := svc.Register(ctx, "A", "a@b.c", "12345"); return err }, "Password must be at least 6 characters"},
		{"google token", func() error { _, err := svc.LoginWithGoogle(ctx, ""); return err }, "No Google token received"},
		{"reset email", func() error { _, err := svc.RequestPasswordReset(ctx, ""); return err }, "Email is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := authMessage(t, tt.call()); got != tt.want {
				t.Fatalf("message = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAuthProviderCodeMessages(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		code string
		call func(*AuthService) error
		want string
	}{
		{"login wrong password", auth.CodeWrongPassword, func(s *AuthService) error {
			_, err := s.Login(ctx, "a@b.c", "x")
			return err
		}, "Incorrect password"},
		{"login unknown code", "auth/quota-exceeded", func(s *AuthService) error {
			_, err := s.Login(ctx, "a@b.c", "x")
			return err
		}, "Login failed. Please try again."},
		{"register email in use", auth.CodeEmailAlreadyInUse, func(s *AuthService) error {
			_, err := s.Register(ctx, "", "a@b.c", "secret1")
			return err
		}, "An account with this email already exists"},
		{"register unknown code", auth.CodeUserDisabled, func(s *AuthService) error {
			_, err := s.Register(ctx, "", "a@b.c", "secret1")
			return err
		}, "Registration failed. Please try again."},
		{"google other method", auth.CodeAccountExistsDifferent, func(s *AuthService) error {
			_, err := s.LoginWithGoogle(ctx, "tok")
			return err
		}, "An account already exists with this email using a different sign-in method"},
		{"reset throttled", auth.CodeTooManyRequests, func(s *AuthService) error {
			_, err := s.RequestPasswordReset(ctx, "a@b.c")
			return err
		}, "Too many requests. Please try again later"},
		{"reset unknown code", auth.CodeWrongPassword, func(s *AuthService) error {
			_, err := s.RequestPasswordReset(ctx, "a@b.c")
			return err
		}, "Failed to send reset email. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := &auth.Error{Code: tt.code}
			svc := newAuthService(t, e, &fakeProvider{err: perr})

			err := tt.call(svc)
			if got := authMessage(t, err); got != tt.want {
				t.Fatalf("message = %q, want %q", got, tt.want)
			}
			if !errors.Is(err, perr) {
				t.Fatal("provider error must stay reachable through Unwrap")
			}
		})
	}
}

func TestAuthLoginKeepsPreferencesOfReturningUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	created := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := newAuthService(t, e, &fakeProvider{identity: auth.Identity{UID: "fb1", CreatedAt: created}})

	acct, err := svc.Register(ctx, "Yusuf", "yusuf@example.com", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	user := acct.User
	if user.Name != "Yusuf" || !user.CreatedAt.Equal(created) {
		t.Fatalf("registered = %+v", user)
	}

	if _, err := e.preferences.SetFontSize(ctx, "fb1", entities.FontLarge); err != nil {
		t.Fatal(err)
	}

	acct, err = svc.Login(ctx, "yusuf@example.com", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	user = acct.User
	if user.Preferences.FontSize != entities.FontLarge {
		t.Fatal("login must keep the stored preferences")
	}
	if user.Name != "yusuf" {
		t.Fatalf("name without display name = %q, want the email local part", user.Name)
	}
	if state := e.preferences.AuthState(ctx, "fb1"); !state.IsAuthenticated {
		t.Fatal("user should be signed in")
	}
}

func TestAuthGoogleCodeAndReset(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	provider := &fakeProvider{identity: auth.Identity{UID: "g1", Email: "g@example.com", DisplayName: "G"}}
	svc := newAuthService(t, e, provider)

	acct, err := svc.LoginWithGoogleCode(ctx, "code")
	if err != nil {
		t.Fatal(err)
	}
	user := acct.User
	if user.ID != "g1" || user.Name != "G" {
		t.Fatalf("user = %+v", user)
	}

	msg, err := svc.RequestPasswordReset(ctx, " g@example.com ")
	if err != nil || msg != PasswordResetSent {
		t.Fatalf("reset = %q, %v", msg, err)
	}
	if len(provider.resets) != 1 || provider.resets[0] != "g@example.com" {
		t.Fatalf("resets = %v", provider.resets)
	}
}

func TestAuthLogoutAndSubscribe(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := newAuthService(t, e, &fakeProvider{identity: auth.Identity{UID: "u1"}})

	var users []*entities.User
	svc.Subscribe(func(_ context.Context, _ string, u *entities.User) {
		users = append(users, u)
	})

	if _, err := svc.Login(ctx, "a@b.c", "secret"); err != nil {
		t.Fatal(err)
	}
	e.streak.RegisterActivityToday(ctx, "u1")
	e.sessions.Start(ctx, "u1")

	svc.Logout(ctx, "u1")

	if len(users) != 2 || users[0] == nil || users[1] != nil {
		t.Fatalf("subscription saw %v", users)
	}
	if e.preferences.User(ctx, "u1") != nil {
		t.Fatal("user not cleared")
	}
	if s := e.streak.Streak(ctx, "u1"); s.CurrentStreak != 0 {
		t.Fatalf("streak not reset: %+v", s)
	}
	if _, ok := e.sessions.Active("u1"); ok {
		t.Fatal("session not stopped")
	}
}

func TestAuthVerify(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	provider := &fakeProvider{identity: auth.Identity{UID: "u1", IDToken: "tok-u1"}}
	svc := newAuthService(t, e, provider)

	if _, err := svc.Verify(ctx, "tok-u1"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("token of a signed-out user: err = %v", err)
	}

	acct, err := svc.Login(ctx, "a@b.c", "secret")
	if err != nil {
		t.Fatal(err)
	}
	if acct.IDToken != "tok-u1" {
		t.Fatalf("id token = %q", acct.IDToken)
	}

	tests := []struct {
		name    string
		token   string
		userID  string
		wantErr bool
	}{
		{"issued token", "tok-u1", "u1", false},
		{"empty", "", "", true},
		{"forged", "tok-other", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Verify(ctx, tt.token)
			if tt.wantErr {
				if !errors.Is(err, ErrUnauthenticated) {
					t.Fatalf("err = %v, want ErrUnauthenticated", err)
				}
				return
			}
			if err != nil || got != tt.userID {
				t.Fatalf("Verify = %q, %v; want %q", got, err, tt.userID)
			}
		})
	}

	lookups := provider.lookups
	if _, err := svc.Verify(ctx, "tok-u1"); err != nil {
		t.Fatal(err)
	}
	if provider.lookups != lookups {
		t.Fatal("a token issued at sign-in must be answered from the cache")
	}

	e.clock.Advance(2 * time.Minute)
	if _, err := svc.Verify(ctx, "tok-u1"); err != nil {
		t.Fatal(err)
	}
	if provider.lookups != lookups+1 {
		t.Fatal("an expired cache entry must be checked with the provider again")
	}

	svc.Logout(ctx, "u1")
	if _, err := svc.Verify(ctx, "tok-u1"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("token after logout: err = %v", err)
	}
}

func TestAuthVerifyProviderOutage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	outage := errors.New("connection refused")
	svc := newAuthService(t, e, &fakeProvider{err: outage})

	_, err := svc.Verify(ctx, "tok")
	if errors.Is(err, ErrUnauthenticated) || !errors.Is(err, outage) {
		t.Fatalf("err = %v, want the provider failure", err)
	}
}
