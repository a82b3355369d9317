package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/tilawah-daily-bot/internal/auth"
	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
)

const PasswordResetSent = "Password reset email sent! Check your inbox."

const minPasswordLength = 6

// ErrUnauthenticated means a request carried no valid token of a signed-in user.
var ErrUnauthenticated = errors.New("authentication required")

// AuthError is an authentication failure with a message fit for the user.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

// authMessages holds the user-facing message per provider code for one
// operation, with the fallback for unknown codes.
type authMessages struct {
	byCode   map[string]string
	fallback string
}

var (
	loginMessages = authMessages{
		byCode: map[string]string{
			auth.CodeUserNotFound:      "No account found with this email",
			auth.CodeWrongPassword:     "Incorrect password",
			auth.CodeInvalidEmail:      "Invalid email address",
			auth.CodeUserDisabled:      "This account has been disabled",
			auth.CodeTooManyRequests:   "Too many failed attempts. Please try again later",
			auth.CodeInvalidCredential: "Invalid email or password",
		},
		fallback: "Login failed. Please try again.",
	}
	registerMessages = authMessages{
		byCode: map[string]string{
			auth.CodeEmailAlreadyInUse:   "An account with this email already exists",
			auth.CodeInvalidEmail:        "Invalid email address",
			auth.CodeWeakPassword:        "Password is too weak. Use at least 6 characters",
			auth.CodeOperationNotAllowed: "Email/password sign-up is disabled",
		},
		fallback: "Registration failed. Please try again.",
	}
	googleMessages = authMessages{
		byCode: map[string]string{
			auth.CodeInvalidCredential:      "Invalid Google credentials. Please try again.",
			auth.CodeAccountExistsDifferent: "An account already exists with this email using a different sign-in method",
			auth.CodeUserDisabled:           "This account has been disabled",
		},
		fallback: "Google Sign-In failed. Please try again.",
	}
	resetMessages = authMessages{
		byCode: map[string]string{
			auth.CodeUserNotFound:    "No account found with this email",
			auth.CodeInvalidEmail:    "Invalid email address",
			auth.CodeTooManyRequests: "Too many requests. Please try again later",
		},
		fallback: "Failed to send reset email. Please try again.",
	}
)

func (m authMessages) wrap(err error) *AuthError {
	var perr *auth.Error
	if errors.As(err, &perr) {
		if msg, ok := m.byCode[perr.Code]; ok {
			return &AuthError{Message: msg, Err: err}
		}
	}
	return &AuthError{Message: m.fallback, Err: err}
}

func invalid(message string) *AuthError {
	return &AuthError{Message: message}
}

// CodeExchanger trades an OAuth authorization code for an ID token.
type CodeExchanger interface {
	Exchange(ctx context.Context, code string) (string, error)
}

// Account is a signed-in user together with the tokens the client
// presents on later requests.
type Account struct {
	User         *entities.User
	IDToken      string
	RefreshToken string
}

type cachedToken struct {
	userID  string
	expires time.Time
}

// AuthService signs users in and out and keeps the persisted user record
// in step with the provider.
type AuthService struct {
	provider    auth.Provider
	google      CodeExchanger
	preferences *PreferenceStore
	streak      *StreakTracker
	sessions    *SessionManager
	logger      *zap.Logger

	// tokens remembers ID tokens already resolved, for tokenTTL.
	mu       sync.Mutex
	tokens   map[string]cachedToken
	tokenTTL time.Duration
}

// NewAuthService builds the service. Resolved tokens are kept for tokenTTL;
// zero sends every check to the provider.
func NewAuthService(
	provider auth.Provider,
	google CodeExchanger,
	preferences *PreferenceStore,
	streak *StreakTracker,
	sessions *SessionManager,
	tokenTTL time.Duration,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		provider:    provider,
		google:      google,
		preferences: preferences,
		streak:      streak,
		sessions:    sessions,
		logger:      logger,
		tokens:      make(map[string]cachedToken),
		tokenTTL:    tokenTTL,
	}
}

// Login signs in with email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, invalid("Email is required")
	}
	if password == "" {
		return nil, invalid("Password is required")
	}

	id, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		s.logger.Warn("login failed", zap.Error(err))
		return nil, loginMessages.wrap(err)
	}
	return s.signedIn(ctx, id, ""), nil
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, invalid("Email is required")
	}
	if len(password) < minPasswordLength {
		return nil, invalid("Password must be at least 6 characters")
	}

	id, err := s.provider.SignUp(ctx, email, password, strings.TrimSpace(name))
	if err != nil {
		s.logger.Warn("register failed", zap.Error(err))
		return nil, registerMessages.wrap(err)
	}
	return s.signedIn(ctx, id, strings.TrimSpace(name)), nil
}

// LoginWithGoogle signs in with a Google ID token.
func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*Account, error) {
	if idToken == "" {
		return nil, invalid("No Google token received")
	}

	id, err := s.provider.SignInWithGoogle(ctx, idToken)
	if err != nil {
		s.logger.Warn("google sign-in failed", zap.Error(err))
		return nil, googleMessages.wrap(err)
	}
	return s.signedIn(ctx, id, ""), nil
}

// LoginWithGoogleCode completes the OAuth code flow and signs in.
func (s *AuthService) LoginWithGoogleCode(ctx context.Context, code string) (*Account, error) {
	if s.google == nil || code == "" {
		return nil, invalid("No Google token received")
	}

	idToken, err := s.google.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("google code exchange failed", zap.Error(err))
		return nil, googleMessages.wrap(err)
	}
	return s.LoginWithGoogle(ctx, idToken)
}

// RequestPasswordReset asks the provider to email a reset link.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", invalid("Email is required")
	}

	if err := s.provider.SendPasswordReset(ctx, email); err != nil {
		s.logger.Warn("password reset failed", zap.Error(err))
		return "", resetMessages.wrap(err)
	}
	return PasswordResetSent, nil
}

// Verify resolves an ID token to the user it was issued to. The user must
// still be signed in, so tokens stop working at logout.
func (s *AuthService) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}

	userID, ok := s.cached(token)
	if !ok {
		id, err := s.provider.Lookup(ctx, token)
		if err != nil {
			var perr *auth.Error
			if errors.As(err, &perr) && perr.Code != auth.CodeInternal {
				return "", fmt.Errorf("%w: %s", ErrUnauthenticated, perr.Code)
			}
			return "", fmt.Errorf("lookup token: %w", err)
		}
		userID = id.UID
		s.remember(token, userID)
	}

	if !s.preferences.AuthState(ctx, userID).IsAuthenticated {
		return "", ErrUnauthenticated
	}
	return userID, nil
}

// Logout ends any reading session, clears the stored user and resets the streak.
func (s *AuthService) Logout(ctx context.Context, userID string) {
	s.sessions.Stop(ctx, userID)
	s.preferences.ClearAuthState(ctx, userID)
	s.streak.Reset(ctx, userID)
	s.forget(userID)

	s.logger.Info("user logged out", zap.String("user_id", userID))
}

// Subscribe delivers the signed-in user, or nil after a sign-out, on every change.
func (s *AuthService) Subscribe(fn func(ctx context.Context, userID string, user *entities.User)) {
	s.preferences.Subscribe(func(ctx context.Context, userID string, state entities.AuthState) {
		if !state.IsAuthenticated {
			fn(ctx, userID, nil)
			return
		}
		fn(ctx, userID, state.User)
	})
}

// signedIn stores the identity as the signed-in user, keeping preferences
// and subscription of a returning user.
func (s *AuthService) signedIn(ctx context.Context, id *auth.Identity, name string) *Account {
	if name == "" {
		name = id.DisplayName
	}
	createdAt := id.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.preferences.clock.Now().UTC()
	}

	user := entities.NewUser(id.UID, id.Email, name, createdAt)
	if prev := s.preferences.User(ctx, id.UID); prev != nil {
		user.Preferences = prev.Preferences
		user.Subscription = prev.Subscription
		user.Plan = prev.Plan
		user.Avatar = prev.Avatar
	}

	s.preferences.SaveAuthState(ctx, id.UID, entities.AuthState{User: user, IsAuthenticated: true})

	s.remember(id.IDToken, id.UID)

	s.logger.Info("user signed in", zap.String("user_id", id.UID))

	return &Account{User: user, IDToken: id.IDToken, RefreshToken: id.RefreshToken}
}

func (s *AuthService) cached(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.tokens[token]
	if !ok {
		return "", false
	}
	if !s.preferences.clock.Now().Before(c.expires) {
		delete(s.tokens, token)
		return "", false
	}
	return c.userID, true
}

func (s *AuthService) remember(token, userID string) {
	if token == "" || s.tokenTTL <= 0 {
		return
	}

	now := s.preferences.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for t, c := range s.tokens {
		if !now.Before(c.expires) {
			delete(s.tokens, t)
		}
	}
	s.tokens[token] = cachedToken{userID: userID, expires: now.Add(s.tokenTTL)}
}

func (s *AuthService) forget(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for t, c := range s.tokens {
		if c.userID == userID {
			delete(s.tokens, t)
		}
	}
}
