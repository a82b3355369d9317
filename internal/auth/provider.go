// Package auth signs identities in against the hosted identity provider.
package auth

import (
	"context"
	"fmt"
	"time"
)

// Provider error codes, in the form the client SDKs report them.
const (
	CodeUserNotFound           = "auth/user-not-found"
	CodeWrongPassword          = "auth/wrong-password"
	CodeInvalidEmail           = "auth/invalid-email"
	CodeUserDisabled           = "auth/user-disabled"
	CodeTooManyRequests        = "auth/too-many-requests"
	CodeInvalidCredential      = "auth/invalid-credential"
	CodeEmailAlreadyInUse      = "auth/email-already-in-use"
	CodeWeakPassword           = "auth/weak-password"
	CodeOperationNotAllowed    = "auth/operation-not-allowed"
	CodeAccountExistsDifferent = "auth/account-exists-with-different-credential"
	CodeInvalidToken           = "auth/invalid-user-token"
	CodeTokenExpired           = "auth/user-token-expired"
	CodeInternal               = "auth/internal-error"
)

// Identity is an account as returned by the provider.
type Identity struct {
	UID          string
	Email        string
	DisplayName  string
	CreatedAt    time.Time
	IDToken      string
	RefreshToken string
}

// Error is a failure reported by the provider.
type Error struct {
	Code   string
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// Provider is the hosted identity service.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	SignUp(ctx context.Context, email, password, displayName string) (*Identity, error)
	SignInWithGoogle(ctx context.Context, idToken string) (*Identity, error)
	SendPasswordReset(ctx context.Context, email string) error
	// Lookup resolves an ID token issued by a sign-in to its account.
	Lookup(ctx context.Context, idToken string) (*Identity, error)
}
