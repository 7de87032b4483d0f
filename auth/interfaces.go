package auth

import "context"

// CredentialStore defines the contract for durable storage of the session
// credential. Implementations must make Save and Clear atomic with respect to
// concurrent Get calls.
type CredentialStore interface {
	// Get returns the stored credential. An empty Credential means no session.
	Get(ctx context.Context) (Credential, error)
	// Save replaces the stored pair.
	Save(ctx context.Context, accessToken, refreshToken string) error
	// Clear removes the stored pair.
	Clear(ctx context.Context) error
}

// Reloader is implemented by stores whose backing storage other processes
// may write. Reload reads the durable copy, bypassing any in-process cache.
type Reloader interface {
	Reload(ctx context.Context) (Credential, error)
}

// Gateway defines the identity backend operations. Refresh must not travel
// through the authorizing Transport.
type Gateway interface {
	Login(ctx context.Context, email, password string) (Credential, error)
	Register(ctx context.Context, name, email, password string) (Credential, error)
	// LoginWithGoogle exchanges a Google ID token for a session.
	LoginWithGoogle(ctx context.Context, idToken string) (Credential, error)
	Refresh(ctx context.Context, refreshToken string) (Credential, error)
	Logout(ctx context.Context, accessToken string) (string, error)
}
