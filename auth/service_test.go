package auth

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sturner103/letter-to-you/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })
	st, err := store.Open(conn)
	if err != nil {
		t.Fatalf("failed to bootstrap schema: %v", err)
	}
	return NewService(st, "test-secret", time.Hour, 24*time.Hour, 3*time.Second)
}

func TestSignUpAndSignIn(t *testing.T) {
	svc := newTestService(t)

	profile, pair, err := svc.SignUp("User@Example.com", "correct horse", "Jo")
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if profile.Email != "user@example.com" {
		t.Fatalf("email not normalized: %q", profile.Email)
	}
	if profile.PasswordHash == "correct horse" {
		t.Fatalf("password stored in the clear")
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("missing token pair: %+v", pair)
	}

	if _, _, err := svc.SignUp("user@example.com", "other", "Jo"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate signup = %v, want ErrEmailTaken", err)
	}

	signedIn, _, err := svc.SignIn("USER@example.com", "correct horse")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if signedIn.ID != profile.ID {
		t.Fatalf("signed in as %s, want %s", signedIn.ID, profile.ID)
	}

	if _, _, err := svc.SignIn("user@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.SignIn("missing@example.com", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("missing account = %v, want ErrInvalidCredentials", err)
	}
}

func TestTokenRoles(t *testing.T) {
	svc := newTestService(t)
	profile, pair, err := svc.SignUp("user@example.com", "correct horse", "Jo")
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}

	userID, err := svc.Authenticate(pair.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if userID != profile.ID {
		t.Fatalf("authenticated as %s", userID)
	}

	// A refresh token is not an access token and vice versa.
	if _, err := svc.Authenticate(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token accepted as access token: %v", err)
	}
	if _, err := svc.Refresh(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token accepted as refresh token: %v", err)
	}

	fresh, err := svc.Refresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if _, err := svc.Authenticate(fresh.AccessToken); err != nil {
		t.Fatalf("refreshed access token invalid: %v", err)
	}

	if _, err := svc.Authenticate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage token = %v, want ErrInvalidToken", err)
	}
}

func TestSignInExternalCreatesOnce(t *testing.T) {
	svc := newTestService(t)

	first, _, err := svc.SignInExternal("oauth@example.com", "Jo", "google")
	if err != nil {
		t.Fatalf("SignInExternal returned error: %v", err)
	}
	second, _, err := svc.SignInExternal("OAuth@example.com", "Jo again", "google")
	if err != nil {
		t.Fatalf("second SignInExternal returned error: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("external sign-in created a second account")
	}

	// OAuth-only accounts cannot password sign-in.
	if _, _, err := svc.SignIn("oauth@example.com", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("password sign-in on oauth account = %v", err)
	}
}

func TestMagicLinkRoundTrip(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.MagicLinkToken("link@example.com")
	if err != nil {
		t.Fatalf("MagicLinkToken returned error: %v", err)
	}

	profile, pair, err := svc.ConsumeMagicLink(token)
	if err != nil {
		t.Fatalf("ConsumeMagicLink returned error: %v", err)
	}
	if profile.Email != "link@example.com" || pair.AccessToken == "" {
		t.Fatalf("unexpected result: %+v", profile)
	}

	if _, _, err := svc.ConsumeMagicLink("bogus"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("bogus magic link = %v, want ErrInvalidToken", err)
	}
	// An access token is not a magic-link token.
	if _, _, err := svc.ConsumeMagicLink(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token accepted as magic link: %v", err)
	}
}

func TestSignOutAlwaysReturns(t *testing.T) {
	svc := newTestService(t)
	done := make(chan struct{})
	go func() {
		svc.SignOut("u1")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("SignOut did not return within the bounded wait")
	}
}
