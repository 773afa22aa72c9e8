// Package auth implements account creation, credential checks, and the
// access/refresh token pair handed to signed-in clients.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/sturner103/letter-to-you/models"
	"github.com/sturner103/letter-to-you/store"
	"github.com/sturner103/letter-to-you/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// TokenPair is the credential pair handed to a signed-in client.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Service struct {
	store *store.Store

	jwtSecret       string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	signOutTimeout  time.Duration
}

func NewService(st *store.Store, jwtSecret string, accessTTL, refreshTTL, signOutTimeout time.Duration) *Service {
	return &Service{
		store:           st,
		jwtSecret:       jwtSecret,
		accessTokenTTL:  accessTTL,
		refreshTokenTTL: refreshTTL,
		signOutTimeout:  signOutTimeout,
	}
}

// SignUp creates an account with a bcrypt-hashed password.
func (s *Service) SignUp(email, password, displayName string) (*models.Profile, *TokenPair, error) {
	email = normalizeEmail(email)

	if _, err := s.store.GetProfileByEmail(email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &models.Profile{
		ID:           utils.GenerateULID(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Provider:     "email",
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateProfile(profile); err != nil {
		return nil, nil, fmt.Errorf("failed to create account: %w", err)
	}

	pair, err := s.IssueTokens(profile.ID)
	if err != nil {
		return nil, nil, err
	}
	return profile, pair, nil
}

// SignIn checks credentials and issues a fresh token pair.
func (s *Service) SignIn(email, password string) (*models.Profile, *TokenPair, error) {
	profile, err := s.store.GetProfileByEmail(normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if profile.PasswordHash == "" {
		// OAuth-only account, no password to check against
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.IssueTokens(profile.ID)
	if err != nil {
		return nil, nil, err
	}
	return profile, pair, nil
}

// SignInExternal resolves an identity asserted by an external provider
// (OAuth callback or a consumed magic link) to a local account, creating
// one on first sign-in.
func (s *Service) SignInExternal(email, displayName, provider string) (*models.Profile, *TokenPair, error) {
	email = normalizeEmail(email)

	profile, err := s.store.GetProfileByEmail(email)
	if errors.Is(err, store.ErrNotFound) {
		profile = &models.Profile{
			ID:          utils.GenerateULID(),
			Email:       email,
			DisplayName: displayName,
			Provider:    provider,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.store.CreateProfile(profile); err != nil {
			return nil, nil, fmt.Errorf("failed to create account: %w", err)
		}
	} else if err != nil {
		return nil, nil, fmt.Errorf("failed to look up account: %w", err)
	}

	pair, err := s.IssueTokens(profile.ID)
	if err != nil {
		return nil, nil, err
	}
	return profile, pair, nil
}

// MagicLinkToken issues a short-lived single-purpose token embedded in a
// sign-in link. Consuming it goes through ConsumeMagicLink.
func (s *Service) MagicLinkToken(email string) (string, error) {
	claims := jwt.MapClaims{
		"email": normalizeEmail(email),
		"type":  "magic_link",
	}
	token, err := utils.GenerateJWT(claims, s.jwtSecret, 15*time.Minute)
	if err != nil {
		return "", fmt.Errorf("failed to generate magic link token: %w", err)
	}
	return token, nil
}

// ConsumeMagicLink validates a magic-link token and signs the address in,
// creating the account on first use.
func (s *Service) ConsumeMagicLink(token string) (*models.Profile, *TokenPair, error) {
	claims, err := utils.ValidateJWT(token, s.jwtSecret)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}
	if claims["type"] != "magic_link" {
		return nil, nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return nil, nil, ErrInvalidToken
	}
	return s.SignInExternal(email, "", "magic_link")
}

// IssueTokens mints an access/refresh pair for the given account.
func (s *Service) IssueTokens(userID string) (*TokenPair, error) {
	access, err := utils.GenerateJWT(jwt.MapClaims{
		"sub":  userID,
		"type": "access",
	}, s.jwtSecret, s.accessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, err := utils.GenerateJWT(jwt.MapClaims{
		"sub":  userID,
		"type": "refresh",
	}, s.jwtSecret, s.refreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (s *Service) Refresh(refreshToken string) (*TokenPair, error) {
	userID, err := s.userIDFromToken(refreshToken, "refresh")
	if err != nil {
		return nil, err
	}
	// The account may have been deleted since the token was minted.
	if _, err := s.store.GetProfileByID(userID); err != nil {
		return nil, ErrInvalidToken
	}
	return s.IssueTokens(userID)
}

// Authenticate validates a bearer access token and returns the account id.
func (s *Service) Authenticate(accessToken string) (string, error) {
	return s.userIDFromToken(accessToken, "access")
}

// SignOut clears any server-side session state. It always succeeds from
// the caller's point of view: tokens are stateless and cleanup work that
// does not finish within the sign-out timeout is abandoned.
func (s *Service) SignOut(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.signOutTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := s.store.DeleteSessionBackupForUser(userID); err != nil {
			log.Printf("Sign-out cleanup for user %s: %v", userID, err)
		}
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Printf("Sign-out cleanup for user %s timed out, clearing locally", userID)
	}
}

// Profile returns the account for a validated user id.
func (s *Service) Profile(userID string) (*models.Profile, error) {
	return s.store.GetProfileByID(userID)
}

func (s *Service) userIDFromToken(token, wantType string) (string, error) {
	claims, err := utils.ValidateJWT(token, s.jwtSecret)
	if err != nil {
		return "", ErrInvalidToken
	}
	if claims["type"] != wantType {
		return "", ErrInvalidToken
	}
	userID, _ := claims["sub"].(string)
	if userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
