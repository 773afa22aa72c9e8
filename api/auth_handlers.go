package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sturner103/letter-to-you/auth"
	"github.com/sturner103/letter-to-you/config"
	"github.com/sturner103/letter-to-you/store"
)

// SignUpHandler creates an account with email and password.
func (s *Server) SignUpHandler(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required"`
		Password    string `json:"password" binding:"required,min=8"`
		DisplayName string `json:"displayName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	profile, pair, err := s.auth.SignUp(req.Email, req.Password, req.DisplayName)
	if errors.Is(err, auth.ErrEmailTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sign-up failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile, "tokens": pair})
}

// SignInHandler checks credentials and hands back a token pair.
func (s *Server) SignInHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	profile, pair, err := s.auth.SignIn(req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sign-in failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile, "tokens": pair})
}

// MagicLinkHandler emails a single-use sign-in link. It responds the same
// whether or not the address has an account.
func (s *Server) MagicLinkHandler(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	token, err := s.auth.MagicLinkToken(req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create sign-in link", "details": err.Error()})
		return
	}

	signInURL := fmt.Sprintf("%s/auth/magic?token=%s", config.SiteURL, token)
	if s.emailClient != nil {
		if err := s.emailClient.SendMagicLinkEmail(req.Email, signInURL); err != nil {
			log.Printf("Failed to send magic link to %s: %v", req.Email, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "If that address exists, a sign-in link is on its way"})
}

// ConsumeMagicLinkHandler exchanges a magic-link token for a session.
func (s *Server) ConsumeMagicLinkHandler(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	profile, pair, err := s.auth.ConsumeMagicLink(req.Token)
	if errors.Is(err, auth.ErrInvalidToken) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired sign-in link"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sign-in failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile, "tokens": pair})
}

// OAuthHandler signs in an identity already verified by an external
// provider (the frontend completes the provider handshake).
func (s *Server) OAuthHandler(c *gin.Context) {
	var req struct {
		Provider    string `json:"provider" binding:"required"`
		Email       string `json:"email" binding:"required,email"`
		DisplayName string `json:"displayName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	profile, pair, err := s.auth.SignInExternal(req.Email, req.DisplayName, req.Provider)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sign-in failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile, "tokens": pair})
}

// RefreshHandler exchanges a refresh token for a fresh pair.
func (s *Server) RefreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	pair, err := s.auth.Refresh(req.RefreshToken)
	if errors.Is(err, auth.ErrInvalidToken) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token refresh failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": pair})
}

// SignOutHandler always succeeds from the caller's point of view; server
// cleanup past the sign-out timeout is abandoned.
func (s *Server) SignOutHandler(c *gin.Context) {
	s.auth.SignOut(currentUserID(c))
	clearCookie(c, checkoutCookieName)
	clearCookie(c, restoreCookieName)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ProfileHandler returns the signed-in account.
func (s *Server) ProfileHandler(c *gin.Context) {
	profile, err := s.auth.Profile(currentUserID(c))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
