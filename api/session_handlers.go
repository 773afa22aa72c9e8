package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sturner103/letter-to-you/config"
	"github.com/sturner103/letter-to-you/models"
	"github.com/sturner103/letter-to-you/store"
	"github.com/sturner103/letter-to-you/utils"
)

const (
	// checkoutCookieName carries the raw user id across the payment
	// redirect so an anonymous return can still be re-associated.
	checkoutCookieName = "bl_uid"
	// restoreCookieName carries the opaque single-use restore token,
	// never the credentials themselves.
	restoreCookieName = "bl_restore"
)

func setContinuityCookie(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(ttl.Seconds()), "/", "", true, true)
}

func clearCookie(c *gin.Context, name string) {
	c.SetCookie(name, "", -1, "/", "", true, true)
}

// CheckoutCookieHandler persists the user id into the short-lived
// continuity cookie ahead of the checkout redirect.
func (s *Server) CheckoutCookieHandler(c *gin.Context) {
	setContinuityCookie(c, checkoutCookieName, currentUserID(c), config.CheckoutCookieTTL)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// StoreSessionHandler backs up the client's credential pair behind a
// random restore token before the cross-site redirect. The token goes in
// a cookie; the credentials stay server-side.
func (s *Server) StoreSessionHandler(c *gin.Context) {
	var req struct {
		AccessToken  string `json:"accessToken" binding:"required"`
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing accessToken or refreshToken"})
		return
	}

	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create restore token", "details": err.Error()})
		return
	}

	now := time.Now().UTC()
	backup := &models.SessionBackup{
		UserID:       currentUserID(c),
		RestoreToken: token,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		CreatedAt:    now,
		ExpiresAt:    now.Add(config.SessionBackupTTL),
	}
	if err := s.store.UpsertSessionBackup(backup); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store session", "details": err.Error()})
		return
	}

	setContinuityCookie(c, restoreCookieName, token, config.SessionBackupTTL)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RestoreSessionHandler exchanges the restore token for the credential
// pair exactly once. A missing or expired backup is a normal outcome, not
// an error: the caller falls back to the unauthenticated flow.
func (s *Server) RestoreSessionHandler(c *gin.Context) {
	token, err := c.Cookie(restoreCookieName)
	if err != nil || token == "" {
		token = c.Query("token")
	}
	if token == "" {
		c.JSON(http.StatusOK, gin.H{"restored": false})
		return
	}

	backup, err := s.store.TakeSessionBackup(token)
	if errors.Is(err, store.ErrNotFound) {
		clearCookie(c, restoreCookieName)
		c.JSON(http.StatusOK, gin.H{"restored": false})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to restore session", "details": err.Error()})
		return
	}

	clearCookie(c, restoreCookieName)
	c.JSON(http.StatusOK, gin.H{
		"restored": true,
		"tokens": gin.H{
			"accessToken":  backup.AccessToken,
			"refreshToken": backup.RefreshToken,
		},
	})
}
