package api

import (
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

// RequireAuth validates the bearer access token and stores the account id
// on the context.
func (s *Server) RequireAuth(c *gin.Context) {
	if s.bearerUserID(c) {
		c.Next()
		return
	}
	c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	c.Abort()
}

// RequireAuthOrCheckoutCookie additionally accepts the checkout continuity
// cookie, so a user returning from the payment redirect with lost client
// auth state can still verify the purchase and resume the interview. Only
// the checkout and interview routes mount this; everything else needs a
// real token.
func (s *Server) RequireAuthOrCheckoutCookie(c *gin.Context) {
	if s.bearerUserID(c) {
		c.Next()
		return
	}
	if uid, err := c.Cookie(checkoutCookieName); err == nil && uid != "" {
		c.Set(userIDKey, uid)
		c.Next()
		return
	}
	c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	c.Abort()
}

func (s *Server) bearerUserID(c *gin.Context) bool {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return false
	}
	userID, err := s.auth.Authenticate(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		return false
	}
	c.Set(userIDKey, userID)
	return true
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// isClientDisconnectError reports whether the error is the ordinary noise
// of a client closing its connection mid-response.
func isClientDisconnectError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.EPIPE) || errors.Is(opErr.Err, syscall.ECONNRESET) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "broken pipe")
}

// FilteredLogger logs requests the way gin.Default() does but drops the
// benign broken-pipe errors from clients that navigated away.
func FilteredLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}

		c.Next()

		lastError := c.Errors.Last()
		if lastError != nil && isClientDisconnectError(lastError.Err) {
			return
		}

		var errorMsg string
		if lastError != nil {
			errorMsg = lastError.Error()
		}

		log.Printf("[GIN] %v | %3d | %13v | %15s | %-7s %#v %s",
			time.Now().Format("2006/01/02 - 15:04:05"),
			c.Writer.Status(),
			time.Since(start),
			c.ClientIP(),
			c.Request.Method,
			path,
			errorMsg,
		)
	}
}
