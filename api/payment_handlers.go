package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sturner103/letter-to-you/config"
	"github.com/sturner103/letter-to-you/payments"
	"github.com/sturner103/letter-to-you/questions"
	"github.com/sturner103/letter-to-you/store"
)

// CreateCheckoutHandler starts a checkout session and sets the continuity
// cookie so the user can be re-associated after the cross-site redirect.
func (s *Server) CreateCheckoutHandler(c *gin.Context) {
	var req struct {
		Mode string `json:"mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing mode"})
		return
	}
	if !questions.KnownMode(req.Mode) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown mode"})
		return
	}

	userID := currentUserID(c)
	modeName := questions.ModeName(req.Mode)

	// An existing unused purchase short-circuits checkout entirely.
	purchase, err := s.gate.Access(userID, req.Mode, modeName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Purchase check failed", "details": err.Error()})
		return
	}
	if purchase != nil {
		c.JSON(http.StatusOK, gin.H{"alreadyPurchased": true, "purchase": purchase})
		return
	}

	setContinuityCookie(c, checkoutCookieName, userID, config.CheckoutCookieTTL)

	session, err := s.gate.CreateCheckout(userID, req.Mode, modeName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}

// VerifyCheckoutHandler handles the browser's return from checkout. The
// purchase row may not have landed yet (webhook race), so the gate retries
// briefly before giving up.
func (s *Server) VerifyCheckoutHandler(c *gin.Context) {
	var req struct {
		SessionID string `json:"sessionId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing sessionId"})
		return
	}

	purchase, err := s.gate.VerifyReturn(c.Request.Context(), req.SessionID, currentUserID(c))
	if errors.Is(err, payments.ErrVerificationFailed) {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":   "Payment could not be verified",
			"details": "If you completed checkout, contact support with your session id",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase": purchase})
}

// ListPurchasesHandler returns the user's unused purchases.
func (s *Server) ListPurchasesHandler(c *gin.Context) {
	purchases, err := s.store.ListUnusedPurchases(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list purchases", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}

// MarkPurchaseUsedHandler consumes a purchase explicitly. Generation does
// this itself; the endpoint exists for reconciliation.
func (s *Server) MarkPurchaseUsedHandler(c *gin.Context) {
	var req struct {
		PurchaseID string `json:"purchaseId" binding:"required"`
		LetterID   string `json:"letterId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing purchaseId or letterId"})
		return
	}

	purchase, err := s.gate.Consume(req.PurchaseID, currentUserID(c), req.LetterID)
	if errors.Is(err, store.ErrAlreadyUsed) {
		c.JSON(http.StatusConflict, gin.H{"error": "Purchase already used"})
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Purchase not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark purchase used", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase": purchase})
}

// StripeWebhookHandler records completed checkouts. Signature failures are
// 400s so Stripe retries only genuine delivery problems.
func (s *Server) StripeWebhookHandler(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read payload"})
		return
	}

	if err := s.gate.HandleWebhook(payload, c.GetHeader("Stripe-Signature")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
