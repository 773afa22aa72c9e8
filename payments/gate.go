// Package payments wraps the Stripe checkout flow and the single-use
// purchase gate in front of paid letter modes.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/sturner103/letter-to-you/models"
	"github.com/sturner103/letter-to-you/store"
	"github.com/sturner103/letter-to-you/utils"
)

// ErrVerificationFailed means checkout completed in the browser but no
// matching purchase row landed within the retry window.
var ErrVerificationFailed = errors.New("payment could not be verified")

// CheckoutSession is what the client needs to hand the browser off to Stripe.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type Gate struct {
	store *store.Store

	secretKey     string
	webhookSecret string
	priceID       string
	siteURL       string
	disabled      bool

	verifyAttempts int
	verifyDelay    time.Duration
}

func NewGate(st *store.Store, secretKey, webhookSecret, priceID, siteURL string, disabled bool, verifyAttempts int, verifyDelay time.Duration) *Gate {
	stripe.Key = secretKey
	return &Gate{
		store:          st,
		secretKey:      secretKey,
		webhookSecret:  webhookSecret,
		priceID:        priceID,
		siteURL:        siteURL,
		disabled:       disabled,
		verifyAttempts: verifyAttempts,
		verifyDelay:    verifyDelay,
	}
}

// Access reports whether the user already holds a verified, unconsumed
// purchase for this exact mode. With payments disabled a synthetic
// purchase is minted so the rest of the flow is unchanged.
func (g *Gate) Access(userID, mode, modeName string) (*models.Purchase, error) {
	if g.disabled {
		return g.devPurchase(userID, mode, modeName)
	}

	purchase, err := g.store.GetUnusedPurchaseForMode(userID, mode)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

// CreateCheckout starts a Stripe checkout session for (user, mode). The
// caller must set the continuity cookie before redirecting the browser.
func (g *Gate) CreateCheckout(userID, mode, modeName string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(g.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(fmt.Sprintf(
			"%s/write/%s?payment=success&session_id={CHECKOUT_SESSION_ID}", g.siteURL, mode)),
		CancelURL:                stripe.String(fmt.Sprintf("%s/write/%s?payment=cancelled", g.siteURL, mode)),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
		AllowPromotionCodes:      stripe.Bool(true),
	}
	params.AddMetadata("userId", userID)
	params.AddMetadata("letterMode", mode)
	params.AddMetadata("modeName", modeName)

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return &CheckoutSession{SessionID: sess.ID, URL: sess.URL}, nil
}

// VerifyReturn handles the browser's return from checkout. The webhook
// that records the purchase races the redirect, so absence of the row is
// treated as "not yet" until the retry budget runs out.
func (g *Gate) VerifyReturn(ctx context.Context, sessionID, userID string) (*models.Purchase, error) {
	for attempt := 1; attempt <= g.verifyAttempts; attempt++ {
		purchase, err := g.store.GetPurchaseBySession(sessionID, userID)
		if err == nil {
			return purchase, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		if attempt == g.verifyAttempts {
			break
		}
		log.Printf("Purchase for session %s not recorded yet, retrying (%d/%d)",
			sessionID, attempt, g.verifyAttempts)
		select {
		case <-time.After(g.verifyDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, ErrVerificationFailed
}

// HandleWebhook verifies a Stripe event signature and, for completed
// checkouts, records the purchase. Duplicate deliveries are absorbed by
// the unique session id constraint.
func (g *Gate) HandleWebhook(payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return fmt.Errorf("webhook signature verification failed: %w", err)
	}

	if event.Type != "checkout.session.completed" {
		return nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("failed to decode checkout session: %w", err)
	}
	return g.recordCompletedCheckout(&sess)
}

func (g *Gate) recordCompletedCheckout(sess *stripe.CheckoutSession) error {
	userID := sess.Metadata["userId"]
	if userID == "" {
		return fmt.Errorf("checkout session %s has no userId metadata", sess.ID)
	}

	purchase := &models.Purchase{
		ID:              utils.GenerateULID(),
		UserID:          userID,
		LetterMode:      sess.Metadata["letterMode"],
		ModeName:        sess.Metadata["modeName"],
		Amount:          sess.AmountTotal,
		Currency:        string(sess.Currency),
		StripeSessionID: sess.ID,
		Status:          models.PurchaseCompleted,
		CreatedAt:       time.Now().UTC(),
	}
	if err := g.store.InsertPurchase(purchase); err != nil {
		return fmt.Errorf("failed to record purchase: %w", err)
	}
	log.Printf("Recorded purchase %s for user %s (mode %s)", purchase.ID, userID, purchase.LetterMode)
	return nil
}

// Consume marks a purchase used and attaches the letter it paid for. The
// conditional update at the data layer makes this first-writer-wins.
func (g *Gate) Consume(purchaseID, userID, letterID string) (*models.Purchase, error) {
	return g.store.MarkPurchaseUsed(purchaseID, userID, letterID)
}

// devPurchase backs the local-dev bypass: every access check succeeds
// against a fresh synthetic purchase.
func (g *Gate) devPurchase(userID, mode, modeName string) (*models.Purchase, error) {
	purchase := &models.Purchase{
		ID:              utils.GenerateULID(),
		UserID:          userID,
		LetterMode:      mode,
		ModeName:        modeName,
		Currency:        "usd",
		StripeSessionID: "dev_" + utils.GenerateULID(),
		Status:          models.PurchaseCompleted,
		CreatedAt:       time.Now().UTC(),
	}
	if err := g.store.InsertPurchase(purchase); err != nil {
		return nil, err
	}
	return purchase, nil
}
