// Package letters turns a finished interview into a persisted letter and
// drives the compare and archive flows on top of it.
package letters

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sturner103/letter-to-you/config"
	"github.com/sturner103/letter-to-you/interview"
	"github.com/sturner103/letter-to-you/llm"
	"github.com/sturner103/letter-to-you/models"
	"github.com/sturner103/letter-to-you/questions"
	"github.com/sturner103/letter-to-you/store"
	"github.com/sturner103/letter-to-you/utils"
)

// ErrGeneration wraps a text-generation failure. The interview session is
// returned to browsing with all answers intact, so the caller can retry.
var ErrGeneration = errors.New("letter generation failed")

type Orchestrator struct {
	store *store.Store
	gen   llm.Generator
}

func NewOrchestrator(st *store.Store, gen llm.Generator) *Orchestrator {
	return &Orchestrator{store: st, gen: gen}
}

// Result carries the generated letter plus bookkeeping outcomes the
// handler may want to surface. A failed save never suppresses the letter.
type Result struct {
	Letter *models.Letter `json:"letter"`
	Saved  bool           `json:"saved"`
}

// Generate runs exactly one generation call for a submitting session.
// The transcript is assembled in full before the network call goes out.
// Side effects after a successful generation (persist, consume purchase,
// schedule delivery) are best-effort and never invalidate the letter.
func (o *Orchestrator) Generate(ctx context.Context, sess *interview.Session, deliveryDate *time.Time) (*Result, error) {
	transcript := sess.Transcript()
	tone := sess.Tone()
	modeName := questions.ModeName(sess.Mode)

	content, err := o.gen.Generate(ctx,
		llm.LetterUserPrompt(modeName, transcript),
		llm.LetterSystemPrompt(tone),
		config.LetterMaxTokens)
	if err != nil {
		sess.FailGeneration(err.Error())
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	now := time.Now().UTC()
	letter := &models.Letter{
		ID:             utils.GenerateULID(),
		UserID:         sess.UserID,
		Mode:           sess.Mode,
		Tone:           tone,
		Questions:      sess.QAPairs(),
		Content:        content,
		WordCount:      len(strings.Fields(content)),
		DeliveryStatus: models.DeliveryImmediate,
		CreatedAt:      now,
	}
	if deliveryDate != nil && deliveryDate.After(now) {
		letter.DeliveryStatus = models.DeliveryScheduled
		letter.DeliveryDate = deliveryDate
	}

	result := &Result{Letter: letter, Saved: true}
	if err := o.store.InsertLetter(letter); err != nil {
		// The letter was already produced; saving is bookkeeping.
		log.Printf("Failed to save letter for user %s: %v", sess.UserID, err)
		result.Saved = false
	}

	if result.Saved && letter.DeliveryStatus == models.DeliveryScheduled {
		o.scheduleDelivery(letter)
	}

	if sess.PurchaseID != "" {
		if _, err := o.store.MarkPurchaseUsed(sess.PurchaseID, sess.UserID, letter.ID); err != nil {
			// Losing the consume race must not fail the user's letter.
			log.Printf("Failed to mark purchase %s used: %v", sess.PurchaseID, err)
		}
	}

	sess.Complete()
	return result, nil
}

func (o *Orchestrator) scheduleDelivery(letter *models.Letter) {
	email := &models.ScheduledEmail{
		ID:           utils.GenerateULID(),
		UserID:       letter.UserID,
		LetterID:     letter.ID,
		ScheduledFor: *letter.DeliveryDate,
		Status:       models.EmailPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := o.store.InsertScheduledEmail(email); err != nil {
		log.Printf("Failed to schedule delivery for letter %s: %v", letter.ID, err)
	}
}

// GenerateFromTranscript is the quick-mode path: the caller supplies a
// preformatted transcript instead of a live interview session. The letter
// is still persisted and the archive cache still needs invalidating.
func (o *Orchestrator) GenerateFromTranscript(ctx context.Context, userID, mode, modeName string, tone models.Tone, transcript string, deliveryDate *time.Time) (*Result, error) {
	content, err := o.gen.Generate(ctx,
		llm.LetterUserPrompt(modeName, transcript),
		llm.LetterSystemPrompt(tone),
		config.LetterMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	now := time.Now().UTC()
	letter := &models.Letter{
		ID:             utils.GenerateULID(),
		UserID:         userID,
		Mode:           mode,
		Tone:           tone,
		Content:        content,
		WordCount:      len(strings.Fields(content)),
		DeliveryStatus: models.DeliveryImmediate,
		CreatedAt:      now,
	}
	if deliveryDate != nil && deliveryDate.After(now) {
		letter.DeliveryStatus = models.DeliveryScheduled
		letter.DeliveryDate = deliveryDate
	}

	result := &Result{Letter: letter, Saved: true}
	if err := o.store.InsertLetter(letter); err != nil {
		log.Printf("Failed to save letter for user %s: %v", userID, err)
		result.Saved = false
	}
	if result.Saved && letter.DeliveryStatus == models.DeliveryScheduled {
		o.scheduleDelivery(letter)
	}
	return result, nil
}

// GenerateCheckin produces the short reflection attached to a weekly
// check-in. Failures degrade to an empty reflection.
func (o *Orchestrator) GenerateCheckin(ctx context.Context, c *models.CheckIn) string {
	text, err := o.gen.Generate(ctx, llm.CheckinPrompt(c),
		"Respond with only the reflection text, no preamble.",
		config.CheckinMaxTokens)
	if err != nil {
		log.Printf("Check-in reflection generation failed: %v", err)
		return ""
	}
	return strings.TrimSpace(text)
}
