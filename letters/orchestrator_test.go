package letters

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sturner103/letter-to-you/interview"
	"github.com/sturner103/letter-to-you/models"
	"github.com/sturner103/letter-to-you/store"
)

type stubGenerator struct {
	calls   int
	prompts []string
	systems []string
	reply   string
	err     error
}

func (g *stubGenerator) Generate(ctx context.Context, prompt, systemInstructions string, maxTokens int) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, prompt)
	g.systems = append(g.systems, systemInstructions)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func newTestStore(t *testing.T) *store.Store {
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
	return st
}

func submittingSession(t *testing.T) *interview.Session {
	t.Helper()
	sess, err := interview.New("sess1", "u1", "breakup", "p1")
	if err != nil {
		t.Fatalf("interview.New returned error: %v", err)
	}
	qs := sess.Questions()
	if err := sess.Answer(qs[0].ID, "It ended badly but I'm learning."); err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}
	for {
		if sess.Next() == interview.OutcomeSubmit {
			return sess
		}
	}
}

func TestGeneratePersistsAndConsumes(t *testing.T) {
	st := newTestStore(t)
	if err := st.InsertPurchase(&models.Purchase{
		ID: "p1", UserID: "u1", LetterMode: "breakup", ModeName: "After a Breakup",
		StripeSessionID: "cs_1", Status: models.PurchaseCompleted,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("InsertPurchase returned error: %v", err)
	}

	gen := &stubGenerator{reply: "Dear you,\n\nYou made it through."}
	orch := NewOrchestrator(st, gen)
	sess := submittingSession(t)

	result, err := orch.Generate(context.Background(), sess, nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("generator called %d times, want exactly 1", gen.calls)
	}
	if !result.Saved {
		t.Fatalf("letter not saved")
	}
	if result.Letter.WordCount != len(strings.Fields(gen.reply)) {
		t.Fatalf("word count = %d", result.Letter.WordCount)
	}
	if result.Letter.DeliveryStatus != models.DeliveryImmediate {
		t.Fatalf("delivery status = %s", result.Letter.DeliveryStatus)
	}
	if sess.State() != interview.StateDone {
		t.Fatalf("session state = %v, want done", sess.State())
	}

	// Transcript and tone made it into the generation call.
	if !strings.Contains(gen.prompts[0], "It ended badly but I'm learning.") {
		t.Fatalf("prompt missing transcript:\n%s", gen.prompts[0])
	}
	if !strings.Contains(gen.prompts[0], "After a Breakup") {
		t.Fatalf("prompt missing mode name:\n%s", gen.prompts[0])
	}

	saved, err := st.GetLetter(result.Letter.ID, "u1")
	if err != nil {
		t.Fatalf("GetLetter returned error: %v", err)
	}
	if len(saved.Questions) != len(sess.Questions()) {
		t.Fatalf("saved %d QA pairs, want %d", len(saved.Questions), len(sess.Questions()))
	}

	// The purchase was consumed and points at the letter.
	if _, err := st.MarkPurchaseUsed("p1", "u1", "other"); !errors.Is(err, store.ErrAlreadyUsed) {
		t.Fatalf("purchase not consumed: %v", err)
	}
}

func TestGenerateScheduledDelivery(t *testing.T) {
	st := newTestStore(t)
	gen := &stubGenerator{reply: "See you in a year."}
	orch := NewOrchestrator(st, gen)
	sess := submittingSession(t)

	future := time.Now().UTC().Add(365 * 24 * time.Hour)
	result, err := orch.Generate(context.Background(), sess, &future)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if result.Letter.DeliveryStatus != models.DeliveryScheduled {
		t.Fatalf("delivery status = %s, want scheduled", result.Letter.DeliveryStatus)
	}

	// Not due yet, so the sweep queue must be empty.
	due, err := st.DuePendingEmails(10)
	if err != nil {
		t.Fatalf("DuePendingEmails returned error: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("future letter already due")
	}
}

func TestGenerateFailureKeepsSessionRetryable(t *testing.T) {
	st := newTestStore(t)
	gen := &stubGenerator{err: errors.New("model unavailable")}
	orch := NewOrchestrator(st, gen)
	sess := submittingSession(t)

	_, err := orch.Generate(context.Background(), sess, nil)
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("Generate = %v, want ErrGeneration", err)
	}
	if sess.State() != interview.StateBrowsing {
		t.Fatalf("session state = %v, want browsing", sess.State())
	}

	// Retry with a working generator succeeds against the same session.
	if got := sess.Next(); got != interview.OutcomeSubmit {
		t.Fatalf("retry Next() = %v, want submit", got)
	}
	gen.err = nil
	gen.reply = "Second try."
	if _, err := orch.Generate(context.Background(), sess, nil); err != nil {
		t.Fatalf("retry Generate returned error: %v", err)
	}
}

func TestGenerateFromTranscript(t *testing.T) {
	st := newTestStore(t)
	gen := &stubGenerator{reply: "A quick letter."}
	orch := NewOrchestrator(st, gen)

	result, err := orch.GenerateFromTranscript(context.Background(),
		"u1", "quick", "Quick Letter", models.ToneWarm,
		"Q1: How are you?\nA1: Stretched thin but hopeful.", nil)
	if err != nil {
		t.Fatalf("GenerateFromTranscript returned error: %v", err)
	}
	if !result.Saved {
		t.Fatalf("quick letter not saved")
	}
	if !strings.Contains(gen.prompts[0], "Stretched thin but hopeful.") {
		t.Fatalf("prompt missing transcript")
	}
	if !strings.Contains(gen.systems[0], "Warm & Gentle") {
		t.Fatalf("system instructions missing tone register")
	}
}

func TestCompareOldestFirst(t *testing.T) {
	st := newTestStore(t)
	base := time.Now().UTC().Add(-48 * time.Hour)
	older := &models.Letter{
		ID: "l-old", UserID: "u1", Mode: "general", Tone: models.ToneWarm,
		Content: "the earlier one", DeliveryStatus: models.DeliveryImmediate, CreatedAt: base,
	}
	newer := &models.Letter{
		ID: "l-new", UserID: "u1", Mode: "general", Tone: models.ToneWarm,
		Content: "the later one", DeliveryStatus: models.DeliveryImmediate, CreatedAt: base.Add(24 * time.Hour),
	}
	for _, l := range []*models.Letter{older, newer} {
		if err := st.InsertLetter(l); err != nil {
			t.Fatalf("InsertLetter returned error: %v", err)
		}
	}

	gen := &stubGenerator{reply: "You have grown."}
	orch := NewOrchestrator(st, gen)

	// Selected newest first; the prompt must still lead with the older.
	cmp, err := orch.Compare(context.Background(), "u1", "l-new", "l-old")
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if cmp.Earlier.ID != "l-old" || cmp.Later.ID != "l-new" {
		t.Fatalf("comparison order wrong: %s then %s", cmp.Earlier.ID, cmp.Later.ID)
	}
	prompt := gen.prompts[0]
	if strings.Index(prompt, "the earlier one") > strings.Index(prompt, "the later one") {
		t.Fatalf("prompt not oldest-first:\n%s", prompt)
	}

	if _, err := orch.Compare(context.Background(), "u1", "l-old", "l-old"); !errors.Is(err, ErrSameLetter) {
		t.Fatalf("self-compare = %v, want ErrSameLetter", err)
	}
	if _, err := orch.Compare(context.Background(), "u2", "l-old", "l-new"); err == nil {
		t.Fatalf("expected error comparing another user's letters")
	}
}

func TestSelectionTwoSlots(t *testing.T) {
	var sel Selection

	if ready, err := sel.Toggle("a"); err != nil || ready {
		t.Fatalf("first pick: ready=%v err=%v", ready, err)
	}
	if ready, err := sel.Toggle("b"); err != nil || !ready {
		t.Fatalf("second pick: ready=%v err=%v", ready, err)
	}
	// Third distinct pick is refused, not evicting.
	if _, err := sel.Toggle("c"); !errors.Is(err, ErrSelectionFull) {
		t.Fatalf("third pick = %v, want ErrSelectionFull", err)
	}
	if got := sel.IDs(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("selection mutated by rejected pick: %v", got)
	}

	// Toggling a selected id deselects it and reopens the slot.
	if ready, err := sel.Toggle("a"); err != nil || ready {
		t.Fatalf("deselect: ready=%v err=%v", ready, err)
	}
	if ready, err := sel.Toggle("c"); err != nil || !ready {
		t.Fatalf("refill: ready=%v err=%v", ready, err)
	}
}

func TestListCacheInvalidate(t *testing.T) {
	st := newTestStore(t)
	cache := NewListCache(st, time.Hour)

	first, err := cache.Get("u1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(first) != 0 {
		t.Fatalf("expected empty archive")
	}

	letter := &models.Letter{
		ID: "l1", UserID: "u1", Mode: "general", Tone: models.ToneWarm,
		Content: "hello", DeliveryStatus: models.DeliveryImmediate,
		CreatedAt: time.Now().UTC(),
	}
	if err := st.InsertLetter(letter); err != nil {
		t.Fatalf("InsertLetter returned error: %v", err)
	}

	// Fresh entry still serves the cached empty list.
	cached, err := cache.Get("u1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(cached) != 0 {
		t.Fatalf("fresh cache refetched unexpectedly")
	}

	cache.Invalidate("u1")
	refreshed, err := cache.Get("u1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(refreshed) != 1 {
		t.Fatalf("invalidated cache returned %d letters", len(refreshed))
	}
}
