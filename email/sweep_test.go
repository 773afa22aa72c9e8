package email

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sturner103/letter-to-you/models"
	"github.com/sturner103/letter-to-you/store"
)

type stubSender struct {
	sent []string
	err  error
}

func (s *stubSender) SendLetterEmail(toEmail, displayName string, letter *models.Letter) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, letter.ID)
	return nil
}

func newSweepFixture(t *testing.T) *store.Store {
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

	now := time.Now().UTC()
	if err := st.CreateProfile(&models.Profile{
		ID: "u1", Email: "user@example.com", DisplayName: "Jo",
		Provider: "email", CreatedAt: now,
	}); err != nil {
		t.Fatalf("CreateProfile returned error: %v", err)
	}
	past := now.Add(-time.Hour)
	if err := st.InsertLetter(&models.Letter{
		ID: "l1", UserID: "u1", Mode: "general", Tone: models.ToneWarm,
		Content: "Dear Jo", DeliveryStatus: models.DeliveryScheduled,
		DeliveryDate: &past, CreatedAt: now.Add(-2 * time.Hour),
	}); err != nil {
		t.Fatalf("InsertLetter returned error: %v", err)
	}
	if err := st.InsertScheduledEmail(&models.ScheduledEmail{
		ID: "e1", UserID: "u1", LetterID: "l1",
		ScheduledFor: past, Status: models.EmailPending, CreatedAt: now,
	}); err != nil {
		t.Fatalf("InsertScheduledEmail returned error: %v", err)
	}
	return st
}

func TestSweepDeliversDueEmail(t *testing.T) {
	st := newSweepFixture(t)
	sender := &stubSender{}
	sweeper := NewSweeper(st, sender, 50)

	result, err := sweeper.Sweep()
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if result.Processed != 1 || result.Success != 1 || result.Failed != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "l1" {
		t.Fatalf("sent letters: %v", sender.sent)
	}

	letter, err := st.GetLetter("l1", "u1")
	if err != nil {
		t.Fatalf("GetLetter returned error: %v", err)
	}
	if letter.DeliveryStatus != models.DeliveryDelivered || letter.DeliveredAt == nil {
		t.Fatalf("letter not marked delivered: %+v", letter)
	}

	// A second sweep finds nothing; the job left the pending queue.
	result, err = sweeper.Sweep()
	if err != nil {
		t.Fatalf("second Sweep returned error: %v", err)
	}
	if result.Processed != 0 {
		t.Fatalf("second sweep processed %d", result.Processed)
	}
}

func TestSweepMarksFailures(t *testing.T) {
	st := newSweepFixture(t)
	sender := &stubSender{err: errors.New("smtp down")}
	sweeper := NewSweeper(st, sender, 50)

	result, err := sweeper.Sweep()
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if result.Failed != 1 || result.Success != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	letter, err := st.GetLetter("l1", "u1")
	if err != nil {
		t.Fatalf("GetLetter returned error: %v", err)
	}
	if letter.DeliveryStatus != models.DeliveryFailed {
		t.Fatalf("letter delivery status = %s, want failed", letter.DeliveryStatus)
	}

	// Failed jobs are not retried by the next sweep.
	result, err = sweeper.Sweep()
	if err != nil {
		t.Fatalf("second Sweep returned error: %v", err)
	}
	if result.Processed != 0 {
		t.Fatalf("failed job re-entered the queue")
	}
}

func TestSweepBatchLimit(t *testing.T) {
	st := newSweepFixture(t)
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	for _, id := range []string{"l2", "l3"} {
		if err := st.InsertLetter(&models.Letter{
			ID: id, UserID: "u1", Mode: "general", Tone: models.ToneWarm,
			Content: "more", DeliveryStatus: models.DeliveryScheduled,
			DeliveryDate: &past, CreatedAt: now.Add(-2 * time.Hour),
		}); err != nil {
			t.Fatalf("InsertLetter returned error: %v", err)
		}
		if err := st.InsertScheduledEmail(&models.ScheduledEmail{
			ID: "e-" + id, UserID: "u1", LetterID: id,
			ScheduledFor: past, Status: models.EmailPending, CreatedAt: now,
		}); err != nil {
			t.Fatalf("InsertScheduledEmail returned error: %v", err)
		}
	}

	sender := &stubSender{}
	sweeper := NewSweeper(st, sender, 2)

	result, err := sweeper.Sweep()
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if result.Processed != 2 {
		t.Fatalf("batch sweep processed %d, want 2", result.Processed)
	}
	result, err = sweeper.Sweep()
	if err != nil {
		t.Fatalf("second Sweep returned error: %v", err)
	}
	if result.Processed != 1 {
		t.Fatalf("remainder sweep processed %d, want 1", result.Processed)
	}
}
