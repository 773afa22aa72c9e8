package email

import (
	"log"
	"time"

	"github.com/sturner103/letter-to-you/models"
	"github.com/sturner103/letter-to-you/store"
)

// Sweeper walks due pending scheduled emails and delivers them, keeping
// the letter's delivery status in step with each send.
type Sweeper struct {
	store  *store.Store
	sender Sender
	batch  int
}

func NewSweeper(st *store.Store, sender Sender, batchSize int) *Sweeper {
	return &Sweeper{store: st, sender: sender, batch: batchSize}
}

// SweepResult summarizes one pass over the due queue.
type SweepResult struct {
	Processed int `json:"processed"`
	Success   int `json:"success"`
	Failed    int `json:"failed"`
}

// Sweep sends every pending email whose scheduled time has passed, up to
// the batch size. A failing job is marked failed and does not stop the
// rest of the batch.
func (s *Sweeper) Sweep() (*SweepResult, error) {
	due, err := s.store.DuePendingEmails(s.batch)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{Processed: len(due)}
	if len(due) == 0 {
		return result, nil
	}
	log.Printf("Found %d emails to send", len(due))

	for _, job := range due {
		if err := s.deliver(job); err != nil {
			log.Printf("Failed to send email %s: %v", job.ID, err)
			if err := s.store.MarkEmailFailed(job.ID, err.Error()); err != nil {
				log.Printf("Failed to mark email %s failed: %v", job.ID, err)
			}
			if err := s.store.UpdateLetterDelivery(job.LetterID, models.DeliveryFailed, nil); err != nil {
				log.Printf("Failed to update letter %s delivery status: %v", job.LetterID, err)
			}
			result.Failed++
			continue
		}

		if err := s.store.MarkEmailSent(job.ID); err != nil {
			log.Printf("Failed to mark email %s sent: %v", job.ID, err)
		}
		now := time.Now().UTC()
		if err := s.store.UpdateLetterDelivery(job.LetterID, models.DeliveryDelivered, &now); err != nil {
			log.Printf("Failed to update letter %s delivery status: %v", job.LetterID, err)
		}
		result.Success++
	}
	return result, nil
}

func (s *Sweeper) deliver(job *models.ScheduledEmail) error {
	letter, err := s.store.GetLetter(job.LetterID, job.UserID)
	if err != nil {
		return err
	}
	profile, err := s.store.GetProfileByID(job.UserID)
	if err != nil {
		return err
	}
	return s.sender.SendLetterEmail(profile.Email, profile.DisplayName, letter)
}

// Run sweeps on a fixed interval until the stop channel closes.
func (s *Sweeper) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.Sweep(); err != nil {
				log.Printf("Scheduled email sweep failed: %v", err)
			}
		case <-stop:
			return
		}
	}
}
