package letters

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sturner103/letter-to-you/config"
	"github.com/sturner103/letter-to-you/llm"
	"github.com/sturner103/letter-to-you/models"
)

var (
	// ErrSelectionFull means two letters are already picked; a third
	// selection is rejected rather than evicting one.
	ErrSelectionFull  = errors.New("two letters already selected, deselect one first")
	ErrSelectionShort = errors.New("select two letters to compare")
	ErrSameLetter     = errors.New("cannot compare a letter with itself")
)

// Selection is the two-slot pick list behind the compare view. Toggling a
// selected id removes it; a third distinct id is refused.
type Selection struct {
	mu  sync.Mutex
	ids []string
}

// Toggle adds or removes a letter id and reports whether two letters are
// now selected.
func (s *Selection) Toggle(id string) (ready bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return false, nil
		}
	}
	if len(s.ids) >= 2 {
		return true, ErrSelectionFull
	}
	s.ids = append(s.ids, id)
	return len(s.ids) == 2, nil
}

// IDs returns the current selection in pick order.
func (s *Selection) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ids...)
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = nil
}

// Comparison is the generated narrative plus the two letters it covers,
// oldest first.
type Comparison struct {
	Earlier   *models.Letter `json:"earlier"`
	Later     *models.Letter `json:"later"`
	Narrative string         `json:"narrative"`
}

// Compare fetches both letters, orders them oldest-first regardless of
// selection order, and asks the model for a change narrative.
func (o *Orchestrator) Compare(ctx context.Context, userID string, firstID, secondID string) (*Comparison, error) {
	if firstID == secondID {
		return nil, ErrSameLetter
	}

	first, err := o.store.GetLetter(firstID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load letter %s: %w", firstID, err)
	}
	second, err := o.store.GetLetter(secondID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load letter %s: %w", secondID, err)
	}

	older, newer := first, second
	if second.CreatedAt.Before(first.CreatedAt) {
		older, newer = second, first
	}

	narrative, err := o.gen.Generate(ctx,
		llm.ComparePrompt(older, newer),
		llm.CompareSystemPrompt(),
		config.CompareMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	return &Comparison{Earlier: older, Later: newer, Narrative: narrative}, nil
}
