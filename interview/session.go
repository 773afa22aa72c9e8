// Package interview implements the guided interview state machine: one
// session per reflection attempt, holding answers, follow-ups, tone and the
// current position, with the safety scan wired into forward navigation.
package interview

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sturner103/letter-to-you/models"
	"github.com/sturner103/letter-to-you/questions"
)

// State is the session lifecycle state.
type State string

const (
	StateBrowsing       State = "browsing"
	StateSubmitting     State = "submitting"
	StateDone           State = "done"
	StateCrisisRedirect State = "crisis-redirect"
)

// SkippedSentinel marks a question the user declined to answer in the
// generation transcript.
const SkippedSentinel = "[skipped]"

// transcriptSeparator joins question blocks in the generation payload.
const transcriptSeparator = "\n\n---\n\n"

var (
	ErrNotBrowsing     = errors.New("session is not accepting input")
	ErrUnknownQuestion = errors.New("unknown question id")
	ErrBadIndex        = errors.New("index out of range")
	ErrBadTone         = errors.New("unknown tone")
	ErrToneLocked      = errors.New("tone is only selectable on the final question")
	ErrNoFollowUp      = errors.New("question has no follow-up")
)

// Outcome describes what a forward navigation did.
type Outcome string

const (
	OutcomeAdvanced Outcome = "advanced"
	OutcomeSubmit   Outcome = "submit"
	OutcomeCrisis   Outcome = "crisis"
	OutcomeRejected Outcome = "rejected"
)

// Session is one in-progress interview. All methods are safe for concurrent
// use; mutations are serialized so navigation and answers never interleave.
type Session struct {
	mu sync.Mutex

	ID         string
	UserID     string
	Mode       string
	PurchaseID string

	questions       []models.Question
	answers         map[string]string
	followUpOpen    map[string]bool
	followUpAnswers map[string]string
	index           int
	tone            models.Tone
	state           State
	errMessage      string

	CreatedAt time.Time
	updatedAt time.Time
}

// New creates a session for the given mode. The question list is snapshotted
// at session start. Returns an error for modes that resolve to no questions.
func New(id, userID, mode, purchaseID string) (*Session, error) {
	qs := questions.SelectQuestions(mode)
	if len(qs) == 0 {
		return nil, errors.New("unknown mode: " + mode)
	}
	now := time.Now().UTC()
	return &Session{
		ID:              id,
		UserID:          userID,
		Mode:            mode,
		PurchaseID:      purchaseID,
		questions:       qs,
		answers:         map[string]string{},
		followUpOpen:    map[string]bool{},
		followUpAnswers: map[string]string{},
		tone:            models.ToneYouDecide,
		state:           StateBrowsing,
		CreatedAt:       now,
		updatedAt:       now,
	}, nil
}

func (s *Session) touch() { s.updatedAt = time.Now().UTC() }

// UpdatedAt returns the time of the last mutation.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

func (s *Session) question(questionID string) *models.Question {
	for i := range s.questions {
		if s.questions[i].ID == questionID {
			return &s.questions[i]
		}
	}
	return nil
}

// Answer records the primary answer for a question. Valid while browsing
// only; never advances the index.
func (s *Session) Answer(questionID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateBrowsing {
		return ErrNotBrowsing
	}
	if s.question(questionID) == nil {
		return ErrUnknownQuestion
	}
	s.answers[questionID] = text
	s.touch()
	return nil
}

// OpenFollowUp toggles a question's follow-up prompt open or closed. A
// follow-up answer only reaches the transcript while its prompt is open.
func (s *Session) OpenFollowUp(questionID string, open bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateBrowsing {
		return ErrNotBrowsing
	}
	q := s.question(questionID)
	if q == nil {
		return ErrUnknownQuestion
	}
	if q.FollowUp == "" {
		return ErrNoFollowUp
	}
	s.followUpOpen[questionID] = open
	s.touch()
	return nil
}

// AnswerFollowUp records the follow-up answer for a question.
func (s *Session) AnswerFollowUp(questionID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateBrowsing {
		return ErrNotBrowsing
	}
	q := s.question(questionID)
	if q == nil {
		return ErrUnknownQuestion
	}
	if q.FollowUp == "" {
		return ErrNoFollowUp
	}
	s.followUpAnswers[questionID] = text
	s.touch()
	return nil
}

// SetTone selects the letter tone. Only surfaced on the final question; once
// set it is preserved for the rest of the session.
func (s *Session) SetTone(tone models.Tone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateBrowsing {
		return ErrNotBrowsing
	}
	if s.index != len(s.questions)-1 {
		return ErrToneLocked
	}
	if !models.ValidTone(tone) {
		return ErrBadTone
	}
	s.tone = tone
	s.touch()
	return nil
}

// Next advances the interview. On any forward step a positive safety scan is
// a hard interrupt into the crisis state; skipping cannot bypass it. At the
// final question a clean scan moves the session into submitting. A session
// already submitting or finished rejects further forward motion so a
// duplicate submit never re-enters generation.
func (s *Session) Next() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateBrowsing {
		return OutcomeRejected
	}
	if questions.ContainsCrisisSignal(s.accumulatedText()) {
		s.state = StateCrisisRedirect
		s.touch()
		return OutcomeCrisis
	}
	if s.index < len(s.questions)-1 {
		s.index++
		s.touch()
		return OutcomeAdvanced
	}
	s.state = StateSubmitting
	s.touch()
	return OutcomeSubmit
}

// Skip is forward navigation without an answer requirement. The question is
// recorded with the skipped sentinel at transcript time.
func (s *Session) Skip() Outcome { return s.Next() }

// Prev steps back one question, flooring at zero.
func (s *Session) Prev() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateBrowsing {
		return
	}
	if s.index > 0 {
		s.index--
		s.touch()
	}
}

// Jump navigates directly to a valid index. Always allowed while browsing
// and never triggers the safety scan; only forward completion does.
func (s *Session) Jump(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateBrowsing {
		return ErrNotBrowsing
	}
	if index < 0 || index >= len(s.questions) {
		return ErrBadIndex
	}
	s.index = index
	s.touch()
	return nil
}

// FailGeneration returns the session to browsing on the last question with
// an attached error message. The user's answers survive intact for a retry.
func (s *Session) FailGeneration(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSubmitting {
		return
	}
	s.state = StateBrowsing
	s.index = len(s.questions) - 1
	s.errMessage = message
	s.touch()
}

// Complete marks a successful generation.
func (s *Session) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		s.state = StateDone
		s.errMessage = ""
		s.touch()
	}
}

// accumulatedText joins every primary and follow-up answer collected so far.
// Callers must hold s.mu.
func (s *Session) accumulatedText() string {
	parts := make([]string, 0, len(s.answers)+len(s.followUpAnswers))
	for _, q := range s.questions {
		if a, ok := s.answers[q.ID]; ok {
			parts = append(parts, a)
		}
		if fa, ok := s.followUpAnswers[q.ID]; ok {
			parts = append(parts, fa)
		}
	}
	return strings.Join(parts, " ")
}

// Transcript formats the full interview for the generation prompt: numbered
// Q/A blocks in session order, skipped answers as the sentinel, answered
// follow-ups appended to their question, blocks joined by a fixed separator.
// Assembly always completes before any network call is made.
func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	blocks := make([]string, 0, len(s.questions))
	for i, q := range s.questions {
		answer := strings.TrimSpace(s.answers[q.ID])
		if answer == "" {
			answer = SkippedSentinel
		}
		var b strings.Builder
		b.WriteString("Q")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(": ")
		b.WriteString(q.Prompt)
		b.WriteString("\nA")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(": ")
		b.WriteString(answer)

		followUpAnswer := strings.TrimSpace(s.followUpAnswers[q.ID])
		if q.FollowUp != "" && s.followUpOpen[q.ID] && followUpAnswer != "" {
			b.WriteString("\n\nFollow-up: ")
			b.WriteString(q.FollowUp)
			b.WriteString("\nAnswer: ")
			b.WriteString(followUpAnswer)
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, transcriptSeparator)
}

// QAPairs returns the answered interview in session order for persistence.
func (s *Session) QAPairs() []models.QAPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	pairs := make([]models.QAPair, 0, len(s.questions))
	for _, q := range s.questions {
		answer := strings.TrimSpace(s.answers[q.ID])
		if answer == "" {
			answer = SkippedSentinel
		}
		pair := models.QAPair{Prompt: q.Prompt, Answer: answer}
		followUpAnswer := strings.TrimSpace(s.followUpAnswers[q.ID])
		if q.FollowUp != "" && s.followUpOpen[q.ID] && followUpAnswer != "" {
			pair.FollowUp = q.FollowUp
			pair.FollowUpAnswer = followUpAnswer
		}
		pairs = append(pairs, pair)
	}
	return pairs
}

// Snapshot is a read-only view of the session for API responses.
type Snapshot struct {
	ID           string            `json:"id"`
	Mode         string            `json:"mode"`
	ModeName     string            `json:"modeName"`
	State        State             `json:"state"`
	Index        int               `json:"index"`
	Questions    []models.Question `json:"questions"`
	Answers      map[string]string `json:"answers"`
	FollowUpOpen map[string]bool   `json:"followUpOpen"`
	FollowUps    map[string]string `json:"followUpAnswers"`
	Tone         models.Tone       `json:"tone"`
	Error        string            `json:"error,omitempty"`
}

// Snapshot copies the current state for serialization.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:           s.ID,
		Mode:         s.Mode,
		ModeName:     questions.ModeName(s.Mode),
		State:        s.state,
		Index:        s.index,
		Questions:    append([]models.Question(nil), s.questions...),
		Answers:      map[string]string{},
		FollowUpOpen: map[string]bool{},
		FollowUps:    map[string]string{},
		Tone:         s.tone,
		Error:        s.errMessage,
	}
	for k, v := range s.answers {
		snap.Answers[k] = v
	}
	for k, v := range s.followUpOpen {
		snap.FollowUpOpen[k] = v
	}
	for k, v := range s.followUpAnswers {
		snap.FollowUps[k] = v
	}
	return snap
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Index returns the current question index.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Tone returns the selected tone.
func (s *Session) Tone() models.Tone {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tone
}

// Questions returns the snapshotted question list.
func (s *Session) Questions() []models.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Question(nil), s.questions...)
}

