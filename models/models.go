// Package models defines the core data structures for Letter to You
package models

import "time"

// Tone is the register/voice instruction given to the letter writer.
type Tone string

const (
	ToneYouDecide  Tone = "youdecide"
	ToneWarm       Tone = "warm"
	ToneDirect     Tone = "direct"
	ToneMotivating Tone = "motivating"
)

// ValidTone reports whether t is one of the selectable tones.
func ValidTone(t Tone) bool {
	switch t {
	case ToneYouDecide, ToneWarm, ToneDirect, ToneMotivating:
		return true
	}
	return false
}

// Question is a single interview prompt. Questions are defined at process
// start and never mutated.
type Question struct {
	ID          string   `json:"id"`
	Section     string   `json:"section"`
	SectionName string   `json:"sectionName"`
	Prompt      string   `json:"prompt"`
	FollowUp    string   `json:"followUp,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Intensity   int      `json:"intensity,omitempty"`
	Core        bool     `json:"core,omitempty"`
	// UseIf restricts a non-core question to the listed mode ids. Empty
	// means the question applies to every general mode.
	UseIf []string `json:"useIf,omitempty"`
}

// Mode is a named reflection category determining which questions are asked.
type Mode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	// LifeEvent marks modes with a fixed hand-authored question list.
	LifeEvent bool `json:"lifeEvent,omitempty"`
}

// QAPair is one answered (or skipped) question in generation order.
type QAPair struct {
	Prompt         string `json:"prompt"`
	Answer         string `json:"answer"`
	FollowUp       string `json:"followUp,omitempty"`
	FollowUpAnswer string `json:"followUpAnswer,omitempty"`
}

// Letter delivery statuses.
const (
	DeliveryImmediate = "immediate"
	DeliveryScheduled = "scheduled"
	DeliveryDelivered = "delivered"
	DeliveryFailed    = "failed"
)

// Letter is a generated letter. Content is immutable after creation; only
// the delivery status transitions for scheduled letters.
type Letter struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	Mode           string     `json:"mode"`
	Tone           Tone       `json:"tone"`
	Questions      []QAPair   `json:"questions"`
	Content        string     `json:"content"`
	WordCount      int        `json:"wordCount"`
	DeliveryStatus string     `json:"deliveryStatus"`
	DeliveryDate   *time.Time `json:"deliveryDate,omitempty"`
	DeliveredAt    *time.Time `json:"deliveredAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Purchase statuses.
const (
	PurchaseCompleted = "completed"
	PurchaseFailed    = "failed"
)

// Purchase records a completed payment entitling one letter generation for
// one mode. It may be consumed at most once, only by its owner.
type Purchase struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	LetterMode      string     `json:"letterMode"`
	ModeName        string     `json:"modeName"`
	Amount          int64      `json:"amount"`
	Currency        string     `json:"currency"`
	StripeSessionID string     `json:"stripeSessionId"`
	Status          string     `json:"status"`
	Used            bool       `json:"used"`
	UsedAt          *time.Time `json:"usedAt,omitempty"`
	LetterID        string     `json:"letterId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// ScheduledEmail statuses.
const (
	EmailPending = "pending"
	EmailSent    = "sent"
	EmailFailed  = "failed"
)

// ScheduledEmail is a future delivery of a letter to its owner.
type ScheduledEmail struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	LetterID     string     `json:"letterId"`
	ScheduledFor time.Time  `json:"scheduledFor"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	SentAt       *time.Time `json:"sentAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// SessionBackup holds an auth credential pair behind a single-use restore
// token, so a session can survive the cross-site checkout redirect. At most
// one live backup exists per user.
type SessionBackup struct {
	UserID       string    `json:"userId"`
	RestoreToken string    `json:"restoreToken"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	CreatedAt    time.Time `json:"createdAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Profile is the account record behind an authenticated user.
type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	PasswordHash string    `json:"-"`
	Provider     string    `json:"provider,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CheckIn is a weekly check-in with its generated micro-reflection.
type CheckIn struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	MoodRating    int       `json:"moodRating"`
	EnergyLevel   int       `json:"energyLevel"`
	Wins          string    `json:"wins,omitempty"`
	Challenges    string    `json:"challenges,omitempty"`
	Gratitude     string    `json:"gratitude,omitempty"`
	FocusNextWeek string    `json:"focusNextWeek,omitempty"`
	Reflection    string    `json:"reflection,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
