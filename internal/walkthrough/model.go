package walkthrough

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"profilingpoll/internal/poll"
)

// Walkthrough is one visitor's run through a poll. Answers is the raw
// ledger of selections; AnsweredQuestions, Progress, CompletedAt and the
// WalkthroughProfile tally are denormalizations kept in sync by
// RecordAnswer/RetractAnswer/ClearAnswers, never recomputed on read.
type Walkthrough struct {
	ID     uint      `json:"id" gorm:"primaryKey"`
	PollID uint      `json:"poll_id" gorm:"index;not null"`
	Poll   poll.Poll `json:"-"`
	Email  string    `json:"email,omitempty"`
	// Client holds request metadata captured at start (ip, user agent).
	Client datatypes.JSON `json:"-"`

	Answers           []poll.Answer        `json:"-" gorm:"many2many:walkthrough_answers"`
	AnsweredQuestions []poll.Question      `json:"-" gorm:"many2many:walkthrough_answered_questions"`
	Progress          float64              `json:"progress"`
	CompletedAt       *time.Time           `json:"completed_at"`
	Profiles          []WalkthroughProfile `json:"-" gorm:"foreignKey:WalkthroughID"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WalkthroughProfile is one walkthrough's running tally for one profile.
type WalkthroughProfile struct {
	ID            uint         `json:"id" gorm:"primaryKey"`
	WalkthroughID uint         `json:"walkthrough_id" gorm:"index;not null"`
	ProfileID     uint         `json:"profile_id" gorm:"index;not null"`
	Profile       poll.Profile `json:"-"`
	Quantifier    int          `json:"quantifier" gorm:"default:1"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// Start creates a fresh walkthrough against the given poll.
func Start(db *gorm.DB, p *poll.Poll, email string, client datatypes.JSON) (*Walkthrough, error) {
	w := Walkthrough{PollID: p.ID, Email: email, Client: client}
	if err := db.Create(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}
