package poll

import (
	"time"
)

// Poll is one authored survey: an ordered set of questions whose answers
// map onto candidate profiles.
type Poll struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	Active           bool       `json:"active" gorm:"default:false"`
	Title            string     `json:"title" gorm:"size:50;not null"`
	Slug             string     `json:"slug" gorm:"uniqueIndex;size:50;not null"`
	Description      string     `json:"description"`
	FinishText       string     `json:"finish_text"` // shown at the end of the poll
	DefaultProfileID *uint      `json:"default_profile_id"`
	DefaultProfile   *Profile   `json:"-" gorm:"foreignKey:DefaultProfileID"`
	Questions        []Question `json:"-" gorm:"foreignKey:PollID"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type Question struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	PollID   uint   `json:"poll_id" gorm:"index;not null"`
	Text     string `json:"text"`
	Ordering uint   `json:"ordering" gorm:"default:0"`
	// MultipleAnswers lifts the one-current-answer-per-question rule for
	// this question when true.
	MultipleAnswers bool      `json:"multiple_answers" gorm:"default:false"`
	Answers         []Answer  `json:"-" gorm:"foreignKey:QuestionID"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type Answer struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	QuestionID     uint            `json:"question_id" gorm:"index;not null"`
	Text           string          `json:"text"`
	Ordering       uint            `json:"ordering" gorm:"default:0"`
	AnswerProfiles []AnswerProfile `json:"-" gorm:"foreignKey:AnswerID"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Profile is one candidate outcome a walkthrough can match.
type Profile struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Description string    `json:"description" gorm:"size:50"` // internal label
	Text        string    `json:"text"`
	Link        string    `json:"link"`
	LinkText    string    `json:"link_text" gorm:"size:100"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AnswerProfile weights one answer's contribution to one profile.
type AnswerProfile struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	AnswerID   uint      `json:"answer_id" gorm:"index;not null"`
	ProfileID  uint      `json:"profile_id" gorm:"index;not null"`
	Profile    Profile   `json:"-"`
	Quantifier int       `json:"quantifier" gorm:"default:1"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
