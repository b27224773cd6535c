package walkthrough

import (
	"errors"

	"gorm.io/gorm"

	"profilingpoll/internal/poll"
)

// MatchingProfile returns the profile with the highest tally for the
// walkthrough. Ties break toward the lowest profile id so the result is
// deterministic. An empty tally falls back to the poll's default profile,
// or nil when none is set — nil is not an error.
func MatchingProfile(db *gorm.DB, w *Walkthrough) (*poll.Profile, error) {
	var wp WalkthroughProfile
	err := db.Where("walkthrough_id = ?", w.ID).
		Order("quantifier DESC, profile_id ASC").
		Preload("Profile").
		First(&wp).Error
	switch {
	case err == nil:
		return &wp.Profile, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		var p poll.Poll
		if err := db.First(&p, w.PollID).Error; err != nil {
			return nil, err
		}
		if p.DefaultProfileID == nil {
			return nil, nil
		}
		var def poll.Profile
		if err := db.First(&def, *p.DefaultProfileID).Error; err != nil {
			return nil, err
		}
		return &def, nil
	default:
		return nil, err
	}
}

// ProfileTally returns the walkthrough's full tally, highest quantifier first.
func ProfileTally(db *gorm.DB, w *Walkthrough) ([]WalkthroughProfile, error) {
	var tally []WalkthroughProfile
	err := db.Where("walkthrough_id = ?", w.ID).
		Order("quantifier DESC, profile_id ASC").
		Preload("Profile").
		Find(&tally).Error
	return tally, err
}

// NextQuestion returns the first question in poll order the walkthrough
// has not answered yet, or nil when every question is answered.
func NextQuestion(db *gorm.DB, w *Walkthrough) (*poll.Question, error) {
	answered := db.Table("walkthrough_answered_questions").
		Select("question_id").
		Where("walkthrough_id = ?", w.ID)

	var q poll.Question
	err := db.Where("poll_id = ? AND id NOT IN (?)", w.PollID, answered).
		Order(poll.QuestionOrder).
		First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}
