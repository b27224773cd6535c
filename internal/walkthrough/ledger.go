package walkthrough

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"profilingpoll/internal/poll"
)

// ErrQuestionMismatch is returned when an answer's question does not
// belong to the walkthrough's poll.
var ErrQuestionMismatch = errors.New("answer does not belong to the walkthrough's poll")

// RecordAnswer adds one answer selection to the walkthrough's ledger and
// updates the derived state in the same transaction. For a single-select
// question that was already answered, the previous selection is replaced:
// its ledger rows are removed and its profile weights subtracted before
// the new answer's weights are added. Recording an answer that is already
// on the ledger is a no-op.
func RecordAnswer(db *gorm.DB, w *Walkthrough, a *poll.Answer) error {
	var q poll.Question
	if err := db.First(&q, a.QuestionID).Error; err != nil {
		return err
	}
	if q.PollID != w.PollID {
		return ErrQuestionMismatch
	}

	return db.Transaction(func(tx *gorm.DB) error {
		recorded, err := hasAnswer(tx, w, a.ID)
		if err != nil {
			return err
		}
		if recorded {
			return nil
		}

		answered, err := hasAnsweredQuestion(tx, w, q.ID)
		if err != nil {
			return err
		}
		if answered {
			if !q.MultipleAnswers {
				// Single select: the question keeps its answered status,
				// the previous selection loses its ledger rows and weights.
				prior, err := answersForQuestion(tx, w, q.ID)
				if err != nil {
					return err
				}
				for i := range prior {
					if err := tx.Model(w).Association("Answers").Delete(&prior[i]); err != nil {
						return err
					}
					if err := applyWeights(tx, w, prior[i].ID, -1); err != nil {
						return err
					}
				}
			}
		} else {
			if err := tx.Model(w).Association("AnsweredQuestions").Append(&q); err != nil {
				return err
			}
		}

		if err := tx.Model(w).Association("Answers").Append(a); err != nil {
			return err
		}
		if err := applyWeights(tx, w, a.ID, 1); err != nil {
			return err
		}
		return refreshProgress(tx, w)
	})
}

// RetractAnswer removes one selection from the ledger and rolls its
// contribution out of the derived state. Retracting an answer that was
// never recorded is a no-op.
func RetractAnswer(db *gorm.DB, w *Walkthrough, a *poll.Answer) error {
	return db.Transaction(func(tx *gorm.DB) error {
		recorded, err := hasAnswer(tx, w, a.ID)
		if err != nil {
			return err
		}
		if !recorded {
			return nil
		}

		if err := tx.Model(w).Association("Answers").Delete(a); err != nil {
			return err
		}

		// The question stays answered while another of its answers is
		// still on the ledger (multiple-answer questions).
		remaining, err := answersForQuestion(tx, w, a.QuestionID)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			if err := tx.Model(w).Association("AnsweredQuestions").Delete(&poll.Question{ID: a.QuestionID}); err != nil {
				return err
			}
		}

		if err := applyWeights(tx, w, a.ID, -1); err != nil {
			return err
		}
		return refreshProgress(tx, w)
	})
}

// ClearAnswers resets the ledger and every denormalization. Idempotent.
func ClearAnswers(db *gorm.DB, w *Walkthrough) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(w).Association("Answers").Clear(); err != nil {
			return err
		}
		if err := tx.Model(w).Association("AnsweredQuestions").Clear(); err != nil {
			return err
		}
		if err := tx.Where("walkthrough_id = ?", w.ID).Delete(&WalkthroughProfile{}).Error; err != nil {
			return err
		}
		w.Progress = 0
		w.CompletedAt = nil
		return tx.Model(w).Updates(map[string]interface{}{
			"progress":     0.0,
			"completed_at": nil,
		}).Error
	})
}

// applyWeights folds one answer's profile weights into the walkthrough's
// tally. sign is +1 when recording, -1 when retracting. A retraction for a
// profile that was never tallied is skipped; rows whose quantifier falls
// to zero or below are kept.
func applyWeights(tx *gorm.DB, w *Walkthrough, answerID uint, sign int) error {
	var links []poll.AnswerProfile
	if err := tx.Where("answer_id = ?", answerID).Find(&links).Error; err != nil {
		return err
	}
	for _, link := range links {
		var wp WalkthroughProfile
		err := tx.Where("walkthrough_id = ? AND profile_id = ?", w.ID, link.ProfileID).First(&wp).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if sign < 0 {
				continue
			}
			wp = WalkthroughProfile{
				WalkthroughID: w.ID,
				ProfileID:     link.ProfileID,
				Quantifier:    link.Quantifier,
			}
			if err := tx.Create(&wp).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			wp.Quantifier += sign * link.Quantifier
			if err := tx.Model(&wp).Update("quantifier", wp.Quantifier).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// refreshProgress rederives the completion fraction and timestamp from
// the answered-question set. This is the only place CompletedAt is
// computed: set once at the first moment every question is answered,
// cleared when progress regresses below completeness.
func refreshProgress(tx *gorm.DB, w *Walkthrough) error {
	var total int64
	if err := tx.Model(&poll.Question{}).Where("poll_id = ?", w.PollID).Count(&total).Error; err != nil {
		return err
	}
	var answered int64
	if err := tx.Table("walkthrough_answered_questions").Where("walkthrough_id = ?", w.ID).Count(&answered).Error; err != nil {
		return err
	}

	if total == 0 {
		total = 1 // empty poll, avoid dividing by zero
	}
	if answered > 0 {
		w.Progress = float64(answered) / float64(total)
	} else {
		w.Progress = 0
	}

	if answered == total {
		if w.CompletedAt == nil {
			now := time.Now().UTC()
			w.CompletedAt = &now
		}
	} else {
		w.CompletedAt = nil
	}

	return tx.Model(w).Updates(map[string]interface{}{
		"progress":     w.Progress,
		"completed_at": w.CompletedAt,
	}).Error
}

func hasAnswer(tx *gorm.DB, w *Walkthrough, answerID uint) (bool, error) {
	var n int64
	err := tx.Table("walkthrough_answers").
		Where("walkthrough_id = ? AND answer_id = ?", w.ID, answerID).
		Count(&n).Error
	return n > 0, err
}

func hasAnsweredQuestion(tx *gorm.DB, w *Walkthrough, questionID uint) (bool, error) {
	var n int64
	err := tx.Table("walkthrough_answered_questions").
		Where("walkthrough_id = ? AND question_id = ?", w.ID, questionID).
		Count(&n).Error
	return n > 0, err
}

// answersForQuestion lists the walkthrough's recorded answers under one question.
func answersForQuestion(tx *gorm.DB, w *Walkthrough, questionID uint) ([]poll.Answer, error) {
	var out []poll.Answer
	err := tx.Joins("JOIN walkthrough_answers wa ON wa.answer_id = answers.id").
		Where("wa.walkthrough_id = ? AND answers.question_id = ?", w.ID, questionID).
		Find(&out).Error
	return out, err
}
