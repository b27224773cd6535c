package poll

import (
	"fmt"

	"gorm.io/gorm"
)

// Questions within a poll and answers within a question share the same
// ordering rule: explicit ordering key, then creation time, then id.
const (
	QuestionOrder = "ordering ASC, created_at ASC, id ASC"
	AnswerOrder   = "ordering ASC, created_at ASC, id ASC"
)

// QuestionList returns the poll's questions in poll order.
func QuestionList(db *gorm.DB, p *Poll) ([]Question, error) {
	var questions []Question
	err := db.Where("poll_id = ?", p.ID).Order(QuestionOrder).Find(&questions).Error
	return questions, err
}

// FirstQuestion returns the first question of the poll, or nil for a poll
// without questions.
func FirstQuestion(db *gorm.DB, p *Poll) (*Question, error) {
	questions, err := QuestionList(db, p)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, nil
	}
	return &questions[0], nil
}

// AnswerList returns the question's answers in question order.
func AnswerList(db *gorm.DB, q *Question) ([]Answer, error) {
	var answers []Answer
	err := db.Where("question_id = ?", q.ID).Order(AnswerOrder).Find(&answers).Error
	return answers, err
}

// Index returns the zero-based position of the question within its poll.
func Index(db *gorm.DB, q *Question) (int, error) {
	questions, err := QuestionList(db, &Poll{ID: q.PollID})
	if err != nil {
		return -1, err
	}
	for i := range questions {
		if questions[i].ID == q.ID {
			return i, nil
		}
	}
	return -1, fmt.Errorf("question %d not in poll %d", q.ID, q.PollID)
}

// Next returns the question following q in poll order, or nil at the end.
func Next(db *gorm.DB, q *Question) (*Question, error) {
	questions, err := QuestionList(db, &Poll{ID: q.PollID})
	if err != nil {
		return nil, err
	}
	for i := range questions {
		if questions[i].ID == q.ID {
			if i+1 < len(questions) {
				return &questions[i+1], nil
			}
			return nil, nil
		}
	}
	return nil, fmt.Errorf("question %d not in poll %d", q.ID, q.PollID)
}
