package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"profilingpoll/internal/db"
	"profilingpoll/internal/poll"
)

// GET /polls
func ListPollsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var polls []poll.Poll
		if err := db.DB.Where("active = ?", true).Order("created_at ASC").Find(&polls).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("List error"))
			return
		}
		result := []gin.H{}
		for _, p := range polls {
			result = append(result, gin.H{
				"id":          p.ID,
				"slug":        p.Slug,
				"title":       p.Title,
				"description": p.Description,
			})
		}
		c.JSON(http.StatusOK, result)
	}
}

// GET /polls/:slug
func GetPollHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var p poll.Poll
		if err := db.DB.Where("slug = ?", c.Param("slug")).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, errorBody("Poll not found"))
				return
			}
			c.JSON(http.StatusInternalServerError, errorBody("Lookup error"))
			return
		}

		questions, err := poll.QuestionList(db.DB, &p)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Lookup error"))
			return
		}
		body := gin.H{
			"id":             p.ID,
			"slug":           p.Slug,
			"title":          p.Title,
			"description":    p.Description,
			"question_count": len(questions),
		}
		if len(questions) > 0 {
			body["first_question_id"] = questions[0].ID
		}
		c.JSON(http.StatusOK, body)
	}
}

// GET /polls/:slug/questions/:id
func GetQuestionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var p poll.Poll
		if err := db.DB.Where("slug = ?", c.Param("slug")).First(&p).Error; err != nil {
			c.JSON(http.StatusNotFound, errorBody("Poll not found"))
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody("Invalid question id"))
			return
		}

		var q poll.Question
		if err := db.DB.Where("poll_id = ? AND id = ?", p.ID, id).First(&q).Error; err != nil {
			c.JSON(http.StatusNotFound, errorBody("Question not found"))
			return
		}

		answers, err := poll.AnswerList(db.DB, &q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Lookup error"))
			return
		}
		index, err := poll.Index(db.DB, &q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Lookup error"))
			return
		}
		next, err := poll.Next(db.DB, &q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Lookup error"))
			return
		}

		answerList := []gin.H{}
		for _, a := range answers {
			answerList = append(answerList, gin.H{"id": a.ID, "text": a.Text})
		}
		body := gin.H{
			"id":               q.ID,
			"text":             q.Text,
			"index":            index,
			"multiple_answers": q.MultipleAnswers,
			"answers":          answerList,
		}
		if next != nil {
			body["next_question_id"] = next.ID
		}
		c.JSON(http.StatusOK, body)
	}
}
