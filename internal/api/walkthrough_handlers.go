package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"profilingpoll/internal/config"
	"profilingpoll/internal/db"
	"profilingpoll/internal/poll"
	"profilingpoll/internal/session"
	"profilingpoll/internal/token"
	"profilingpoll/internal/walkthrough"
)

type StartWalkthroughRequest struct {
	Email string `json:"email,omitempty"`
}

// POST /polls/:slug/walkthroughs
// A visitor presenting a known X-Visitor-ID resumes their in-progress
// walkthrough; everyone else gets a fresh one and a new visitor id.
func StartWalkthroughHandler(cfg *config.Config, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p poll.Poll
		if err := db.DB.Where("slug = ?", c.Param("slug")).First(&p).Error; err != nil {
			c.JSON(http.StatusNotFound, errorBody("Poll not found"))
			return
		}

		var req StartWalkthroughRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, errorBody("Invalid request"))
				return
			}
		}

		ttl := time.Duration(cfg.Poll.SessionTTLMinutes) * time.Minute
		visitorID := c.GetHeader("X-Visitor-ID")
		if visitorID != "" && rdb != nil {
			if wid, err := session.GetWalkthrough(rdb, visitorID); err == nil {
				var w walkthrough.Walkthrough
				if err := db.DB.First(&w, wid).Error; err == nil && w.PollID == p.ID {
					_ = session.SetWalkthrough(rdb, visitorID, w.ID, ttl)
					respondWalkthrough(c, cfg, &w, visitorID, false)
					return
				}
			}
		}
		if visitorID == "" {
			visitorID = uuid.NewString()
		}

		meta, _ := json.Marshal(gin.H{
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		})
		w, err := walkthrough.Start(db.DB, &p, req.Email, datatypes.JSON(meta))
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Create error"))
			return
		}
		if rdb != nil {
			_ = session.SetWalkthrough(rdb, visitorID, w.ID, ttl)
		}
		respondWalkthrough(c, cfg, w, visitorID, true)
	}
}

func respondWalkthrough(c *gin.Context, cfg *config.Config, w *walkthrough.Walkthrough, visitorID string, created bool) {
	resultToken, err := token.Generate(cfg.Server.SigningSecret, w.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorBody("Token error"))
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"id":           w.ID,
		"poll_id":      w.PollID,
		"visitor_id":   visitorID,
		"progress":     w.Progress,
		"completed_at": w.CompletedAt,
		"result_token": resultToken,
	})
}

type RecordAnswerRequest struct {
	AnswerID uint `json:"answer_id"`
}

// POST /walkthroughs/:id/answers
func RecordAnswerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		w, ok := loadWalkthrough(c)
		if !ok {
			return
		}
		var req RecordAnswerRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.AnswerID == 0 {
			c.JSON(http.StatusBadRequest, errorBody("Missing answer_id"))
			return
		}
		var a poll.Answer
		if err := db.DB.First(&a, req.AnswerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusUnprocessableEntity, errorBody("Unknown answer"))
				return
			}
			c.JSON(http.StatusInternalServerError, errorBody("Lookup error"))
			return
		}

		if err := walkthrough.RecordAnswer(db.DB, w, &a); err != nil {
			if errors.Is(err, walkthrough.ErrQuestionMismatch) {
				c.JSON(http.StatusConflict, errorBody("Question does not belong to this poll"))
				return
			}
			c.JSON(http.StatusInternalServerError, errorBody("Record error"))
			return
		}
		respondProgress(c, w)
	}
}

// DELETE /walkthroughs/:id/answers/:answerId
func RetractAnswerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		w, ok := loadWalkthrough(c)
		if !ok {
			return
		}
		answerID, err := strconv.ParseUint(c.Param("answerId"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody("Invalid answer id"))
			return
		}
		var a poll.Answer
		if err := db.DB.First(&a, uint(answerID)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusUnprocessableEntity, errorBody("Unknown answer"))
				return
			}
			c.JSON(http.StatusInternalServerError, errorBody("Lookup error"))
			return
		}

		if err := walkthrough.RetractAnswer(db.DB, w, &a); err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Retract error"))
			return
		}
		respondProgress(c, w)
	}
}

// DELETE /walkthroughs/:id/answers
func ClearAnswersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		w, ok := loadWalkthrough(c)
		if !ok {
			return
		}
		if err := walkthrough.ClearAnswers(db.DB, w); err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Clear error"))
			return
		}
		respondProgress(c, w)
	}
}

// GET /walkthroughs/:id/next
func NextQuestionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		w, ok := loadWalkthrough(c)
		if !ok {
			return
		}
		next, err := walkthrough.NextQuestion(db.DB, w)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Lookup error"))
			return
		}
		if next == nil {
			var p poll.Poll
			if err := db.DB.First(&p, w.PollID).Error; err != nil {
				c.JSON(http.StatusInternalServerError, errorBody("Lookup error"))
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"finished":    true,
				"finish_text": p.FinishText,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"finished": false,
			"question": gin.H{"id": next.ID, "text": next.Text},
		})
	}
}

func loadWalkthrough(c *gin.Context) (*walkthrough.Walkthrough, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid walkthrough id"))
		return nil, false
	}
	var w walkthrough.Walkthrough
	if err := db.DB.First(&w, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorBody("Walkthrough not found"))
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, errorBody("Lookup error"))
		return nil, false
	}
	return &w, true
}

func respondProgress(c *gin.Context, w *walkthrough.Walkthrough) {
	next, err := walkthrough.NextQuestion(db.DB, w)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorBody("Lookup error"))
		return
	}
	body := gin.H{
		"id":           w.ID,
		"progress":     w.Progress,
		"completed_at": w.CompletedAt,
	}
	if next != nil {
		body["next_question_id"] = next.ID
	}
	c.JSON(http.StatusOK, body)
}

// GET /visitors/online
func OnlineVisitorCountHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := session.ActiveVisitorCount(rdb)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Count error"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"online": count})
	}
}
