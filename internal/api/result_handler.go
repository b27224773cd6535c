package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"profilingpoll/internal/config"
	"profilingpoll/internal/db"
	"profilingpoll/internal/poll"
	"profilingpoll/internal/token"
	"profilingpoll/internal/walkthrough"
)

// GET /results/:token
// The token is the signed walkthrough id handed out at start; a tampered
// or malformed token is indistinguishable from an unknown result.
func ResultHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		wid, err := token.Parse(cfg.Server.SigningSecret, c.Param("token"))
		if err != nil {
			c.JSON(http.StatusNotFound, errorBody("Result not found"))
			return
		}
		var w walkthrough.Walkthrough
		if err := db.DB.First(&w, wid).Error; err != nil {
			c.JSON(http.StatusNotFound, errorBody("Result not found"))
			return
		}
		var p poll.Poll
		if err := db.DB.First(&p, w.PollID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Lookup error"))
			return
		}

		profile, err := walkthrough.MatchingProfile(db.DB, &w)
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorBody("Match error"))
			return
		}

		body := gin.H{
			"poll": gin.H{
				"slug":        p.Slug,
				"title":       p.Title,
				"finish_text": p.FinishText,
			},
			"progress":     w.Progress,
			"completed_at": w.CompletedAt,
			"profile":      nil,
		}
		if profile != nil {
			body["profile"] = gin.H{
				"id":        profile.ID,
				"text":      profile.Text,
				"link":      profile.Link,
				"link_text": profile.LinkText,
			}
		}
		c.JSON(http.StatusOK, body)
	}
}
