package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"profilingpoll/internal/db"
	"profilingpoll/internal/poll"
)

var statsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const statsPushInterval = 5 * time.Second

type PollStats struct {
	Walkthroughs  int64          `json:"walkthroughs"`
	Completed     int64          `json:"completed"`
	ProfileTotals []ProfileTotal `json:"profile_totals"`
}

type ProfileTotal struct {
	ProfileID   uint   `json:"profile_id"`
	Description string `json:"description"`
	Total       int64  `json:"total"`
}

// GET /ws/polls/:slug/stats
// Pushes a stats snapshot on connect and then every few seconds until the
// client goes away. Read-only: no shared state with the ledger.
func WSPollStatsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var p poll.Poll
		if err := db.DB.Where("slug = ?", c.Param("slug")).First(&p).Error; err != nil {
			c.JSON(http.StatusNotFound, errorBody("Poll not found"))
			return
		}

		conn, err := statsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[Stats] Upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(statsPushInterval)
		defer ticker.Stop()

		for {
			stats, err := pollStats(p.ID)
			if err != nil {
				log.Printf("[Stats] Snapshot failed for poll %d: %v", p.ID, err)
				return
			}
			if err := conn.WriteJSON(stats); err != nil {
				return
			}
			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}
}

func pollStats(pollID uint) (*PollStats, error) {
	var stats PollStats
	if err := db.DB.Table("walkthroughs").Where("poll_id = ?", pollID).Count(&stats.Walkthroughs).Error; err != nil {
		return nil, err
	}
	if err := db.DB.Table("walkthroughs").
		Where("poll_id = ? AND completed_at IS NOT NULL", pollID).
		Count(&stats.Completed).Error; err != nil {
		return nil, err
	}

	stats.ProfileTotals = []ProfileTotal{}
	err := db.DB.Table("walkthrough_profiles").
		Select("walkthrough_profiles.profile_id, profiles.description, SUM(walkthrough_profiles.quantifier) AS total").
		Joins("JOIN walkthroughs ON walkthroughs.id = walkthrough_profiles.walkthrough_id").
		Joins("JOIN profiles ON profiles.id = walkthrough_profiles.profile_id").
		Where("walkthroughs.poll_id = ?", pollID).
		Group("walkthrough_profiles.profile_id, profiles.description").
		Order("total DESC").
		Scan(&stats.ProfileTotals).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
