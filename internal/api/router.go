package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"profilingpoll/internal/config"
)

func SetupRouter(cfg *config.Config, rdb *redis.Client) *gin.Engine {
	r := gin.Default()
	subpath := cfg.Server.Subpath // e.g. "/poll" or any custom path, always starts with '/'

	group := r.Group(subpath)
	{
		group.GET("/health", healthHandler)
		group.GET("/config", configHandler(cfg))

		// Authored content (read-only; authoring happens elsewhere)
		group.GET("/polls", ListPollsHandler())
		group.GET("/polls/:slug", GetPollHandler())
		group.GET("/polls/:slug/questions/:id", GetQuestionHandler())

		// Walkthroughs: the answer ledger and its derived state
		group.POST("/polls/:slug/walkthroughs", StartWalkthroughHandler(cfg, rdb))
		group.POST("/walkthroughs/:id/answers", RecordAnswerHandler())
		group.DELETE("/walkthroughs/:id/answers/:answerId", RetractAnswerHandler())
		group.DELETE("/walkthroughs/:id/answers", ClearAnswersHandler())
		group.GET("/walkthroughs/:id/next", NextQuestionHandler())

		// Shareable results (signed token, no raw ids)
		group.GET("/results/:token", ResultHandler(cfg))

		// --- Live poll statistics ---
		group.GET("/ws/polls/:slug/stats", WSPollStatsHandler())

		// --- Online visitors count ---
		group.GET("/visitors/online", OnlineVisitorCountHandler(rdb))
	}
	return r
}
