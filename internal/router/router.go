package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studyhub/internal/handler"
	"studyhub/internal/middleware"
)

func New(
	tokens middleware.TokenParser,
	authHandler *handler.AuthHandler,
	timerHandler *handler.TimerHandler,
	statsHandler *handler.StatsHandler,
	corsOrigins []string,
) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	requireAuth := middleware.Auth(tokens)

	timer := api.Group("/timer")
	timer.Use(requireAuth)
	timer.GET("/state", timerHandler.GetState)
	timer.POST("/start", timerHandler.Start)
	timer.POST("/pause", timerHandler.Pause)
	timer.POST("/reset", timerHandler.Reset)
	timer.POST("/mode", timerHandler.SwitchMode)
	timer.GET("/settings", timerHandler.GetSettings)
	timer.PUT("/settings", timerHandler.UpdateSettings)
	timer.GET("/events", timerHandler.Events)

	sessions := api.Group("/sessions")
	sessions.Use(requireAuth)
	sessions.GET("", statsHandler.History)
	sessions.GET("/stats", statsHandler.Stats)
	sessions.GET("/report", statsHandler.Report)

	api.GET("/leaderboard", requireAuth, statsHandler.Leaderboard)

	return engine
}
