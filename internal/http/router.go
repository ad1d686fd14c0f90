package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"getabib/internal/service"
)

// Handlers agrupa los handlers que monta el router.
type Handlers struct {
	Runners  *RunnerHandler
	Profiles *ProfileHandler
	Goals    *GoalHandler
	Feed     *FeedHandler
	Saved    *SavedHandler
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(logger *zap.Logger, jwtSvc *service.JWTService, h Handlers) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("")
	api.Use(jsonContentTypeMiddleware())

	api.POST("/runners", h.Runners.Register)
	api.POST("/auth/refresh", h.Runners.Refresh)
	api.POST("/auth/logout", h.Runners.Logout)
	api.POST("/goals/analyze", h.Goals.Analyze)
	api.GET("/quiz", h.Profiles.Quiz)

	authed := api.Group("")
	authed.Use(JWTAuthMiddleware(jwtSvc))

	me := authed.Group("/runners/me")
	me.GET("", h.Runners.Me)
	me.PUT("/location", h.Runners.UpdateLocation)
	me.DELETE("/location", h.Runners.ClearLocation)
	me.PUT("/preferences", h.Runners.UpdatePreferences)

	authed.POST("/quiz", h.Profiles.SubmitQuiz)
	authed.GET("/personality", h.Profiles.Personality)
	authed.DELETE("/personality", h.Profiles.ResetPersonality)

	goals := authed.Group("/goals")
	goals.GET("", h.Goals.Get)
	goals.PUT("", h.Goals.Update)
	goals.DELETE("", h.Goals.Clear)
	goals.POST("/tags/:id/confirm", h.Goals.ConfirmTag)
	goals.POST("/tags/:id/dismiss", h.Goals.DismissTag)

	feed := authed.Group("/feed")
	feed.GET("", h.Feed.Feed)
	feed.GET("/sections", h.Feed.Sections)
	feed.GET("/goals", h.Feed.GoalFeed)

	races := authed.Group("/races")
	races.GET("", h.Feed.Races)
	races.GET("/stats", h.Feed.Stats)
	races.POST("/refresh", h.Feed.Refresh)
	races.GET("/:id", h.Feed.Race)
	races.POST("/:id/view", h.Feed.RecordView)

	saved := authed.Group("/saved")
	saved.GET("", h.Saved.List)
	saved.DELETE("", h.Saved.Clear)
	saved.POST("/:id", h.Saved.Save)
	saved.POST("/:id/toggle", h.Saved.Toggle)
	saved.DELETE("/:id", h.Saved.Unsave)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
