package app

import (
	"trading_edu_backend/docs"
	"trading_edu_backend/internal/config"
	"trading_edu_backend/internal/middleware"
	"trading_edu_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 需要授权的路由
	education := router.Group("/api/education")
	education.Use(middleware.AuthMiddleware(&cfg.JWT))
	{
		a.registerProgressRoutes(education, c)
		a.registerQuizRoutes(education, c)
	}
}

func (a *App) registerProgressRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/progress", c.education.GetProgress)
	group.PUT("/level", c.education.SetLevel)
	group.GET("/levels/:level/modules", c.education.ListModules)
	group.POST("/modules/:moduleId/select", c.education.SelectModule)
	group.POST("/modules/:moduleId/view", c.education.MarkViewed)
	group.POST("/cards/next", c.education.NextCard)
	group.POST("/cards/prev", c.education.PrevCard)
	group.DELETE("/auto-launch", c.education.ClearAutoLaunch)
	group.POST("/quiz-results", c.education.RecordQuizResult)
	group.GET("/stats", c.education.GetStats)
	group.GET("/badges", c.education.GetBadges)
	group.POST("/session/end", c.education.EndSession)
}

func (a *App) registerQuizRoutes(group *gin.RouterGroup, c *controllers) {
	group.POST("/quiz/:moduleId/start", c.quiz.Start)
	group.GET("/quiz", c.quiz.Current)
	group.POST("/quiz/answer", c.quiz.Answer)
	group.POST("/quiz/next", c.quiz.Next)
	group.POST("/quiz/restart", c.quiz.Restart)
	group.DELETE("/quiz", c.quiz.Abandon)
}
