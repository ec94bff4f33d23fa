package app

import (
	"gradebook_backend/docs"
	"gradebook_backend/internal/config"
	"gradebook_backend/internal/middleware"
	"gradebook_backend/pkg/monitoring"

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
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerGradeRoutes(authGroup, c)
		a.registerTimetableRoutes(authGroup, c)
	}
}

func (a *App) registerGradeRoutes(rg *gin.RouterGroup, c *controllers) {
	grades := rg.Group("/grades")
	grades.Use(middleware.RequireAccount())
	{
		grades.GET("/periods", c.grade.GetPeriods)
		grades.GET("", c.grade.GetGradesAndAverages)
	}
}

func (a *App) registerTimetableRoutes(rg *gin.RouterGroup, c *controllers) {
	tt := rg.Group("/timetable")
	{
		tt.GET("", c.timetable.GetTimetables)
		tt.GET("/weeks/:week", c.timetable.GetClasses)
		tt.PUT("/weeks/:week", c.timetable.UpdateClasses)
		tt.DELETE("/weeks/:week", c.timetable.RemoveClasses)
		tt.DELETE("/sources/:source", c.timetable.RemoveClassesFromSource)
	}
}
