package app

import (
	"coder_edu_progress/docs"
	"coder_edu_progress/internal/config"
	"coder_edu_progress/internal/middleware"
	"coder_edu_progress/internal/model"
	"coder_edu_progress/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		// 学员接口，任何已登录角色均可访问
		a.registerLearnerRoutes(authGroup, c)

		// 教师相关接口
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}
}

func (a *App) registerLearnerRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/enrollments", c.enrollment.ListEnrollments)

	courses := rg.Group("/courses/:slug")
	{
		courses.GET("", c.course.GetCourse)
		courses.POST("/enroll", c.enrollment.Enroll)
		courses.GET("/enrollment", c.enrollment.GetEnrollment)
		courses.POST("/contents/:contentId/complete", c.enrollment.CompleteContent)
		courses.GET("/progress", c.progression.GetProgress)
		courses.GET("/navigation", c.progression.GetNavigation)
	}
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.POST("/courses/import", c.course.Import)
		teacher.GET("/courses/:slug/revisions/:revision", c.course.GetArchive)
	}
}
