package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"nrw-report-service/internal/http/middleware"
)

func NewRouter(handler *Handler, log zerolog.Logger, env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		ExposeHeaders:   []string{"Content-Type", "Content-Disposition", "X-Request-ID"},
		MaxAge:          12 * time.Hour,
	}))
	if handler.opts.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = handler.opts.MaxUploadBytes
	}

	router.GET("/healthz", handler.healthz)

	api := router.Group("/api/v1")
	{
		api.GET("/issue-types", handler.listIssueTypes)
		api.POST("/reports", handler.submitReport)
		api.POST("/reports/image-preview", handler.previewImage)
		api.GET("/confirmations/:token", handler.getConfirmation)
	}

	admin := api.Group("/admin/reports")
	{
		admin.GET("", handler.listReports)
		admin.GET("/export", handler.exportReports)
		admin.GET("/map", handler.reportMap)
		admin.GET("/stream", handler.streamReports)
		admin.POST("/refresh", handler.refreshReports)
		admin.GET("/:id", handler.getReport)
		admin.POST("/:id/toggle-resolved", handler.toggleResolved)
		admin.DELETE("/:id", handler.deleteReport)
	}

	return router
}
