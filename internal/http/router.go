package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"guias-service/internal/db"
)

func NewRouter(handler *Handler, authMiddleware gin.HandlerFunc, database *gorm.DB, env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		ExposeHeaders:   []string{"Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		if err := db.HealthCheck(c.Request.Context(), database); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	protected := router.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.POST("/weeks/current/bootstrap", handler.bootstrapWeek)

		protected.GET("/guides", handler.listGuides)

		protected.GET("/records", handler.listRecords)
		protected.PATCH("/records/:id/call-date", handler.setCallDate)
		protected.PATCH("/records/:id/action", handler.setAction)
		protected.PATCH("/records/:id/tier", handler.setTier)
		protected.POST("/records/:id/annotations", handler.addAnnotation)
	}

	return router
}
