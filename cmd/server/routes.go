package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/classifieds-board/backend/internal/ads"
	"github.com/classifieds-board/backend/internal/auth"
	"github.com/classifieds-board/backend/internal/categories"
	"github.com/classifieds-board/backend/internal/middleware"
	"github.com/classifieds-board/backend/internal/users"
	"github.com/classifieds-board/backend/pkg/response"
)

const healthTimeout = 2 * time.Second

// Pinger reports reachability; *pgxpool.Pool and *redis.Client implement it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type routes struct {
	categories *categories.Handler
	ads        *ads.Handler
	users      *users.Handler
	auth       *auth.Handler
	validate   middleware.TokenValidator
	db         Pinger
	redis      Pinger // nil when the cleanup queue is disabled
	corsOrigin string
	mediaURL   string
	mediaRoot  string // empty unless images are kept on local disk
	maxUpload  int64
}

func newRouter(r routes, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(r.corsOrigin))
	router.Use(middleware.Logger(logger))
	if r.maxUpload > 0 {
		// multipart overhead on top of the image itself
		router.MaxMultipartMemory = r.maxUpload + 1<<20
	}

	router.GET("/", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.GET("/health", health(r.db, r.redis, logger))

	if r.mediaRoot != "" {
		router.Static(r.mediaURL, r.mediaRoot)
	}

	router.GET("/categories/", r.categories.List)
	router.POST("/categories/", r.categories.Create)
	router.GET("/categories/:id/", r.categories.GetByID)
	router.PATCH("/categories/:id/", r.categories.Update)
	router.DELETE("/categories/:id/", r.categories.Delete)

	router.GET("/ads/", r.ads.List)
	router.POST("/ads/", r.ads.Create)
	router.GET("/ads/:id/", r.ads.GetByID)
	router.POST("/ads/:id/upload/", r.ads.Upload)

	router.POST("/auth/login", r.auth.Login)
	router.POST("/users/", r.users.Create)
	router.GET("/users/me/", middleware.JWT(r.validate), r.users.Me)
	router.GET("/users/:id/", r.users.GetByID)

	return router
}

// health fails only on the database; Redis is reported since uploads work without it.
func health(db, cache Pinger, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			logger.Warn("health check: database unreachable", zap.Error(err))
			response.ServiceUnavailable(c, "database unreachable")
			return
		}
		queueState := "disabled"
		if cache != nil {
			queueState = "ok"
			if err := cache.Ping(ctx); err != nil {
				logger.Warn("health check: redis unreachable", zap.Error(err))
				queueState = "unreachable"
			}
		}
		response.OK(c, gin.H{"status": "ok", "database": "ok", "redis": queueState})
	}
}
