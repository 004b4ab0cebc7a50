package router

import (
	"quill/internal/config"
	"quill/internal/middleware"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// NewEngine assembles the middleware chain and the routes. limiter may be nil.
func NewEngine(cfg config.Config, d Deps, limiter middleware.Limiter) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Env != config.EnvTest {
		r.Use(middleware.RequestLogger())
	}
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if limiter != nil {
		r.Use(middleware.RateLimit(limiter, cfg.RateLimitMax))
	}

	RegisterRoutes(r, d)
	return r
}
