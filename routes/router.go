package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cppla/arz/config"
	"github.com/cppla/arz/controllers"
	"github.com/cppla/arz/kvstore"
	"github.com/cppla/arz/middleware"
	"github.com/cppla/arz/utils"
)

// Deps are the collaborators the router hands to controllers. Cache and Guard may be nil.
type Deps struct {
	KV    kvstore.Store
	Cache *utils.Cache
	Guard *utils.RegisterGuard
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, deps Deps) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access log goes to its own rolling file; fall back to the app logger when it cannot be opened.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err != nil {
		gl = utils.Logger
	}
	r.Use(utils.Ginzap(gl, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(gl, false))

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", utils.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", utils.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute))

	health := func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	r.GET("/test", health)
	r.GET("/health", health)

	postController := controllers.NewPostController(deps.KV, deps.Cache)
	authController := controllers.NewAuthController(deps.KV, deps.Guard)
	statsController := controllers.NewStatsController(deps.KV, postController)

	r.GET("/posts", postController.ListPosts)
	r.GET("/posts/:id", postController.GetPost)
	r.POST("/posts", postController.CreatePost)
	r.PUT("/posts/:id", postController.UpdatePost)
	r.GET("/posts/:id/stats", statsController.GetPostStats)
	r.GET("/stats", statsController.GetStats)

	r.POST("/register", authController.Register)
	r.POST("/login", authController.Login)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
	})

	return r
}
