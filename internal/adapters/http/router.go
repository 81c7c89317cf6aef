package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tobeoren/classroom/internal/adapters/signal"
	"github.com/tobeoren/classroom/internal/config"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware tags every browser with a long-lived cookie so
// the frontend has a stable seed for its device fingerprint.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, ctl *signal.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(SecurityHeaders())
	r.Use(OriginAllowList(cfg.AllowedOrigins))
	r.Use(RateLimit(NewIPRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)))

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("ClassroomSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")
	api.GET("/ws", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("client", c.GetString("client_token")).Msg("ws endpoint hit")
		ctl.HandleWS(ctx, c)
	})

	return r
}
