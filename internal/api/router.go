// Package api assembles the gin engine: middleware stack, validation and
// routes.
package api

import (
	"regexp"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/gin-blog/config"
	_ "github.com/d60-Lab/gin-blog/docs"
	"github.com/d60-Lab/gin-blog/internal/api/handler"
	"github.com/d60-Lab/gin-blog/internal/api/middleware"
)

var tagNameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// RegisterValidations installs custom binding validators. Tag names are
// checked pre-normalization, so mixed case is fine; separators are not.
func RegisterValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("tagname", func(fl validator.FieldLevel) bool {
			return tagNameRe.MatchString(fl.Field().String())
		})
	}
}

// NewRouter builds the engine with the full middleware stack and routes.
func NewRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	RegisterValidations()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.Server.RateLimit > 0 {
		r.Use(middleware.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))
	}
	if cfg.Trace.Enabled {
		r.Use(otelgin.Middleware("gin-blog"))
	}
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	secret := cfg.JWT.Secret
	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
		}

		// Public reads resolve the viewer when a token is present; the
		// access rules distinguish anonymous from unauthorized.
		public := v1.Group("", middleware.OptionalAuth(secret))
		{
			public.GET("/posts", h.ListPosts)
			public.GET("/posts/:id", h.GetPost)
			public.GET("/relations/:user_id/fans", h.ListFans)
		}

		authed := v1.Group("", middleware.Auth(secret))
		{
			authed.POST("/posts", h.CreatePost)
			authed.PUT("/posts/:id", h.UpdatePost)
			authed.DELETE("/posts/:id", h.DeletePost)
			authed.POST("/posts/:id/privacy", h.SetPrivacy)
			authed.POST("/posts/:id/comments", h.CreateComment)

			authed.POST("/posts/:id/access-requests", h.RequestAccess)
			authed.POST("/posts/:id/access-grants", h.ToggleGrant)
			authed.GET("/access-requests/incoming", h.ListIncomingRequests)
			authed.GET("/access-requests/outgoing", h.ListOutgoingRequests)

			authed.POST("/relations/follow", h.Follow)
			authed.POST("/relations/unfollow", h.Unfollow)
			authed.GET("/relations/following", h.ListFollowing)

			authed.GET("/feed", h.Feed)
		}
	}
	return r
}
