package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"spacetraveling/pkg/views"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	SessionSecret string
	// StaticDir is served under /static when set.
	StaticDir string
	// Metrics is served under /metrics when set.
	Metrics http.Handler
}

// NewRouter wires every route of the site onto a gin engine.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), RequestID())

	secret := opts.SessionSecret
	if secret == "" {
		h.logger.Warn("SESSION_SECRET is not set, preview sessions will not survive a restart")
		secret = uuid.NewString()
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))

	r.SetHTMLTemplate(h.renderer.Template())
	if opts.StaticDir != "" {
		r.Static("/static", opts.StaticDir)
	}

	r.GET("/", h.Listing)
	r.GET("/post/:slug", h.Post)
	r.GET("/healthz", Healthz)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	api := r.Group("/api")
	{
		api.GET("/posts", h.ListPosts)
		api.GET("/posts/:slug", h.GetPost)
		api.GET("/preview", h.Preview)
		api.GET("/exit-preview", h.ExitPreview)
		api.POST("/revalidate", h.Revalidate)
	}

	r.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, views.NotFoundTemplate, h.renderer.Message("Página não encontrada.", ""))
	})
	return r
}

// RequestID tags every request with an id, reusing the caller's when given.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
