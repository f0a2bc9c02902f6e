// Package handlers exposes the blog over HTTP with gin.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"spacetraveling/pkg/services"
	"spacetraveling/pkg/views"
)

const (
	sessionName      = "spacetraveling"
	previewRefKey    = "preview_ref"
	requestIDHeader  = "X-Request-ID"
	requestIDKey     = "request_id"
	revalidateHeader = "X-Revalidate-Secret"
)

// Handler serves the pages and the JSON API for one blog.
type Handler struct {
	blog             *services.Blog
	renderer         *views.Renderer
	revalidateSecret string
	logger           *slog.Logger
}

// New builds a Handler. An empty revalidateSecret disables the webhook.
func New(blog *services.Blog, renderer *views.Renderer, revalidateSecret string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{blog: blog, renderer: renderer, revalidateSecret: revalidateSecret, logger: logger}
}

// previewRef returns the ref stored by the preview endpoint, or "" for
// published content.
func previewRef(c *gin.Context) string {
	ref, _ := sessions.Default(c).Get(previewRefKey).(string)
	return ref
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func (h *Handler) renderError(c *gin.Context, status int, message, retry string) {
	c.HTML(status, views.ErrorTemplate, h.renderer.Message(message, retry))
}

// Healthz reports liveness.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
