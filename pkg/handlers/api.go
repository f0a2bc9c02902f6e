package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"spacetraveling/pkg/logfields"
	"spacetraveling/pkg/prismic"
	"spacetraveling/pkg/services"
)

// ListPosts returns one listing page as JSON. Without a cursor it returns the
// first page; with one it returns the page the cursor points at.
func (h *Handler) ListPosts(c *gin.Context) {
	ctx := c.Request.Context()
	cursor := c.Query("cursor")

	var (
		page services.Page
		err  error
	)
	if cursor == "" {
		page, err = h.blog.FirstPage(ctx, previewRef(c))
	} else {
		page, err = h.blog.NextPage(ctx, cursor)
	}

	var loadErr *services.PageLoadError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, page)
	case errors.Is(err, prismic.ErrInvalidCursor):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cursor"})
	case errors.As(err, &loadErr):
		h.logger.Warn("Load more failed",
			logfields.RequestID(requestID(c)),
			logfields.Cursor(loadErr.Cursor),
			logfields.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load posts", "retry_cursor": loadErr.Cursor})
	default:
		h.logger.Error("Listing failed", logfields.RequestID(requestID(c)), logfields.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load posts"})
	}
}

// GetPost returns the page model of one post as JSON.
func (h *Handler) GetPost(c *gin.Context) {
	uid := c.Param("slug")
	page, err := h.blog.PostPage(c.Request.Context(), uid, previewRef(c))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, page)
	case errors.Is(err, services.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
	default:
		h.logger.Error("Failed to load post", logfields.RequestID(requestID(c)), logfields.PostUID(uid), logfields.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load post"})
	}
}

type revalidateRequest struct {
	Secret string `json:"secret"`
}

// Revalidate drops the cached listing. It is meant as the CMS publish
// webhook and requires the shared secret.
func (h *Handler) Revalidate(c *gin.Context) {
	if h.revalidateSecret == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "revalidation is disabled"})
		return
	}
	secret := c.GetHeader(revalidateHeader)
	if secret == "" {
		var req revalidateRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			secret = req.Secret
		}
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.revalidateSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid secret"})
		return
	}
	h.blog.InvalidateListing()
	h.logger.Info("Listing invalidated by webhook", logfields.RequestID(requestID(c)))
	c.JSON(http.StatusOK, gin.H{"revalidated": true})
}
