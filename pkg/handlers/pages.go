package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"spacetraveling/pkg/logfields"
	"spacetraveling/pkg/services"
	"spacetraveling/pkg/views"
)

// Listing renders the home page with the first page of posts.
func (h *Handler) Listing(c *gin.Context) {
	page, err := h.blog.FirstPage(c.Request.Context(), previewRef(c))
	if err != nil {
		h.logger.Error("Failed to load listing", logfields.RequestID(requestID(c)), logfields.Error(err))
		h.renderError(c, http.StatusBadGateway, "Não foi possível carregar os posts.", "/")
		return
	}
	c.HTML(http.StatusOK, views.ListingTemplate, h.renderer.Listing(page.Items, page.NextCursor, false))
}

// Post renders a single post page.
func (h *Handler) Post(c *gin.Context) {
	uid := c.Param("slug")
	page, err := h.blog.PostPage(c.Request.Context(), uid, previewRef(c))
	switch {
	case errors.Is(err, services.ErrPostNotFound):
		c.HTML(http.StatusNotFound, views.NotFoundTemplate, h.renderer.Message("O post "+uid+" não existe.", ""))
		return
	case err != nil:
		h.logger.Error("Failed to load post",
			logfields.RequestID(requestID(c)),
			logfields.PostUID(uid),
			logfields.Error(err))
		h.renderError(c, http.StatusBadGateway, "Não foi possível carregar o post.", c.Request.URL.Path)
		return
	}
	c.HTML(http.StatusOK, views.PostTemplate, h.renderer.Post(page))
}
