package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"spacetraveling/pkg/logfields"
	"spacetraveling/pkg/services"
)

// Preview starts a preview session. The CMS calls it with the preview ref as
// token and the id of the edited document.
func (h *Handler) Preview(c *gin.Context) {
	ref := c.Query("token")
	documentID := c.Query("documentId")
	if ref == "" || documentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token and documentId are required"})
		return
	}

	uid, err := h.blog.ResolvePreview(c.Request.Context(), documentID, ref)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, services.ErrPostNotFound) {
			status = http.StatusNotFound
		}
		h.logger.Warn("Failed to resolve preview",
			logfields.RequestID(requestID(c)),
			logfields.DocumentID(documentID),
			logfields.Error(err))
		c.JSON(status, gin.H{"error": "failed to resolve preview"})
		return
	}

	session := sessions.Default(c)
	session.Set(previewRefKey, ref)
	if err := session.Save(); err != nil {
		h.logger.Error("Failed to save session", logfields.RequestID(requestID(c)), logfields.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start preview"})
		return
	}
	c.Redirect(http.StatusFound, "/post/"+url.PathEscape(uid))
}

// ExitPreview ends the preview session.
func (h *Handler) ExitPreview(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete(previewRefKey)
	if err := session.Save(); err != nil {
		h.logger.Error("Failed to save session", logfields.RequestID(requestID(c)), logfields.Error(err))
	}
	c.Redirect(http.StatusFound, "/")
}
