package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"getabib/internal/service"
)

// SavedHandler maneja la lista de carreras guardadas.
type SavedHandler struct {
	logger *zap.Logger
	saved  *service.SavedRaceService
}

func NewSavedHandler(logger *zap.Logger, saved *service.SavedRaceService) *SavedHandler {
	return &SavedHandler{logger: logger, saved: saved}
}

// List maneja GET /saved.
func (h *SavedHandler) List(c *gin.Context) {
	id, ok := runnerID(c)
	if !ok {
		return
	}
	saved, err := h.saved.List(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "list saved races failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

// Save maneja POST /saved/:id.
func (h *SavedHandler) Save(c *gin.Context) {
	id, ok := runnerID(c)
	if !ok {
		return
	}
	saved, err := h.saved.Save(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		h.writeError(c, "save race failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"saved": saved})
}

// Toggle maneja POST /saved/:id/toggle.
func (h *SavedHandler) Toggle(c *gin.Context) {
	id, ok := runnerID(c)
	if !ok {
		return
	}
	saved, err := h.saved.Toggle(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		h.writeError(c, "toggle saved race failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

// Unsave maneja DELETE /saved/:id.
func (h *SavedHandler) Unsave(c *gin.Context) {
	id, ok := runnerID(c)
	if !ok {
		return
	}
	removed, err := h.saved.Unsave(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		h.writeError(c, "unsave race failed", err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "race not saved"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Clear maneja DELETE /saved.
func (h *SavedHandler) Clear(c *gin.Context) {
	id, ok := runnerID(c)
	if !ok {
		return
	}
	if err := h.saved.Clear(c.Request.Context(), id); err != nil {
		h.writeError(c, "clear saved races failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SavedHandler) writeError(c *gin.Context, msg string, err error) {
	if errors.Is(err, service.ErrRaceNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "race not found"})
		return
	}
	h.logger.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
