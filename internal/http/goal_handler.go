package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"getabib/internal/service"
)

// GoalHandler maneja el texto de metas y la confirmacion de tags.
type GoalHandler struct {
	logger *zap.Logger
	goals  *service.GoalsService
}

func NewGoalHandler(logger *zap.Logger, goals *service.GoalsService) *GoalHandler {
	return &GoalHandler{logger: logger, goals: goals}
}

type goalTextRequest struct {
	Text string `json:"text"`
}

// Analyze maneja POST /goals/analyze. No guarda nada.
func (h *GoalHandler) Analyze(c *gin.Context) {
	var req goalTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"parsedGoals": service.AnalyzeGoals(req.Text)})
}

// Get maneja GET /goals.
func (h *GoalHandler) Get(c *gin.Context) {
	id, ok := runnerID(c)
	if !ok {
		return
	}
	state, err := h.goals.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "get goals failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": state})
}

// Update maneja PUT /goals.
func (h *GoalHandler) Update(c *gin.Context) {
	id, ok := runnerID(c)
	if !ok {
		return
	}
	var req goalTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	state, err := h.goals.UpdateGoalText(c.Request.Context(), id, req.Text)
	if err != nil {
		h.writeError(c, "update goals failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": state})
}

// ConfirmTag maneja POST /goals/tags/:id/confirm.
func (h *GoalHandler) ConfirmTag(c *gin.Context) {
	id, ok := runnerID(c)
	if !ok {
		return
	}
	state, err := h.goals.ConfirmTag(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		h.writeError(c, "confirm goal tag failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": state})
}

// DismissTag maneja POST /goals/tags/:id/dismiss.
func (h *GoalHandler) DismissTag(c *gin.Context) {
	id, ok := runnerID(c)
	if !ok {
		return
	}
	state, err := h.goals.DismissTag(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		h.writeError(c, "dismiss goal tag failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": state})
}

// Clear maneja DELETE /goals.
func (h *GoalHandler) Clear(c *gin.Context) {
	id, ok := runnerID(c)
	if !ok {
		return
	}
	if err := h.goals.Clear(c.Request.Context(), id); err != nil {
		h.writeError(c, "clear goals failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GoalHandler) writeError(c *gin.Context, msg string, err error) {
	if errors.Is(err, service.ErrGoalTagUnknown) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.logger.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
