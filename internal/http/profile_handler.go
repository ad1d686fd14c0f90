package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"getabib/internal/service"
)

// ProfileHandler expone el cuestionario y la personalidad del corredor.
type ProfileHandler struct {
	logger   *zap.Logger
	profiles *service.ProfileService
}

func NewProfileHandler(logger *zap.Logger, profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{logger: logger, profiles: profiles}
}

// Quiz maneja GET /quiz.
func (h *ProfileHandler) Quiz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"questions": service.QuizQuestions})
}

// SubmitQuiz maneja POST /quiz.
func (h *ProfileHandler) SubmitQuiz(c *gin.Context) {
	id, ok := runnerID(c)
	if !ok {
		return
	}
	var req struct {
		Answers []service.QuizAnswer `json:"answers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	personality, err := h.profiles.SubmitQuiz(c.Request.Context(), id, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuizEmpty),
			errors.Is(err, service.ErrQuizAnswerRepeated),
			errors.Is(err, service.ErrUnknownQuizOption):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("submit quiz failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not submit quiz"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"personality": personality})
}

// Personality maneja GET /personality.
func (h *ProfileHandler) Personality(c *gin.Context) {
	id, ok := runnerID(c)
	if !ok {
		return
	}
	personality, err := h.profiles.GetPersonality(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("get personality failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load personality"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"personality": personality})
}

// ResetPersonality maneja DELETE /personality.
func (h *ProfileHandler) ResetPersonality(c *gin.Context) {
	id, ok := runnerID(c)
	if !ok {
		return
	}
	personality, err := h.profiles.ResetPersonality(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("reset personality failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reset personality"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"personality": personality})
}
