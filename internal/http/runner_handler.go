package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"getabib/internal/domain"
	"getabib/internal/service"
)

// RunnerHandler mantiene dependencias para el alta de dispositivos y el perfil del corredor.
type RunnerHandler struct {
	logger  *zap.Logger
	runners *service.RunnerService
	jwtServ *service.JWTService
}

func NewRunnerHandler(logger *zap.Logger, runners *service.RunnerService, jwtServ *service.JWTService) *RunnerHandler {
	return &RunnerHandler{
		logger:  logger,
		runners: runners,
		jwtServ: jwtServ,
	}
}

// Register maneja POST /runners.
func (h *RunnerHandler) Register(c *gin.Context) {
	var req struct {
		DeviceID    string `json:"device_id" binding:"required"`
		DisplayName string `json:"display_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register runner request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	runner, created, err := h.runners.Register(c.Request.Context(), service.RegisterRunnerInput{
		DeviceID:    req.DeviceID,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidDevice) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("register runner failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register runner"})
		return
	}

	tokens, err := h.jwtServ.GeneratePair(c.Request.Context(), runner)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"runner": runner, "tokens": tokens})
}

// Refresh maneja POST /auth/refresh.
func (h *RunnerHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	tokens, err := h.jwtServ.RefreshPair(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// Logout maneja POST /auth/logout. all_devices cierra la sesion en todos los dispositivos.
func (h *RunnerHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
		AllDevices   bool   `json:"all_devices"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := h.jwtServ.Logout(c.Request.Context(), req.RefreshToken, req.AllDevices); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Me maneja GET /runners/me.
func (h *RunnerHandler) Me(c *gin.Context) {
	id, ok := runnerID(c)
	if !ok {
		return
	}
	runner, err := h.runners.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "get runner failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runner": runner})
}

// UpdateLocation maneja PUT /runners/me/location.
func (h *RunnerHandler) UpdateLocation(c *gin.Context) {
	id, ok := runnerID(c)
	if !ok {
		return
	}
	var req service.LocationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	runner, err := h.runners.UpdateLocation(c.Request.Context(), id, req)
	if err != nil {
		h.writeError(c, "update location failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runner": runner})
}

// ClearLocation maneja DELETE /runners/me/location.
func (h *RunnerHandler) ClearLocation(c *gin.Context) {
	id, ok := runnerID(c)
	if !ok {
		return
	}
	if err := h.runners.ClearLocation(c.Request.Context(), id); err != nil {
		h.writeError(c, "clear location failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdatePreferences maneja PUT /runners/me/preferences.
func (h *RunnerHandler) UpdatePreferences(c *gin.Context) {
	id, ok := runnerID(c)
	if !ok {
		return
	}
	var req domain.RunnerPreferences
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	runner, err := h.runners.UpdatePreferences(c.Request.Context(), id, req)
	if err != nil {
		h.writeError(c, "update preferences failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runner": runner})
}

func (h *RunnerHandler) writeError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrRunnerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "runner not found"})
	case errors.Is(err, service.ErrInvalidLocation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
