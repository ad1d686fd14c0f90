package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"getabib/internal/domain"
	"getabib/internal/service"
)

const maxFeedLimit = 200

// FeedHandler expone el feed personalizado y el catalogo de carreras.
type FeedHandler struct {
	logger  *zap.Logger
	feed    *service.FeedService
	runners *service.RunnerService
}

func NewFeedHandler(logger *zap.Logger, feed *service.FeedService, runners *service.RunnerService) *FeedHandler {
	return &FeedHandler{logger: logger, feed: feed, runners: runners}
}

// Feed maneja GET /feed?limit=&exclude=a,b.
func (h *FeedHandler) Feed(c *gin.Context) {
	id, ok := runnerID(c)
	if !ok {
		return
	}
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	feed, err := h.feed.Feed(c.Request.Context(), id, service.FeedOptions{
		ExcludeIDs: splitList(c.Query("exclude")),
		Limit:      limit,
	})
	if err != nil {
		h.writeError(c, "build feed failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"races": feed})
}

// Sections maneja GET /feed/sections.
func (h *FeedHandler) Sections(c *gin.Context) {
	id, ok := runnerID(c)
	if !ok {
		return
	}
	sections, err := h.feed.Sections(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "build feed sections failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sections": sections})
}

// GoalFeed maneja GET /feed/goals.
func (h *FeedHandler) GoalFeed(c *gin.Context) {
	id, ok := runnerID(c)
	if !ok {
		return
	}
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	feed, err := h.feed.GoalFeed(c.Request.Context(), id, limit)
	if err != nil {
		h.writeError(c, "build goal feed failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"races": feed})
}

// Races maneja GET /races con filtros por query string.
func (h *FeedHandler) Races(c *gin.Context) {
	filters, err := parseRaceFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	races, err := h.feed.Races(c.Request.Context(), filters)
	if err != nil {
		h.writeError(c, "list races failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"races": races, "total": len(races)})
}

// Race maneja GET /races/:id.
func (h *FeedHandler) Race(c *gin.Context) {
	race, found, err := h.feed.RaceByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "get race failed", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "race not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"race": race})
}

// Stats maneja GET /races/stats.
func (h *FeedHandler) Stats(c *gin.Context) {
	stats, err := h.feed.Stats(c.Request.Context())
	if err != nil {
		h.writeError(c, "race stats failed", err)
		return
	}
	resp := gin.H{
		"totalRaces": stats.TotalRaces,
		"byCategory": stats.ByCategory,
		"byState":    stats.ByState,
		"cacheAgeMs": nil,
	}
	if stats.CacheAge != nil {
		resp["cacheAgeMs"] = stats.CacheAge.Milliseconds()
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh maneja POST /races/refresh.
func (h *FeedHandler) Refresh(c *gin.Context) {
	id, ok := runnerID(c)
	if !ok {
		return
	}
	total, err := h.feed.Refresh(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRefreshRateLimited) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		h.writeError(c, "refresh races failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalRaces": total})
}

// RecordView maneja POST /races/:id/view.
func (h *FeedHandler) RecordView(c *gin.Context) {
	id, ok := runnerID(c)
	if !ok {
		return
	}
	race, found, err := h.feed.RaceByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "record view failed", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "race not found"})
		return
	}
	if err := h.runners.RecordRaceView(c.Request.Context(), id, race.ID, race.Category); err != nil {
		h.writeError(c, "record view failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FeedHandler) writeError(c *gin.Context, msg string, err error) {
	if errors.Is(err, service.ErrRunnerNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "runner not found"})
		return
	}
	h.logger.Error(msg, zap.Error(err))
	c.JSON(http.StatusBadGateway, gin.H{"error": "races unavailable"})
}

func parseLimit(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	return min(limit, maxFeedLimit), nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseRaceFilters lee search, categories, start_date, end_date, location, terrain y max_price.
func parseRaceFilters(c *gin.Context) (domain.RaceFilters, error) {
	filters := domain.RaceFilters{
		Search:     c.Query("search"),
		Categories: splitList(strings.ToLower(c.Query("categories"))),
		Location:   c.Query("location"),
		Terrain:    splitList(strings.ToLower(c.Query("terrain"))),
	}
	if filters.Categories == nil {
		filters.Categories = []string{}
	}
	if filters.Terrain == nil {
		filters.Terrain = []string{}
	}
	for key, dst := range map[string]**time.Time{"start_date": &filters.StartDate, "end_date": &filters.EndDate} {
		raw := strings.TrimSpace(c.Query(key))
		if raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return domain.RaceFilters{}, fmt.Errorf("invalid %s %q", key, raw)
		}
		*dst = &t
	}
	if raw := strings.TrimSpace(c.Query("max_price")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return domain.RaceFilters{}, fmt.Errorf("invalid max_price %q", raw)
		}
		filters.MaxPrice = v
	}
	return filters, nil
}
