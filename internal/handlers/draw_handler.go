package handlers

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pnl-league/competition-backend/internal/services"
)

// DrawHandler handles draw-related HTTP requests
type DrawHandler struct {
	drawService services.DrawService
}

// NewDrawHandler creates a new DrawHandler
func NewDrawHandler(drawService services.DrawService) *DrawHandler {
	return &DrawHandler{
		drawService: drawService,
	}
}

var (
	drawIDPattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-\d{2}$`)
	seasonIDPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// GetRecentDraws handles GET /draws
func (h *DrawHandler) GetRecentDraws(c *gin.Context) {
	limit := 24
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit (1-200)"})
			return
		}
		limit = parsed
	}

	draws, err := h.drawService.GetRecentDraws(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve draws: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, draws)
}

// GetDrawByDrawID handles GET /draws/:drawId
func (h *DrawHandler) GetDrawByDrawID(c *gin.Context) {
	drawID := c.Param("drawId")
	if !drawIDPattern.MatchString(drawID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid draw id format (YYYY-MM-DD-HH)"})
		return
	}

	draw, err := h.drawService.GetDrawByDrawID(c.Request.Context(), drawID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve draw: " + err.Error()})
		return
	}
	if draw == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No draw found for window " + drawID})
		return
	}
	c.JSON(http.StatusOK, draw)
}

// GetDrawsBySeason handles GET /draws/season/:seasonId
func (h *DrawHandler) GetDrawsBySeason(c *gin.Context) {
	seasonID := c.Param("seasonId")
	if !seasonIDPattern.MatchString(seasonID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid season id format (YYYY-MM-DD)"})
		return
	}

	draws, err := h.drawService.GetDrawsBySeason(c.Request.Context(), seasonID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve season draws: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, draws)
}
