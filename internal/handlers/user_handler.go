package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pnl-league/competition-backend/internal/services"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// JoinRequest is the payload for entering the competition
type JoinRequest struct {
	Wallet string `json:"wallet" binding:"required"`
}

// Join handles POST /traders/join
func (h *UserHandler) Join(c *gin.Context) {
	var request JoinRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, trader, err := h.userService.JoinByWallet(c.Request.Context(), request.Wallet)
	if err != nil {
		if errors.Is(err, services.ErrInsufficientHolding) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join competition: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "trader": trader})
}

// UpdateProfileRequest is the payload for changing a display profile
type UpdateProfileRequest struct {
	Wallet string `json:"wallet" binding:"required"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// UpdateProfile handles PUT /traders/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var request UpdateProfileRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), request.Wallet, request.Name, request.Avatar)
	if err != nil {
		if errors.Is(err, services.ErrUnknownWallet) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}

// Stats handles GET /stats
func (h *UserHandler) Stats(c *gin.Context) {
	stats, err := h.userService.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stats: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Leaderboard handles GET /leaderboard
func (h *UserHandler) Leaderboard(c *gin.Context) {
	limit := 10
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit (1-100)"})
			return
		}
		limit = parsed
	}

	entries, err := h.userService.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve leaderboard: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}
