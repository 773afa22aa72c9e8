package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sturner103/letter-to-you/models"
	"github.com/sturner103/letter-to-you/utils"
)

// CreateCheckinHandler records a weekly check-in and attaches a short
// generated reflection. A generation failure degrades to an empty
// reflection rather than losing the check-in.
func (s *Server) CreateCheckinHandler(c *gin.Context) {
	var req struct {
		MoodRating    *int   `json:"moodRating" binding:"required"`
		EnergyLevel   *int   `json:"energyLevel" binding:"required"`
		Wins          string `json:"wins"`
		Challenges    string `json:"challenges"`
		Gratitude     string `json:"gratitude"`
		FocusNextWeek string `json:"focusNextWeek"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing moodRating or energyLevel"})
		return
	}
	if *req.MoodRating < 1 || *req.MoodRating > 10 || *req.EnergyLevel < 1 || *req.EnergyLevel > 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ratings must be between 1 and 10"})
		return
	}

	checkin := &models.CheckIn{
		ID:            utils.GenerateULID(),
		UserID:        currentUserID(c),
		MoodRating:    *req.MoodRating,
		EnergyLevel:   *req.EnergyLevel,
		Wins:          req.Wins,
		Challenges:    req.Challenges,
		Gratitude:     req.Gratitude,
		FocusNextWeek: req.FocusNextWeek,
		CreatedAt:     time.Now().UTC(),
	}
	checkin.Reflection = s.orchestrator.GenerateCheckin(c.Request.Context(), checkin)

	if err := s.store.InsertCheckIn(checkin); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save check-in", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkin": checkin})
}

// ListCheckinsHandler returns the user's check-in history newest first.
func (s *Server) ListCheckinsHandler(c *gin.Context) {
	checkins, err := s.store.ListCheckIns(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list check-ins", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkins": checkins})
}
