package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sturner103/letter-to-you/letters"
	"github.com/sturner103/letter-to-you/models"
	"github.com/sturner103/letter-to-you/questions"
	"github.com/sturner103/letter-to-you/store"
)

// GenerateLetterHandler is the quick-mode path: the client supplies a
// preformatted transcript instead of driving an interview session. The
// safety scan still runs over the raw text; quick answers are not a way
// around it.
func (s *Server) GenerateLetterHandler(c *gin.Context) {
	var req struct {
		Mode         string     `json:"mode"`
		ModeName     string     `json:"modeName"`
		Tone         string     `json:"tone"`
		QAPairs      string     `json:"qaPairs" binding:"required"`
		DeliveryDate *time.Time `json:"deliveryDate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing qaPairs"})
		return
	}

	if questions.ContainsCrisisSignal(req.QAPairs) {
		c.JSON(http.StatusOK, gin.H{"crisisResources": questions.CrisisResources})
		return
	}

	tone := models.Tone(req.Tone)
	if !models.ValidTone(tone) {
		tone = models.ToneWarm
	}
	mode := req.Mode
	if mode == "" {
		mode = "quick"
	}
	modeName := req.ModeName
	if modeName == "" {
		modeName = "Quick Letter"
	}

	result, err := s.orchestrator.GenerateFromTranscript(c.Request.Context(),
		currentUserID(c), mode, modeName, tone, req.QAPairs, req.DeliveryDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Letter generation failed", "details": err.Error()})
		return
	}

	s.letterCache.Invalidate(currentUserID(c))
	c.JSON(http.StatusOK, gin.H{"letter": result.Letter, "saved": result.Saved})
}

// ListLettersHandler returns the archive. The default newest-first list is
// served from the stale-while-revalidate cache; explicit sorts go direct.
func (s *Server) ListLettersHandler(c *gin.Context) {
	userID := currentUserID(c)
	sort := c.DefaultQuery("sort", store.SortNewest)

	var (
		list []*models.Letter
		err  error
	)
	if sort == store.SortNewest {
		list, err = s.letterCache.Get(userID)
	} else {
		list, err = s.store.ListLetters(userID, sort)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list letters", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"letters": list})
}

func (s *Server) GetLetterHandler(c *gin.Context) {
	letter, err := s.store.GetLetter(c.Param("id"), currentUserID(c))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Letter not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load letter", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"letter": letter})
}

func (s *Server) DeleteLetterHandler(c *gin.Context) {
	userID := currentUserID(c)
	err := s.store.DeleteLetter(c.Param("id"), userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Letter not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete letter", "details": err.Error()})
		return
	}
	s.letterCache.Invalidate(userID)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CompareLettersHandler generates a change narrative for exactly two
// letters, ordered oldest-first no matter how they were picked.
func (s *Server) CompareLettersHandler(c *gin.Context) {
	var req struct {
		LetterIDs []string `json:"letterIds" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing letterIds"})
		return
	}
	if len(req.LetterIDs) != 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": letters.ErrSelectionShort.Error()})
		return
	}

	comparison, err := s.orchestrator.Compare(c.Request.Context(),
		currentUserID(c), req.LetterIDs[0], req.LetterIDs[1])
	if errors.Is(err, letters.ErrSameLetter) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Letter not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Comparison failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, comparison)
}

// EmailLetterHandler sends one of the user's letters to an address now.
func (s *Server) EmailLetterHandler(c *gin.Context) {
	var req struct {
		LetterID string `json:"letterId" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Name     string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing letterId or email"})
		return
	}

	letter, err := s.store.GetLetter(req.LetterID, currentUserID(c))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Letter not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load letter", "details": err.Error()})
		return
	}

	if s.emailClient == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Email is not configured"})
		return
	}
	if err := s.emailClient.SendLetterEmail(req.Email, req.Name, letter); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send letter", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}
