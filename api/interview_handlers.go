package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sturner103/letter-to-you/interview"
	"github.com/sturner103/letter-to-you/letters"
	"github.com/sturner103/letter-to-you/models"
	"github.com/sturner103/letter-to-you/questions"
	"github.com/sturner103/letter-to-you/utils"
)

// StartInterviewHandler opens an interview session for a mode. Paid modes
// require a verified, unconsumed purchase; the check runs on every start,
// never cached, because purchases are single-use.
func (s *Server) StartInterviewHandler(c *gin.Context) {
	var req struct {
		Mode string `json:"mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing mode"})
		return
	}
	if !questions.KnownMode(req.Mode) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown mode"})
		return
	}

	userID := currentUserID(c)
	purchase, err := s.gate.Access(userID, req.Mode, questions.ModeName(req.Mode))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Purchase check failed", "details": err.Error()})
		return
	}
	if purchase == nil {
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "No unused purchase for this mode"})
		return
	}

	sess, err := interview.New(utils.GenerateULID(), userID, req.Mode, purchase.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.sessions.Put(sess)

	c.JSON(http.StatusOK, gin.H{"session": sess.Snapshot()})
}

// session loads the caller's live session or writes the error response.
func (s *Server) session(c *gin.Context) *interview.Session {
	sess := s.sessions.Get(c.Param("id"))
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found or expired"})
		return nil
	}
	if sess.UserID != currentUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found or expired"})
		return nil
	}
	return sess
}

func (s *Server) InterviewSnapshotHandler(c *gin.Context) {
	sess := s.session(c)
	if sess == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.Snapshot()})
}

// AnswerHandler records a primary answer.
func (s *Server) AnswerHandler(c *gin.Context) {
	sess := s.session(c)
	if sess == nil {
		return
	}
	var req struct {
		QuestionID string `json:"questionId" binding:"required"`
		Text       string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing questionId"})
		return
	}
	if err := sess.Answer(req.QuestionID, req.Text); err != nil {
		writeInterviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.Snapshot()})
}

// FollowUpHandler opens or closes a follow-up and records its answer.
func (s *Server) FollowUpHandler(c *gin.Context) {
	sess := s.session(c)
	if sess == nil {
		return
	}
	var req struct {
		QuestionID string  `json:"questionId" binding:"required"`
		Open       *bool   `json:"open"`
		Text       *string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing questionId"})
		return
	}
	if req.Open != nil {
		if err := sess.OpenFollowUp(req.QuestionID, *req.Open); err != nil {
			writeInterviewError(c, err)
			return
		}
	}
	if req.Text != nil {
		if err := sess.AnswerFollowUp(req.QuestionID, *req.Text); err != nil {
			writeInterviewError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.Snapshot()})
}

// ToneHandler sets the letter tone; only settable on the final question.
func (s *Server) ToneHandler(c *gin.Context) {
	sess := s.session(c)
	if sess == nil {
		return
	}
	var req struct {
		Tone string `json:"tone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing tone"})
		return
	}
	if err := sess.SetTone(models.Tone(req.Tone)); err != nil {
		writeInterviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.Snapshot()})
}

// NextHandler advances the interview. On the final question it runs the
// safety scan and either redirects to crisis resources or generates the
// letter inline.
func (s *Server) NextHandler(c *gin.Context) {
	s.forward(c, func(sess *interview.Session) interview.Outcome { return sess.Next() })
}

// SkipHandler skips the current question. Skipping still counts as
// forward navigation, so the safety scan is not bypassed.
func (s *Server) SkipHandler(c *gin.Context) {
	s.forward(c, func(sess *interview.Session) interview.Outcome { return sess.Skip() })
}

func (s *Server) forward(c *gin.Context, step func(*interview.Session) interview.Outcome) {
	sess := s.session(c)
	if sess == nil {
		return
	}

	var req struct {
		DeliveryDate *time.Time `json:"deliveryDate"`
	}
	// Body is optional on navigation.
	_ = c.ShouldBindJSON(&req)

	switch step(sess) {
	case interview.OutcomeRejected:
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Session is not accepting input",
			"session": sess.Snapshot(),
		})
	case interview.OutcomeCrisis:
		s.sessions.Remove(sess.ID)
		c.JSON(http.StatusOK, gin.H{
			"session":         sess.Snapshot(),
			"crisisResources": questions.CrisisResources,
		})
	case interview.OutcomeSubmit:
		result, err := s.orchestrator.Generate(c.Request.Context(), sess, req.DeliveryDate)
		if errors.Is(err, letters.ErrGeneration) {
			// Answers are preserved; the client may retry.
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Letter generation failed",
				"details": err.Error(),
				"session": sess.Snapshot(),
			})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Letter generation failed", "details": err.Error()})
			return
		}
		s.sessions.Remove(sess.ID)
		s.letterCache.Invalidate(sess.UserID)
		c.JSON(http.StatusOK, gin.H{
			"session": sess.Snapshot(),
			"letter":  result.Letter,
			"saved":   result.Saved,
		})
	default:
		c.JSON(http.StatusOK, gin.H{"session": sess.Snapshot()})
	}
}

func (s *Server) PrevHandler(c *gin.Context) {
	sess := s.session(c)
	if sess == nil {
		return
	}
	sess.Prev()
	c.JSON(http.StatusOK, gin.H{"session": sess.Snapshot()})
}

// JumpHandler moves to an already-visited question without a safety scan.
func (s *Server) JumpHandler(c *gin.Context) {
	sess := s.session(c)
	if sess == nil {
		return
	}
	var req struct {
		Index *int `json:"index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Index == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing index"})
		return
	}
	if err := sess.Jump(*req.Index); err != nil {
		writeInterviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.Snapshot()})
}

// ResetHandler implements "start over": the old session is discarded and
// a fresh one opened against the same purchase.
func (s *Server) ResetHandler(c *gin.Context) {
	sess := s.session(c)
	if sess == nil {
		return
	}
	s.sessions.Remove(sess.ID)

	fresh, err := interview.New(utils.GenerateULID(), sess.UserID, sess.Mode, sess.PurchaseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset session", "details": err.Error()})
		return
	}
	s.sessions.Put(fresh)
	c.JSON(http.StatusOK, gin.H{"session": fresh.Snapshot()})
}

func writeInterviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, interview.ErrNotBrowsing),
		errors.Is(err, interview.ErrUnknownQuestion),
		errors.Is(err, interview.ErrBadIndex),
		errors.Is(err, interview.ErrBadTone),
		errors.Is(err, interview.ErrToneLocked),
		errors.Is(err, interview.ErrNoFollowUp):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// ListModesHandler returns the general and life-event mode catalogs plus
// the quick-letter question set.
func (s *Server) ListModesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"modes":          questions.Modes,
		"lifeEventModes": questions.LifeEventModes,
		"quickQuestions": questions.QuickQuestions,
	})
}

// CrisisResourcesHandler serves the crisis resource list directly.
func (s *Server) CrisisResourcesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, questions.CrisisResources)
}
