package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
)

// writeError maps the error taxonomy onto HTTP statuses.
func (s *Server) writeError(c *gin.Context, err error) {
	var genErr *domain.GenerationError

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrConsentDenied):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrPersonaNotAssigned):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.As(err, &genErr):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func windowDaysParam(c *gin.Context, fallback int) int {
	raw := c.DefaultQuery("window_days", strconv.Itoa(fallback))
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		return fallback
	}
	return days
}

// --- recommendations ---

func (s *Server) handleGenerate(c *gin.Context) {
	userID := c.Param("id")
	windowDays := windowDaysParam(c, domain.WindowShort)
	force := c.Query("force_regenerate") == "true"

	recs, err := s.orchestrator.Generate(c.Request.Context(), userID, windowDays, force)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":         userID,
		"window_days":     windowDays,
		"recommendations": recs,
		"count":           len(recs),
	})
}

func (s *Server) handleListRecommendations(c *gin.Context) {
	userID := c.Param("id")
	status := c.Query("status")
	windowDays := 0
	if raw := c.Query("window_days"); raw != "" {
		windowDays = windowDaysParam(c, 0)
	}

	recs, err := s.store.ListRecommendations(userID, status, windowDays)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if recs == nil {
		recs = []*domain.Recommendation{}
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":         userID,
		"recommendations": recs,
		"count":           len(recs),
	})
}

type actionRequest struct {
	OperatorID string `json:"operator_id" binding:"required"`
	Reason     string `json:"reason"`
	NewTitle   string `json:"new_title"`
	NewContent string `json:"new_content"`
}

func (s *Server) handleApprove(c *gin.Context) {
	s.handleAction(c, domain.ActionApprove)
}

func (s *Server) handleReject(c *gin.Context) {
	s.handleAction(c, domain.ActionReject)
}

func (s *Server) handleOverride(c *gin.Context) {
	s.handleAction(c, domain.ActionOverride)
}

func (s *Server) handleAction(c *gin.Context, actionType string) {
	recID := c.Param("id")

	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch actionType {
	case domain.ActionReject:
		if req.Reason == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reason is required to reject"})
			return
		}
	case domain.ActionOverride:
		if req.Reason == "" || req.NewTitle == "" || req.NewContent == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reason, new_title, and new_content are required to override"})
			return
		}
	}

	rec, err := s.store.Transition(recID, domain.OperatorAction{
		OperatorID: req.OperatorID,
		ActionType: actionType,
		Reason:     req.Reason,
	}, req.NewTitle, req.NewContent, time.Now())
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

type bulkApproveRequest struct {
	OperatorID        string   `json:"operator_id" binding:"required"`
	RecommendationIDs []string `json:"recommendation_ids" binding:"required"`
}

func (s *Server) handleBulkApprove(c *gin.Context) {
	var req bulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	approved := make([]string, 0, len(req.RecommendationIDs))
	failed := make(map[string]string)
	for _, recID := range req.RecommendationIDs {
		_, err := s.store.Transition(recID, domain.OperatorAction{
			OperatorID: req.OperatorID,
			ActionType: domain.ActionApprove,
		}, "", "", time.Now())
		if err != nil {
			failed[recID] = err.Error()
			continue
		}
		approved = append(approved, recID)
	}

	c.JSON(http.StatusOK, gin.H{
		"approved": approved,
		"failed":   failed,
	})
}

// --- features & personas ---

func (s *Server) handleComputeFeatures(c *gin.Context) {
	userID := c.Param("user_id")
	windowDays := windowDaysParam(c, domain.WindowShort)

	if _, err := s.store.GetUser(userID); err != nil {
		s.writeError(c, err)
		return
	}

	snap, err := s.aggregator.Compute(userID, windowDays)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleGetFeatures(c *gin.Context) {
	userID := c.Param("user_id")
	windowDays := windowDaysParam(c, domain.WindowShort)

	snap, err := s.store.GetSnapshot(userID, windowDays)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleAssignPersona(c *gin.Context) {
	userID := c.Param("user_id")
	windowDays := windowDaysParam(c, domain.WindowShort)

	assignment, err := s.personas.Assign(userID, windowDays)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

func (s *Server) handleGetPersonas(c *gin.Context) {
	userID := c.Param("user_id")

	assignments, err := s.store.GetPersonas(userID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if assignments == nil {
		assignments = []domain.PersonaAssignment{}
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "personas": assignments})
}

// --- consent ---

type consentRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Consent *bool  `json:"consent" binding:"required"`
}

func (s *Server) handleSetConsent(c *gin.Context) {
	var req consentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.store.SetConsent(req.UserID, *req.Consent, time.Now()); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": req.UserID, "consent": *req.Consent})
}

func (s *Server) handleGetConsent(c *gin.Context) {
	userID := c.Param("user_id")

	user, err := s.store.GetUser(userID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	log, err := s.store.GetConsentLog(userID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if log == nil {
		log = []domain.ConsentLogEntry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":            user.UserID,
		"consent_status":     user.ConsentStatus,
		"consent_granted_at": user.ConsentGrantedAt,
		"consent_revoked_at": user.ConsentRevokedAt,
		"history":            log,
	})
}

// --- catalog & operator ---

func (s *Server) handleListProducts(c *gin.Context) {
	products, err := s.store.ListActiveProducts()
	if err != nil {
		s.writeError(c, err)
		return
	}
	if products == nil {
		products = []*domain.ProductOffer{}
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

func (s *Server) handleGetProduct(c *gin.Context) {
	product, err := s.store.GetProduct(c.Param("product_id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) handleDashboard(c *gin.Context) {
	stats, err := s.store.GetDashboardStats()
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleReviewQueue(c *gin.Context) {
	pending, err := s.store.ListByStatus(domain.StatusPendingApproval)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if pending == nil {
		pending = []*domain.Recommendation{}
	}
	c.JSON(http.StatusOK, gin.H{"pending": pending, "count": len(pending)})
}
