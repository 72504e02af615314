package web

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/VictorGoic0/SpendSense-sub000/internal/features"
	"github.com/VictorGoic0/SpendSense-sub000/internal/persona"
	"github.com/VictorGoic0/SpendSense-sub000/internal/recommend"
	"github.com/VictorGoic0/SpendSense-sub000/internal/storage"
)

// Server exposes the HTTP surface: generation, reads, operator actions,
// consent toggles, and the dashboard.
type Server struct {
	store        *storage.Store
	orchestrator *recommend.Orchestrator
	aggregator   *features.Aggregator
	personas     *persona.Service
	logger       *zap.Logger
	router       *gin.Engine
}

// NewServer wires the routes.
func NewServer(store *storage.Store, orchestrator *recommend.Orchestrator,
	aggregator *features.Aggregator, personas *persona.Service, logger *zap.Logger) *Server {

	router := gin.Default()

	s := &Server{
		store:        store,
		orchestrator: orchestrator,
		aggregator:   aggregator,
		personas:     personas,
		logger:       logger,
		router:       router,
	}

	// The :id segment is a user id on reads and a recommendation id on
	// actions; gin requires one wildcard name per position.
	recs := router.Group("/recommendations")
	{
		recs.POST("/generate/:id", s.handleGenerate)
		recs.GET("/:id", s.handleListRecommendations)
		recs.POST("/:id/approve", s.handleApprove)
		recs.POST("/:id/reject", s.handleReject)
		recs.POST("/:id/override", s.handleOverride)
		recs.POST("/bulk-approve", s.handleBulkApprove)
	}

	router.POST("/features/:user_id/compute", s.handleComputeFeatures)
	router.GET("/features/:user_id", s.handleGetFeatures)

	router.POST("/personas/:user_id/assign", s.handleAssignPersona)
	router.GET("/personas/:user_id", s.handleGetPersonas)

	router.POST("/consent", s.handleSetConsent)
	router.GET("/consent/:user_id", s.handleGetConsent)

	router.GET("/products", s.handleListProducts)
	router.GET("/products/:product_id", s.handleGetProduct)

	router.GET("/operator/dashboard", s.handleDashboard)
	router.GET("/operator/queue", s.handleReviewQueue)

	return s
}

// Run starts the web server
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
