package server

import (
	"log/slog"
	"net/http"
	"sync"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"

	"github.com/kode4food/blockplan/internal/block"
	"github.com/kode4food/blockplan/internal/state"
	"github.com/kode4food/blockplan/internal/storage"
	"github.com/kode4food/blockplan/pkg/api"
)

type (
	// Server implements the HTTP API server for plan registration and
	// execution
	Server struct {
		dispatcher *block.Dispatcher
		deps       Dependencies
		plans      map[api.PlanID]*api.Plan
		mu         sync.RWMutex
	}

	// Dependencies are the collaborators shared by every execution. Redis
	// and Files may be nil, in which case blocks that need them fail
	Dependencies struct {
		Logger       *slog.Logger
		Redis        *storage.RedisStore
		Files        *storage.FileStore
		Limits       state.Limits
		MaxBodyBytes int64
	}
)

// DefaultMaxBodyBytes caps an execute request body when no limit is set
const DefaultMaxBodyBytes = int64(1 << 20)

// NewServer creates a new HTTP API server
func NewServer(d *block.Dispatcher, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{
		dispatcher: d,
		deps:       deps,
		plans:      map[api.PlanID]*api.Plan{},
	}
}

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return s.deps.Logger
		}),
	))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set(
			"Access-Control-Allow-Methods",
			"GET, POST, PUT, DELETE, OPTIONS",
		)
		c.Writer.Header().Set(
			"Access-Control-Allow-Headers",
			"Content-Type, Authorization, "+api.HeaderAccountID+", "+
				api.HeaderAccountName+", "+api.HeaderAccountRoles,
		)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", s.handleHealth)

	// Engine endpoints
	eng := router.Group("/engine")
	{
		eng.GET("/catalog", s.handleCatalog)

		// Plan endpoints
		eng.GET("/plan", s.listPlans)
		eng.GET("/plan/:planID", s.getPlan)
		eng.PUT("/plan/:planID", s.putPlan)
		eng.DELETE("/plan/:planID", s.deletePlan)

		// Execution
		eng.POST("/plan/:planID/execute", s.executePlan)
		eng.GET("/plan/:planID/execute", s.executePlan)
	}

	return router
}

func (s *Server) handleCatalog(c *gin.Context) {
	families := s.dispatcher.Catalog()
	count := 0
	for _, actions := range families {
		count += len(actions)
	}
	c.JSON(http.StatusOK, api.CatalogResponse{
		Families: families,
		Count:    count,
	})
}
