package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/cadri-extractor/internal/async"
	"github.com/joseph-ayodele/cadri-extractor/internal/common"
	"github.com/joseph-ayodele/cadri-extractor/internal/core"
	"github.com/joseph-ayodele/cadri-extractor/internal/entity"
	"github.com/joseph-ayodele/cadri-extractor/internal/export"
	"github.com/joseph-ayodele/cadri-extractor/internal/pipeline"
	"github.com/joseph-ayodele/cadri-extractor/internal/repository"
)

// DocumentProcessor is the part of core.Processor served over HTTP.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, doc *entity.SourceDocument) (*core.FileResult, error)
	Stats() *pipeline.Stats
}

// LimiterUsage reports the LLM rate limiter occupancy.
type LimiterUsage interface {
	CurrentUsage() int
	MaxConcurrent() int
}

// Deps are the collaborators of the HTTP API. Queue, Documents, Items and
// Export may be nil; their routes then answer 503. A nil Limiter omits the
// llm fields from /api/v1/stats.
type Deps struct {
	Processor DocumentProcessor
	Queue     async.Queue
	Documents repository.DocumentRepository
	Items     repository.ItemRepository
	Export    *export.Service
	Limiter   LimiterUsage
	Logger    *slog.Logger

	// ProcessTimeout bounds a synchronous /extract call; zero means none.
	ProcessTimeout time.Duration

	// AllowOrigins enables CORS for browser clients; empty disables it.
	AllowOrigins []string
}

const requestIDHeader = "X-Request-ID"

// NewRouter creates and configures a new Gin router
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), accessLog(d.Logger))
	if len(d.AllowOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  d.AllowOrigins,
			AllowMethods:  []string{"GET", "POST"},
			AllowHeaders:  []string{"Origin", "Content-Type", requestIDHeader},
			ExposeHeaders: []string{requestIDHeader, "Content-Disposition"},
			MaxAge:        12 * time.Hour,
		}))
	}

	c := &controller{deps: d, log: d.Logger}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/extract", c.Extract)
		v1.GET("/stats", c.Stats)
		v1.POST("/jobs", c.SubmitJob)
		v1.GET("/documents/:id", c.GetDocument)
		v1.GET("/documents/:id/items", c.ListItems)
		v1.GET("/export", c.Export)
	}
	return router
}

// requestID tags every request with an id, reusing the caller's when given.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http.request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", common.RequestIDFromContext(c.Request.Context()),
		)
	}
}
