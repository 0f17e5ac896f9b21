// internal/api/api.go
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/rxreplenish/rde/internal/api/handlers"
	"github.com/rxreplenish/rde/internal/api/middleware"
	"github.com/rxreplenish/rde/internal/engine"
	"github.com/rxreplenish/rde/internal/fefo"
	"github.com/rxreplenish/rde/internal/grn"
)

// Services bundles the top-level collaborators the router wires into
// handlers. Any of them may be nil, in which case the corresponding
// route group is omitted.
type Services struct {
	Engine         *engine.Engine
	Allocator      *fefo.Allocator
	Ingestor       *grn.Ingestor
	AllowedOrigins []string
}

func NewRouter(services *Services) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	if services != nil {
		router.Use(middleware.CORS(services.AllowedOrigins))
	} else {
		router.Use(middleware.CORS(nil))
	}

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.Engine != nil {
			suggestionHandler := handlers.NewSuggestionHandler(services.Engine)
			suggestionGroup := apiGroup.Group("/suggestions")
			{
				suggestionGroup.POST("/generate", suggestionHandler.Generate)
				suggestionGroup.GET("", suggestionHandler.List)
				suggestionGroup.GET("/summary", suggestionHandler.Summary)
				suggestionGroup.PATCH("/:id", suggestionHandler.UpdatePending)
				suggestionGroup.POST("/reject", suggestionHandler.Reject)
				suggestionGroup.POST("/approve", suggestionHandler.Approve)
				suggestionGroup.DELETE("", suggestionHandler.Clear)
			}
		}

		if services.Allocator != nil {
			saleHandler := handlers.NewSaleHandler(services.Allocator)
			saleGroup := apiGroup.Group("/sales")
			{
				saleGroup.POST("", saleHandler.Create)
				saleGroup.POST("/:id/refund", saleHandler.Refund)
			}
		}

		if services.Ingestor != nil {
			grnHandler := handlers.NewGRNHandler(services.Ingestor)
			apiGroup.POST("/grn", grnHandler.Ingest)
		}
	}

	return router
}
