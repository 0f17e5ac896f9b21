// backend-go/internal/api/handlers/grn_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rxreplenish/rde/internal/domain"
	"github.com/rxreplenish/rde/internal/grn"
)

// GRNHandler exposes the GRN Ingestor over HTTP.
type GRNHandler struct {
	ingestor *grn.Ingestor
}

func NewGRNHandler(ingestor *grn.Ingestor) *GRNHandler {
	return &GRNHandler{ingestor: ingestor}
}

// Ingest records a goods-receipt note.
func (h *GRNHandler) Ingest(c *gin.Context) {
	var g domain.GRN
	if err := c.ShouldBindJSON(&g); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.ingestor.Ingest(c.Request.Context(), g)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}
