// backend-go/internal/api/handlers/sale_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rxreplenish/rde/internal/domain"
	"github.com/rxreplenish/rde/internal/fefo"
)

// SaleHandler exposes the FEFO Sale Allocator over HTTP.
type SaleHandler struct {
	allocator *fefo.Allocator
}

func NewSaleHandler(allocator *fefo.Allocator) *SaleHandler {
	return &SaleHandler{allocator: allocator}
}

// Create allocates stock FEFO-first for a new sale.
func (h *SaleHandler) Create(c *gin.Context) {
	var req domain.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sale, err := h.allocator.Allocate(c.Request.Context(), req)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sale)
}

// Refund reverses a completed sale's stock consumption.
func (h *SaleHandler) Refund(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sale id"})
		return
	}

	if err := h.allocator.Refund(c.Request.Context(), saleID); err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": saleID, "status": "REFUNDED"})
}
