// backend-go/internal/api/handlers/suggestion_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rxreplenish/rde/internal/domain"
	"github.com/rxreplenish/rde/internal/engine"
)

// SuggestionHandler exposes the replenishment engine's operations over
// HTTP: Generate, List, Summary, UpdatePending, Reject, Approve, Clear.
type SuggestionHandler struct {
	engine *engine.Engine
}

func NewSuggestionHandler(eng *engine.Engine) *SuggestionHandler {
	return &SuggestionHandler{engine: eng}
}

type generateRequestBody struct {
	StoreID                   uuid.UUID `json:"store_id"`
	CoverageDays              int       `json:"coverage_days"`
	ServiceLevel              float64   `json:"service_level"`
	AnalysisPeriodDays        int       `json:"analysis_period_days"`
	IncludeSupplierComparison bool      `json:"include_supplier_comparison"`
	WorkerCount               int       `json:"worker_count"`
}

// Generate runs a suggestion-generation pass for one store.
func (h *SuggestionHandler) Generate(c *gin.Context) {
	var body generateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.engine.Generate(c.Request.Context(), domain.GenerationRequest{
		StoreID:                   body.StoreID,
		CoverageDays:              body.CoverageDays,
		ServiceLevel:              body.ServiceLevel,
		AnalysisPeriodDays:        body.AnalysisPeriodDays,
		IncludeSupplierComparison: body.IncludeSupplierComparison,
		WorkerCount:               body.WorkerCount,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// List returns suggestions for a store, optionally filtered by status
// and product.
func (h *SuggestionHandler) List(c *gin.Context) {
	storeID, err := uuid.Parse(c.Query("store_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "store_id is required"})
		return
	}

	filter := domain.SuggestionFilter{
		StoreID:  storeID,
		Page:     parsePositiveIntWithDefault(c.Query("page"), 1),
		PageSize: parsePositiveIntWithDefault(c.Query("page_size"), 50),
	}

	if statusStr := strings.TrimSpace(c.Query("status")); statusStr != "" {
		status, ok := domain.ParseSuggestionStatus(statusStr)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status value"})
			return
		}
		filter.Status = &status
	}

	if productIDStr := strings.TrimSpace(c.Query("product_id")); productIDStr != "" {
		productID, err := uuid.Parse(productIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product_id value"})
			return
		}
		filter.ProductID = &productID
	}

	suggestions, err := h.engine.List(c.Request.Context(), filter)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, suggestions)
}

// Summary returns the most recently cached generation summary for a
// store, letting a dashboard show "last run" counts without
// re-running the Assembler. 404s if nothing has been generated yet
// (or the cache entry expired).
func (h *SuggestionHandler) Summary(c *gin.Context) {
	storeID, err := uuid.Parse(c.Query("store_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "store_id is required"})
		return
	}

	summary, ok, err := h.engine.LastSummary(c.Request.Context(), storeID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no generation summary cached for store"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

type updateSuggestionBody struct {
	OrderQty *int    `json:"order_qty"`
	ROP      *int    `json:"rop"`
	Note     *string `json:"note"`
}

// UpdatePending edits a PENDING suggestion's order quantity, ROP, or note.
func (h *SuggestionHandler) UpdatePending(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid suggestion id"})
		return
	}

	var body updateSuggestionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err = h.engine.UpdatePending(c.Request.Context(), id, domain.SuggestionUpdate{
		OrderQty: body.OrderQty,
		ROP:      body.ROP,
		Note:     body.Note,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

type idsRequestBody struct {
	IDs []uuid.UUID `json:"ids"`
}

// Reject transitions the given suggestion ids to REJECTED.
func (h *SuggestionHandler) Reject(c *gin.Context) {
	var body idsRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rejected, err := h.engine.Reject(c.Request.Context(), body.IDs)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rejected": rejected})
}

type approveRequestBody struct {
	IDs        []uuid.UUID `json:"ids"`
	GeneratePO bool        `json:"generate_po"`
}

// Approve runs the Approval->PO Converter over the given suggestion ids.
func (h *SuggestionHandler) Approve(c *gin.Context) {
	var body approveRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	createdBy := c.GetHeader("X-User")
	result, err := h.engine.Approve(c.Request.Context(), body.IDs, body.GeneratePO, createdBy)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Clear deletes every suggestion for a store.
func (h *SuggestionHandler) Clear(c *gin.Context) {
	storeID, err := uuid.Parse(c.Query("store_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "store_id is required"})
		return
	}

	if err := h.engine.Clear(c.Request.Context(), storeID); err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

func writeDomainError(c *gin.Context, err error) {
	status := statusForError(err)
	log.Error().Err(err).Msg("request failed")
	c.JSON(status, gin.H{"error": err.Error()})
}

func parsePositiveIntWithDefault(value string, fallback int) int {
	if fallback <= 0 {
		fallback = 50
	}
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v > 0 {
		return v
	}
	return fallback
}
