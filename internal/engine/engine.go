// Package engine composes the Assembler, Suggestion Store, and
// Approval->PO Converter behind the six top-level operations spec §6.4
// names: Generate, List, UpdatePending, Reject, Approve, Clear.
// Grounded on the teacher's service-layer façade
// (internal/service/po_service.go), which wires repository +
// processing collaborators behind a small number of public methods the
// API handlers call directly.
package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rxreplenish/rde/internal/assembler"
	"github.com/rxreplenish/rde/internal/converter"
	"github.com/rxreplenish/rde/internal/domain"
	"github.com/rxreplenish/rde/internal/suggestion"
)

// Engine is the single entry point the API and CLI layers call.
type Engine struct {
	assembler *assembler.Assembler
	store     *suggestion.Store
	converter *converter.Converter
	summaries suggestion.SummaryCache
}

// New builds an Engine from its collaborators. summaries may be nil,
// in which case it defaults to a noop cache.
func New(asm *assembler.Assembler, store *suggestion.Store, conv *converter.Converter, summaries suggestion.SummaryCache) *Engine {
	if summaries == nil {
		summaries = suggestion.NewNoopSummaryCache()
	}
	return &Engine{assembler: asm, store: store, converter: conv, summaries: summaries}
}

// Generate runs the Recommendation Assembler for a store and persists
// the resulting suggestions (spec §4.7, §6.4).
func (e *Engine) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	if err := req.Validate(); err != nil {
		return domain.GenerationResult{}, err
	}

	result, err := e.assembler.Generate(ctx, req)
	if err != nil {
		return domain.GenerationResult{}, err
	}

	if err := e.store.Save(ctx, result.Suggestions); err != nil {
		return domain.GenerationResult{}, err
	}

	if err := e.summaries.Set(ctx, req.StoreID, result.Summary); err != nil {
		log.Warn().Err(err).Str("store_id", req.StoreID.String()).Msg("caching generation summary")
	}

	return result, nil
}

// LastSummary returns the most recently cached generation summary for
// storeID, for a dashboard to show without re-running the Assembler.
// The second return is false if nothing has been cached yet (or the
// cache entry expired).
func (e *Engine) LastSummary(ctx context.Context, storeID uuid.UUID) (domain.GenerationSummary, bool, error) {
	return e.summaries.Get(ctx, storeID)
}

// List returns suggestions matching filter (spec §4.8, §6.4).
func (e *Engine) List(ctx context.Context, filter domain.SuggestionFilter) ([]domain.Suggestion, error) {
	return e.store.List(ctx, filter)
}

// UpdatePending edits a PENDING suggestion's order quantity, ROP, or
// note (spec §4.8, §6.4).
func (e *Engine) UpdatePending(ctx context.Context, id uuid.UUID, upd domain.SuggestionUpdate) error {
	return e.store.Update(ctx, id, upd)
}

// Reject transitions the given suggestion ids to REJECTED (spec §4.8,
// §6.4).
func (e *Engine) Reject(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	return e.store.Reject(ctx, ids)
}

// Approve runs the Approval->PO Converter over the given suggestion
// ids (spec §4.9, §6.4).
func (e *Engine) Approve(ctx context.Context, ids []uuid.UUID, generatePO bool, createdBy string) (domain.ApprovalResult, error) {
	return e.converter.Approve(ctx, domain.ApprovalRequest{
		SuggestionIDs: ids,
		GeneratePO:    generatePO,
		CreatedBy:     createdBy,
	})
}

// Clear deletes every suggestion for a store, typically just before a
// fresh Generate run (spec §4.8, §6.4).
func (e *Engine) Clear(ctx context.Context, storeID uuid.UUID) error {
	return e.store.Clear(ctx, storeID)
}
