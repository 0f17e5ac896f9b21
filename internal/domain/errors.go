package domain

import "errors"

// Sentinel errors for the taxonomy in spec §7. Components wrap these
// with fmt.Errorf("...: %w", ErrX) so callers can unwrap with errors.Is.
var (
	// ErrValidation covers malformed requests: bad coverageDays, unknown
	// store, and similar caller-supplied mistakes. Not retried.
	ErrValidation = errors.New("validation error")

	// ErrNotFound covers a missing product/supplier/store/suggestion.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientStock is returned when FEFO allocation cannot
	// satisfy a sale line, or applyMovement would drive a batch negative.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrBatchNotFound is returned by applyMovement for unknown batch ids.
	ErrBatchNotFound = errors.New("batch not found")

	// ErrStoreMismatch is returned when a movement references a batch
	// belonging to a different store.
	ErrStoreMismatch = errors.New("store mismatch")

	// ErrConcurrentModification signals an optimistic conflict on a
	// batch update or suggestion status change; retried up to 3 times
	// with jittered backoff before being surfaced.
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrDependencyUnavailable signals that the sales-history source or
	// product/supplier catalog could not be reached.
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrNoEligibleSuggestions is returned by the Converter when none of
	// the requested suggestion ids are PENDING.
	ErrNoEligibleSuggestions = errors.New("no eligible suggestions")

	// ErrSupplierUnknown is returned per-suggestion by the Converter when
	// the recommended supplier is no longer active or has no price.
	ErrSupplierUnknown = errors.New("supplier unknown")

	// ErrAlreadyRefunded is returned by a refund on an already-REFUNDED
	// sale; the refund path is otherwise idempotent.
	ErrAlreadyRefunded = errors.New("sale already refunded")

	// ErrIllegalTransition is returned when a suggestion or PO status
	// change would cross a back-edge in its state graph.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrInternal wraps unexpected invariant violations observed at read
	// time (e.g. a negative batch quantity).
	ErrInternal = errors.New("internal invariant violation")
)
