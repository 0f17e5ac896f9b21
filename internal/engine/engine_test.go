package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rxreplenish/rde/internal/domain"
)

func TestEngine_Generate_RejectsInvalidRequest(t *testing.T) {
	e := &Engine{}

	_, err := e.Generate(context.Background(), domain.GenerationRequest{
		StoreID:      uuid.New(),
		CoverageDays: 3, // not one of the allowed values
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestEngine_Generate_RejectsMissingStore(t *testing.T) {
	e := &Engine{}

	_, err := e.Generate(context.Background(), domain.GenerationRequest{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
