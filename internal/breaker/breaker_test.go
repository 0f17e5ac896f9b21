package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rxreplenish/rde/internal/domain"
)

func TestExecute_Success(t *testing.T) {
	b := New(DefaultConfig("test-success"))

	got, err := Execute(context.Background(), b, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestExecute_PassesThroughUnderlyingError(t *testing.T) {
	b := New(DefaultConfig("test-passthrough"))
	wantErr := errors.New("boom")

	_, err := Execute(context.Background(), b, func(ctx context.Context) (int, error) {
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected underlying error to pass through, got %v", err)
	}
}

func TestExecute_TripsToDependencyUnavailable(t *testing.T) {
	cfg := Config{
		Name:         "test-trip",
		MaxRequests:  1,
		Interval:     0,
		Timeout:      50 * time.Millisecond,
		FailureRatio: 0.1,
		MinRequests:  1,
	}
	b := New(cfg)

	failing := func(ctx context.Context) (int, error) { return 0, errors.New("dependency down") }

	for i := 0; i < 5; i++ {
		Execute(context.Background(), b, failing)
	}

	_, err := Execute(context.Background(), b, failing)
	if !errors.Is(err, domain.ErrDependencyUnavailable) {
		t.Errorf("expected ErrDependencyUnavailable once tripped, got %v", err)
	}
}
