package suggestion

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rxreplenish/rde/internal/domain"
)

func TestBuildListQuery_DefaultsPagination(t *testing.T) {
	filter := domain.SuggestionFilter{StoreID: uuid.New()}
	query, args := buildListQuery(filter)

	if !strings.Contains(query, "LIMIT") || !strings.Contains(query, "OFFSET") {
		t.Fatalf("expected pagination clauses in query: %s", query)
	}
	// last two args should be pageSize=50, offset=0
	if args[len(args)-2] != 50 || args[len(args)-1] != 0 {
		t.Errorf("args = %v, want pageSize=50 offset=0 trailing", args)
	}
}

func TestBuildListQuery_FiltersByStatusAndProduct(t *testing.T) {
	status := domain.SuggestionPending
	productID := uuid.New()
	filter := domain.SuggestionFilter{StoreID: uuid.New(), Status: &status, ProductID: &productID, Page: 2, PageSize: 10}

	query, args := buildListQuery(filter)

	if !strings.Contains(query, "status = $2") {
		t.Errorf("expected status filter clause, got: %s", query)
	}
	if !strings.Contains(query, "product_id = $3") {
		t.Errorf("expected product_id filter clause, got: %s", query)
	}
	// page 2, pageSize 10 -> offset 10
	if args[len(args)-2] != 10 || args[len(args)-1] != 10 {
		t.Errorf("args = %v, want pageSize=10 offset=10 trailing", args)
	}
}

func TestBuildListKey_StableForSameFilter(t *testing.T) {
	storeID := uuid.New()
	status := domain.SuggestionPending
	f1 := domain.SuggestionFilter{StoreID: storeID, Status: &status, Page: 1, PageSize: 20}
	f2 := domain.SuggestionFilter{StoreID: storeID, Status: &status, Page: 1, PageSize: 20}

	if buildListKey(f1) != buildListKey(f2) {
		t.Error("expected identical filters to produce the same cache key")
	}
}

func TestBuildListKey_DiffersByStatus(t *testing.T) {
	storeID := uuid.New()
	pending := domain.SuggestionPending
	rejected := domain.SuggestionRejected
	f1 := domain.SuggestionFilter{StoreID: storeID, Status: &pending}
	f2 := domain.SuggestionFilter{StoreID: storeID, Status: &rejected}

	if buildListKey(f1) == buildListKey(f2) {
		t.Error("expected different statuses to produce different cache keys")
	}
}
