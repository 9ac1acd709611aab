package postgres

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/njprem/Joestate_APP_BackEnd/internal/domain"
)

func TestBuildListingQueryWithoutConstraints(t *testing.T) {
	query, args := buildListingQuery(domain.ListingQuery{})

	if strings.Contains(query, "WHERE") {
		t.Fatalf("expected no WHERE clause, got %q", query)
	}
	if !strings.Contains(query, "ORDER BY created_at ASC, id ASC") {
		t.Fatalf("expected inserted ordering, got %q", query)
	}
	if strings.Contains(query, "LIMIT") {
		t.Fatalf("expected no LIMIT, got %q", query)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got %v", args)
	}
}

func TestBuildListingQueryCombinesFilters(t *testing.T) {
	location := "  New_Cairo 100% "
	purpose := domain.ListingPurposeRent
	kind := domain.ListingTypeVilla
	minPrice := 1000.0
	maxPrice := 5000.0
	minBeds := 3
	status := domain.ListingStatusActive

	query, args := buildListingQuery(domain.ListingQuery{
		Filter: domain.ListingFilter{
			Location: &location,
			Purpose:  &purpose,
			Type:     &kind,
			MinPrice: &minPrice,
			MaxPrice: &maxPrice,
			MinBeds:  &minBeds,
		},
		Status: &status,
		Order:  domain.ListingOrderNewest,
		Limit:  3,
	})

	wantClauses := []string{
		`location ILIKE $1 ESCAPE '\'`,
		"purpose = $2",
		"type = $3",
		"price >= $4",
		"price <= $5",
		"room_count >= $6",
		"status = $7",
	}
	last := -1
	for _, clause := range wantClauses {
		idx := strings.Index(query, clause)
		if idx < 0 {
			t.Fatalf("expected clause %q in %q", clause, query)
		}
		if idx < last {
			t.Fatalf("clause %q out of order in %q", clause, query)
		}
		last = idx
	}
	if !strings.Contains(query, "ORDER BY created_at DESC, id DESC") {
		t.Fatalf("expected newest ordering, got %q", query)
	}
	if !strings.HasSuffix(query, "LIMIT $8") {
		t.Fatalf("expected trailing LIMIT placeholder, got %q", query)
	}

	want := []any{`%New\_Cairo 100\%%`, "rent", "villa", 1000.0, 5000.0, 3, "active", 3}
	if len(args) != len(want) {
		t.Fatalf("expected %d args, got %d (%v)", len(want), len(args), args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("arg %d: expected %v (%T), got %v (%T)", i, want[i], want[i], args[i], args[i])
		}
	}
}

func TestBuildListingQueryBlankLocationIsIgnored(t *testing.T) {
	blank := "   "
	query, args := buildListingQuery(domain.ListingQuery{Filter: domain.ListingFilter{Location: &blank}})
	if strings.Contains(query, "ILIKE") || len(args) != 0 {
		t.Fatalf("blank location should not constrain, got %q %v", query, args)
	}
}

func TestBuildListingQueryOwnerAndIDs(t *testing.T) {
	owner := uuid.New()
	first, second := uuid.New(), uuid.New()

	query, args := buildListingQuery(domain.ListingQuery{
		OwnerID: &owner,
		IDs:     []uuid.UUID{first, second},
	})

	if !strings.Contains(query, "owner_id = $1") || !strings.Contains(query, "id = ANY($2::uuid[])") {
		t.Fatalf("unexpected query %q", query)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %v", args)
	}
	if args[0] != owner {
		t.Fatalf("expected owner arg, got %v", args[0])
	}
	ids, ok := args[1].(pq.StringArray)
	if !ok {
		t.Fatalf("expected pq.StringArray, got %T", args[1])
	}
	if len(ids) != 2 || ids[0] != first.String() || ids[1] != second.String() {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"Maadi":     "Maadi",
		"50%":       `50\%`,
		"a_b":       `a\_b`,
		`back\path`: `back\\path`,
	}
	for in, want := range tests {
		if got := escapeLike(in); got != want {
			t.Fatalf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSchemaCascadesListingDeletes(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "0001_init.sql"))
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	schema := string(data)

	for _, table := range []string{"listing_image", "favorite_list"} {
		start := strings.Index(schema, "CREATE TABLE IF NOT EXISTS "+table+" (")
		if start < 0 {
			t.Fatalf("table %s not found in migration", table)
		}
		end := strings.Index(schema[start:], ");")
		if end < 0 {
			t.Fatalf("table %s definition is not terminated", table)
		}
		if !strings.Contains(schema[start:start+end], "listing_id UUID NOT NULL REFERENCES listing (id) ON DELETE CASCADE") {
			t.Fatalf("%s.listing_id must cascade when its listing is deleted", table)
		}
	}
}
