package store

import (
	"context"
	"testing"

	"github.com/rcliao/itinerary/internal/model"
)

func TestSearchAttractions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedCity(t, s)

	// Name match
	results, err := s.SearchAttractions(ctx, SearchParams{Query: "alameda"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != 3 {
		t.Fatalf("expected Alameda, got %+v", results)
	}

	// Description match
	results, _ = s.SearchAttractions(ctx, SearchParams{Query: "MUSEO"})
	if len(results) != 1 || results[0].ID != 2 {
		t.Fatalf("expected Bellas Artes, got %+v", results)
	}

	// Destination filter
	results, _ = s.SearchAttractions(ctx, SearchParams{DestinationID: 2, Query: "alameda"})
	if len(results) != 0 {
		t.Fatalf("expected 0 results, got %d", len(results))
	}

	// No results
	results, _ = s.SearchAttractions(ctx, SearchParams{Query: "playa"})
	if len(results) != 0 {
		t.Fatalf("expected 0 results, got %d", len(results))
	}
}

func TestSearchRanksNameMatchesFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedCity(t, s)
	s.PutAttraction(ctx, model.Attraction{ID: 4, DestinationID: 1, Name: "Museo Nacional de Arte", Category: "cultural", Rating: model.Float(4.9)})

	results, _ := s.SearchAttractions(ctx, SearchParams{Query: "museo"})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != 4 {
		t.Errorf("expected name match first, got %d", results[0].ID)
	}
}

func TestExportImportDataset(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)
	seedCity(t, src)
	src.PutProfile(ctx, model.Profile{ID: 7, Name: "ana", BudgetRange: model.BudgetLow})

	ds, err := src.ExportDataset(ctx, 0)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(ds.Destinations) != 1 || len(ds.Attractions) != 3 || len(ds.Connections) != 3 || len(ds.Profiles) != 1 {
		t.Fatalf("unexpected dataset sizes: %d %d %d %d",
			len(ds.Destinations), len(ds.Attractions), len(ds.Connections), len(ds.Profiles))
	}

	dst := newTestStore(t)
	n, err := dst.ImportDataset(ctx, ds)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n.Attractions != 3 || n.Connections != 3 {
		t.Errorf("unexpected counts: %+v", n)
	}

	// Re-import is idempotent.
	if _, err := dst.ImportDataset(ctx, ds); err != nil {
		t.Fatalf("re-import: %v", err)
	}
	nodes, edges, _ := dst.LoadAttractionsAndEdges(ctx, 1)
	if len(nodes) != 3 || len(edges) != 3 {
		t.Errorf("expected 3 nodes and 3 edges after re-import, got %d and %d", len(nodes), len(edges))
	}
	p, err := dst.GetProfile(ctx, 7)
	if err != nil || p.Name != "ana" {
		t.Errorf("expected profile 7 imported, got %+v (%v)", p, err)
	}

	only, _ := src.ExportDataset(ctx, 2)
	if len(only.Attractions) != 0 {
		t.Errorf("expected no attractions for unknown destination, got %d", len(only.Attractions))
	}
}
