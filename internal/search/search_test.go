package search

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func tempIndex(t *testing.T) *Index {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	idx, err := Open(filepath.Join(t.TempDir(), "materials.index"), log)
	if err != nil {
		t.Fatalf("failed to open index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

// ========== Indexing ==========

func TestIndexAndSearch(t *testing.T) {
	idx := tempIndex(t)

	docs := []Document{
		{ID: "m1", Title: "Cell Biology Lecture", Tags: []string{"biology"}, Note: "The mitochondria is the powerhouse of the cell."},
		{ID: "m2", Title: "French Revolution", Tags: []string{"history"}, Note: "The storming of the Bastille in 1789."},
	}
	for _, d := range docs {
		if err := idx.IndexMaterial(d); err != nil {
			t.Fatalf("IndexMaterial failed: %v", err)
		}
	}

	results, err := idx.Search("mitochondria", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(results))
	}
	if results[0].MaterialID != "m1" {
		t.Errorf("hit = %q, want m1", results[0].MaterialID)
	}
	if results[0].Score <= 0 {
		t.Errorf("expected positive score, got %f", results[0].Score)
	}
}

func TestSearchByTag(t *testing.T) {
	idx := tempIndex(t)
	_ = idx.IndexMaterial(Document{ID: "m1", Title: "Untitled", Tags: []string{"chemistry", "organic"}})

	results, err := idx.Search("organic", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].MaterialID != "m1" {
		t.Fatalf("expected tag match on m1, got %v", results)
	}
}

func TestIndexMaterial_NoID(t *testing.T) {
	idx := tempIndex(t)
	if err := idx.IndexMaterial(Document{Title: "No ID"}); err == nil {
		t.Error("expected error indexing material without id")
	}
}

func TestReindexReplaces(t *testing.T) {
	idx := tempIndex(t)
	_ = idx.IndexMaterial(Document{ID: "m1", Title: "Original", Note: "about volcanoes"})
	_ = idx.IndexMaterial(Document{ID: "m1", Title: "Replaced", Note: "about glaciers"})

	results, _ := idx.Search("volcanoes", 5)
	if len(results) != 0 {
		t.Errorf("old content should be replaced, got %v", results)
	}
	results, _ = idx.Search("glaciers", 5)
	if len(results) != 1 {
		t.Errorf("expected new content to match, got %v", results)
	}
	count, _ := idx.Count()
	if count != 1 {
		t.Errorf("expected 1 document after reindex, got %d", count)
	}
}

// ========== Removal ==========

func TestRemove(t *testing.T) {
	idx := tempIndex(t)
	_ = idx.IndexMaterial(Document{ID: "m1", Title: "Doomed", Note: "transient content"})

	if err := idx.Remove("m1"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	results, _ := idx.Search("transient", 5)
	if len(results) != 0 {
		t.Errorf("expected no hits after removal, got %v", results)
	}
}

// ========== Queries ==========

func TestSearchEmptyQuery(t *testing.T) {
	idx := tempIndex(t)
	_ = idx.IndexMaterial(Document{ID: "m1", Title: "Something"})

	results, err := idx.Search("   ", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("blank query should return no results, got %v", results)
	}
}

func TestSearchTopK(t *testing.T) {
	idx := tempIndex(t)
	for i := 0; i < 5; i++ {
		_ = idx.IndexMaterial(Document{
			ID:    string(rune('a' + i)),
			Title: "Astronomy notes",
			Note:  "stars and planets",
		})
	}

	results, err := idx.Search("astronomy", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected topK to cap results at 3, got %d", len(results))
	}
}
