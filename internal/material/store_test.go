package material

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"cognote/internal/artifacts"
	"cognote/internal/workflow"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "materials"))
	if err != nil {
		t.Fatalf("failed to create Store: %v", err)
	}
	return store
}

// ========== Material CRUD ==========

func TestCreateMaterial(t *testing.T) {
	store := tempStore(t)
	mat, err := store.Create("Cell Biology", "lecture.pdf", "pdf", 2048, []string{"biology"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if mat.Title != "Cell Biology" {
		t.Errorf("title = %q, want 'Cell Biology'", mat.Title)
	}
	if mat.ID == "" {
		t.Error("expected non-empty material ID")
	}
	if mat.Status != "processing" {
		t.Errorf("status = %q, want 'processing'", mat.Status)
	}
	if mat.CreatedAt.IsZero() {
		t.Error("expected non-zero CreatedAt")
	}
}

func TestCreateMaterial_EmptyTitle(t *testing.T) {
	store := tempStore(t)
	mat, err := store.Create("", "notes.txt", "text", 10, nil)
	if err != nil {
		t.Fatalf("Create with empty title should succeed: %v", err)
	}
	if mat.Title != "notes.txt" {
		t.Errorf("empty title should fall back to file name, got %q", mat.Title)
	}
}

func TestListMaterials(t *testing.T) {
	store := tempStore(t)

	if got := store.List(); len(got) != 0 {
		t.Fatalf("expected empty list, got %d", len(got))
	}

	store.Create("A", "a.txt", "text", 1, nil)
	store.Create("B", "b.txt", "text", 1, nil)

	if got := store.List(); len(got) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(got))
	}
}

func TestGetMaterial_NotFound(t *testing.T) {
	store := tempStore(t)
	if _, err := store.Get("nonexistent-id"); err == nil {
		t.Error("expected error for nonexistent material, got nil")
	}
}

func TestUpdateMaterial(t *testing.T) {
	store := tempStore(t)
	mat, _ := store.Create("Original", "a.pdf", "pdf", 1, nil)

	mat.Title = "Updated"
	mat.Status = "ready"
	if err := store.Update(*mat); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := store.Get(mat.ID)
	if got.Title != "Updated" || got.Status != "ready" {
		t.Errorf("got %+v, want Updated/ready", got)
	}
	if !got.UpdatedAt.After(got.CreatedAt) && !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Error("UpdatedAt should move forward on update")
	}
}

func TestDeleteMaterial(t *testing.T) {
	store := tempStore(t)
	mat, _ := store.Create("To Delete", "a.txt", "text", 1, nil)

	if err := store.Delete(mat.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(mat.ID); err == nil {
		t.Error("expected error after delete, got nil")
	}
	if _, err := os.Stat(store.MaterialDir(mat.ID)); !os.IsNotExist(err) {
		t.Error("expected material directory to be removed")
	}
}

func TestDeleteMaterial_NotFound(t *testing.T) {
	store := tempStore(t)
	if err := store.Delete("nonexistent"); err == nil {
		t.Error("expected error deleting nonexistent material")
	}
}

func TestStoreReload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "materials")
	store, _ := NewStore(dir)
	mat, _ := store.Create("Persisted", "a.txt", "text", 1, nil)

	reloaded, err := NewStore(dir)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	got, err := reloaded.Get(mat.ID)
	if err != nil {
		t.Fatalf("material lost across reload: %v", err)
	}
	if got.Title != "Persisted" {
		t.Errorf("title = %q after reload", got.Title)
	}
}

// ========== Generated Content ==========

func TestSaveAndLoadContent(t *testing.T) {
	store := tempStore(t)
	mat, _ := store.Create("With Content", "a.txt", "text", 1, nil)

	content := &artifacts.ProcessedContent{
		PolishedNote: "Polished text",
		Summary:      "A summary",
		MindMap:      "# With Content\n\n- A\n- B",
	}
	if err := store.SaveContent(mat.ID, content); err != nil {
		t.Fatalf("SaveContent failed: %v", err)
	}

	got, err := store.LoadContent(mat.ID)
	if err != nil {
		t.Fatalf("LoadContent failed: %v", err)
	}
	if got.Summary != "A summary" || got.PolishedNote != "Polished text" {
		t.Errorf("content round trip lost fields: %+v", got)
	}
}

func TestLoadContent_Missing(t *testing.T) {
	store := tempStore(t)
	mat, _ := store.Create("No Content", "a.txt", "text", 1, nil)

	if _, err := store.LoadContent(mat.ID); err == nil {
		t.Error("expected error for missing content, got nil")
	}
}

// ========== Concurrent Access ==========

func TestConcurrentMaterialCreation(t *testing.T) {
	store := tempStore(t)
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Create("Concurrent", "c.txt", "text", 1, nil)
		}()
	}
	wg.Wait()

	if got := len(store.List()); got != 10 {
		t.Errorf("expected 10 materials after concurrent creation, got %d", got)
	}
}

// ========== Workflows ==========

func tempWorkflowStore(t *testing.T) *WorkflowStore {
	t.Helper()
	store, err := NewWorkflowStore(filepath.Join(t.TempDir(), "workflows"))
	if err != nil {
		t.Fatalf("failed to create WorkflowStore: %v", err)
	}
	return store
}

func TestCreateWorkflow(t *testing.T) {
	store := tempWorkflowStore(t)
	wf, err := store.Create("Biology Unit", "first unit", []string{"m1", "m2"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if wf.Name != "Biology Unit" {
		t.Errorf("name = %q", wf.Name)
	}
	if wf.Status != "synthesizing" {
		t.Errorf("status = %q, want 'synthesizing'", wf.Status)
	}
	if len(wf.MaterialIDs) != 2 {
		t.Errorf("material_ids = %v", wf.MaterialIDs)
	}
}

func TestWorkflowBundleRoundTrip(t *testing.T) {
	store := tempWorkflowStore(t)
	wf, _ := store.Create("Unit", "", []string{"m1"})

	bundle := &workflow.Bundle{
		Summary: "Combined summary",
		MindMap: "# Unit\n\n- m1",
	}
	bundle.Quiz.TotalMaterials = 1
	bundle.Quiz.Coverage = []string{"Material One"}

	if err := store.SaveBundle(wf.ID, bundle); err != nil {
		t.Fatalf("SaveBundle failed: %v", err)
	}
	got, err := store.LoadBundle(wf.ID)
	if err != nil {
		t.Fatalf("LoadBundle failed: %v", err)
	}
	if got.Summary != "Combined summary" || got.Quiz.TotalMaterials != 1 {
		t.Errorf("bundle round trip lost fields: %+v", got)
	}
	if len(got.Quiz.Coverage) != 1 || got.Quiz.Coverage[0] != "Material One" {
		t.Errorf("coverage lost: %v", got.Quiz.Coverage)
	}
}

func TestDeleteWorkflowRemovesBundle(t *testing.T) {
	store := tempWorkflowStore(t)
	wf, _ := store.Create("Unit", "", nil)
	_ = store.SaveBundle(wf.ID, &workflow.Bundle{Summary: "s"})

	if err := store.Delete(wf.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.LoadBundle(wf.ID); err == nil {
		t.Error("expected bundle removed with workflow")
	}
}

// ========== note derivations ==========

func TestNoteHeadings(t *testing.T) {
	note := "# Cell Biology\n\nIntro text.\n\n## Mitochondria\n\n### ATP\n\nnot # a heading"
	got := NoteHeadings(note)
	want := []string{"Cell Biology", "Mitochondria", "ATP"}
	if len(got) != len(want) {
		t.Fatalf("headings = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("heading %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNoteHeadings_None(t *testing.T) {
	if got := NoteHeadings("plain text only"); got != nil {
		t.Errorf("headings = %v, want none", got)
	}
}

func TestEstimateStudyTime(t *testing.T) {
	if got := EstimateStudyTime(""); got != 0 {
		t.Errorf("empty note study time = %d, want 0", got)
	}
	if got := EstimateStudyTime("a few words"); got != 1 {
		t.Errorf("short note study time = %d, want 1", got)
	}
	long := strings.Repeat("word ", 400)
	if got := EstimateStudyTime(long); got != 3 {
		t.Errorf("400-word note study time = %d, want 3", got)
	}
}
