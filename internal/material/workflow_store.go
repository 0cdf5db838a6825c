package material

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"cognote/internal/workflow"
)

// ==================== Workflow ====================

// Workflow groups several materials into one study unit. Its synthesized
// artifact bundle lives in a per-workflow file, loaded via LoadBundle.
type Workflow struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	MaterialIDs []string  `json:"material_ids"`
	Status      string    `json:"status"` // "synthesizing", "ready", "failed"
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ==================== WorkflowStore ====================

// WorkflowStore manages persistence of workflows and their bundles.
type WorkflowStore struct {
	mu        sync.RWMutex
	workflows []Workflow
	dataDir   string
	filePath  string
}

func NewWorkflowStore(dataDir string) (*WorkflowStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	store := &WorkflowStore{
		dataDir:  dataDir,
		filePath: filepath.Join(dataDir, "workflows.json"),
	}

	if data, err := os.ReadFile(store.filePath); err == nil {
		_ = json.Unmarshal(data, &store.workflows)
	}

	return store, nil
}

func (s *WorkflowStore) save() error {
	data, err := json.MarshalIndent(s.workflows, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0644)
}

// ==================== Workflow CRUD ====================

func (s *WorkflowStore) Create(name, description string, materialIDs []string) (*Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	if name == "" {
		name = "Workflow " + id[:8]
	}

	now := time.Now()
	wf := Workflow{
		ID:          id,
		Name:        name,
		Description: description,
		MaterialIDs: materialIDs,
		Status:      "synthesizing",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.workflows = append(s.workflows, wf)
	if err := s.save(); err != nil {
		return nil, err
	}

	return &wf, nil
}

func (s *WorkflowStore) List() []Workflow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Workflow, len(s.workflows))
	copy(result, s.workflows)
	return result
}

func (s *WorkflowStore) Get(id string) (*Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.workflows {
		if s.workflows[i].ID == id {
			w := s.workflows[i]
			return &w, nil
		}
	}
	return nil, fmt.Errorf("workflow not found: %s", id)
}

func (s *WorkflowStore) Update(wf Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.workflows {
		if s.workflows[i].ID == wf.ID {
			wf.UpdatedAt = time.Now()
			s.workflows[i] = wf
			return s.save()
		}
	}
	return fmt.Errorf("workflow not found: %s", wf.ID)
}

func (s *WorkflowStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	var updated []Workflow
	for _, w := range s.workflows {
		if w.ID == id {
			found = true
			continue
		}
		updated = append(updated, w)
	}
	if !found {
		return fmt.Errorf("workflow not found: %s", id)
	}

	s.workflows = updated
	_ = os.Remove(s.bundlePath(id))

	return s.save()
}

// ==================== Synthesized Bundle ====================

func (s *WorkflowStore) bundlePath(id string) string {
	return filepath.Join(s.dataDir, id+".bundle.json")
}

func (s *WorkflowStore) SaveBundle(id string, bundle *workflow.Bundle) error {
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.bundlePath(id), data, 0644)
}

func (s *WorkflowStore) LoadBundle(id string) (*workflow.Bundle, error) {
	data, err := os.ReadFile(s.bundlePath(id))
	if err != nil {
		return nil, fmt.Errorf("bundle not found for workflow %s: %w", id, err)
	}
	var bundle workflow.Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}
