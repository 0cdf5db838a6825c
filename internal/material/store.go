package material

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"cognote/internal/artifacts"
)

// ==================== Material ====================

// Material is one uploaded study source and the index-level metadata kept
// for it. The generated study content lives in a per-material file, loaded
// on demand via LoadContent.
type Material struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Tags      []string  `json:"tags,omitempty"`
	FileName  string    `json:"file_name"`
	FileType  string    `json:"file_type"`
	FileSize  int64     `json:"file_size"`
	FileURL   string    `json:"file_url,omitempty"`
	Headings  []string  `json:"headings,omitempty"`
	StudyTime int       `json:"study_time,omitempty"` // estimated minutes
	Status    string    `json:"status"` // "processing", "ready", "failed"
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ==================== Store ====================

// Store manages persistence of materials and their generated content.
type Store struct {
	mu        sync.RWMutex
	materials []Material
	dataDir   string // e.g. "data/materials"
	filePath  string // e.g. "data/materials/materials.json"
}

// NewStore initialises the store, creating directories and loading any
// existing materials.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	store := &Store{
		dataDir:  dataDir,
		filePath: filepath.Join(dataDir, "materials.json"),
	}

	if data, err := os.ReadFile(store.filePath); err == nil {
		_ = json.Unmarshal(data, &store.materials)
	}

	return store, nil
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.materials, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0644)
}

// ==================== Material CRUD ====================

func (s *Store) Create(title, fileName, fileType string, fileSize int64, tags []string) (*Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	if title == "" {
		title = fileName
	}
	if title == "" {
		title = "Material " + id[:8]
	}

	now := time.Now()
	mat := Material{
		ID:        id,
		Title:     title,
		Tags:      tags,
		FileName:  fileName,
		FileType:  fileType,
		FileSize:  fileSize,
		Status:    "processing",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := os.MkdirAll(filepath.Join(s.dataDir, id), 0755); err != nil {
		return nil, fmt.Errorf("failed to create material dir: %w", err)
	}

	s.materials = append(s.materials, mat)
	if err := s.save(); err != nil {
		return nil, err
	}

	return &mat, nil
}

func (s *Store) List() []Material {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Material, len(s.materials))
	copy(result, s.materials)
	return result
}

func (s *Store) Get(id string) (*Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.materials {
		if s.materials[i].ID == id {
			m := s.materials[i]
			return &m, nil
		}
	}
	return nil, fmt.Errorf("material not found: %s", id)
}

func (s *Store) Update(mat Material) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.materials {
		if s.materials[i].ID == mat.ID {
			mat.UpdatedAt = time.Now()
			s.materials[i] = mat
			return s.save()
		}
	}
	return fmt.Errorf("material not found: %s", mat.ID)
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	var updated []Material
	for _, m := range s.materials {
		if m.ID == id {
			found = true
			continue
		}
		updated = append(updated, m)
	}
	if !found {
		return fmt.Errorf("material not found: %s", id)
	}

	s.materials = updated
	_ = os.RemoveAll(filepath.Join(s.dataDir, id))

	return s.save()
}

// ==================== Generated Content ====================

// SaveContent persists the generated study content for a material.
func (s *Store) SaveContent(id string, content *artifacts.ProcessedContent) error {
	dir := filepath.Join(s.dataDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "content.json"), data, 0644)
}

func (s *Store) LoadContent(id string) (*artifacts.ProcessedContent, error) {
	data, err := os.ReadFile(filepath.Join(s.dataDir, id, "content.json"))
	if err != nil {
		return nil, fmt.Errorf("content not found for material %s: %w", id, err)
	}
	var content artifacts.ProcessedContent
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

// MaterialDir returns the per-material directory under the store's data dir.
func (s *Store) MaterialDir(id string) string {
	return filepath.Join(s.dataDir, id)
}
