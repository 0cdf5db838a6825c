package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists uploaded files on local disk and hands back the URL
// path the HTTP server serves them under.
type FileStore struct {
	baseDir string
	urlBase string // e.g. "/files"
}

func NewFileStore(baseDir, urlBase string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &FileStore{baseDir: baseDir, urlBase: strings.TrimSuffix(urlBase, "/")}, nil
}

// Save writes the file under the material's directory and returns its URL.
// The stored name keeps only the original extension; the material ID makes
// the path unique.
func (fs *FileStore) Save(data []byte, materialID, fileName string) (string, error) {
	if materialID == "" {
		return "", fmt.Errorf("cannot store file without material id")
	}

	dir := filepath.Join(fs.baseDir, materialID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create material storage dir: %w", err)
	}

	name := "original" + strings.ToLower(filepath.Ext(fileName))
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", fs.urlBase, materialID, name), nil
}

// Load reads a stored file back by the URL Save returned.
func (fs *FileStore) Load(fileURL string) ([]byte, error) {
	rel := strings.TrimPrefix(fileURL, fs.urlBase+"/")
	rel = filepath.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return nil, fmt.Errorf("invalid file url: %s", fileURL)
	}
	data, err := os.ReadFile(filepath.Join(fs.baseDir, rel))
	if err != nil {
		return nil, fmt.Errorf("stored file not found: %w", err)
	}
	return data, nil
}

// Delete removes all stored files for a material.
func (fs *FileStore) Delete(materialID string) error {
	if materialID == "" || strings.Contains(materialID, string(os.PathSeparator)) {
		return fmt.Errorf("invalid material id: %s", materialID)
	}
	return os.RemoveAll(filepath.Join(fs.baseDir, materialID))
}

// Dir returns the directory the store serves files from.
func (fs *FileStore) Dir() string {
	return fs.baseDir
}
