package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"cognote/internal/ai"
	"cognote/internal/artifacts"
	"cognote/internal/crypto"
	"cognote/internal/material"
	"cognote/internal/pipeline"
	"cognote/internal/processor"
	"cognote/internal/search"
	"cognote/internal/storage"
	"cognote/internal/workflow"
)

// Server holds all shared state.
type Server struct {
	mu sync.RWMutex

	provider     ai.Provider
	providerName string
	modelName    string
	geminiKey    string
	openaiKey    string

	pipe      *pipeline.Pipeline
	generator *artifacts.Generator
	synth     *workflow.Synthesizer

	materials *material.Store
	workflows *material.WorkflowStore
	files     *storage.FileStore
	index     *search.Index

	statuses map[string]*ProcessStatus // material ID -> processing progress

	log *logrus.Logger
}

// ProcessStatus is polled by the frontend while a material is processed.
type ProcessStatus struct {
	mu       sync.RWMutex
	Phase    string   `json:"phase"` // queued, processing, done, error
	Degraded []string `json:"degraded,omitempty"`
	Error    string   `json:"error,omitempty"`
}

func (s *ProcessStatus) set(phase string) {
	s.mu.Lock()
	s.Phase = phase
	s.mu.Unlock()
}

func (s *ProcessStatus) fail(msg string) {
	s.mu.Lock()
	s.Phase = "error"
	s.Error = msg
	s.mu.Unlock()
}

func (s *ProcessStatus) snapshot() ProcessStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ProcessStatus{
		Phase:    s.Phase,
		Degraded: append([]string(nil), s.Degraded...),
		Error:    s.Error,
	}
}

func (s *Server) status(materialID string) *ProcessStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[materialID]
	if !ok {
		st = &ProcessStatus{Phase: "queued"}
		s.statuses[materialID] = st
	}
	return st
}

// currentProvider returns the provider under a read lock; handlers must not
// hold a reference across settings updates.
func (s *Server) currentProvider() ai.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provider
}

// rebuildProvider reconstructs the AI provider and everything downstream of
// it after a settings change.
func (s *Server) rebuildProvider(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.geminiKey
	if strings.EqualFold(s.providerName, "openai") {
		key = s.openaiKey
	}

	provider, err := ai.NewProvider(ctx, s.providerName, key, s.modelName, s.log)
	if err != nil {
		return err
	}

	s.provider = provider
	s.generator = artifacts.NewGenerator(provider, s.log)
	s.pipe = pipeline.New(processor.New(provider, s.log), s.generator, s.log)
	s.synth = workflow.New(provider, s.log)
	return nil
}

// ========== Settings Persistence ==========

const settingsFile = "data/settings.json"

type SavedSettings struct {
	GeminiKey string `json:"gemini_key"`
	OpenAIKey string `json:"openai_key"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
}

func (s *Server) loadSavedSettings() *SavedSettings {
	data, err := os.ReadFile(settingsFile)
	if err != nil {
		return nil
	}
	var saved SavedSettings
	if err := json.Unmarshal(data, &saved); err != nil {
		s.log.Warnf("could not parse %s: %v", settingsFile, err)
		return nil
	}

	// Decrypt API key fields (backward-compatible: if decryption fails, use raw value)
	saved.GeminiKey = decryptOrPassthrough(saved.GeminiKey)
	saved.OpenAIKey = decryptOrPassthrough(saved.OpenAIKey)

	return &saved
}

// decryptOrPassthrough tries to decrypt a value; if it fails (e.g. legacy
// plaintext), returns the original value unchanged.
func decryptOrPassthrough(val string) string {
	if val == "" {
		return ""
	}
	decrypted, err := crypto.Decrypt(val)
	if err != nil {
		return val
	}
	return decrypted
}

func (s *Server) persistSettings(saved SavedSettings) error {
	_ = os.MkdirAll("data", 0755)

	// Encrypt API key fields before writing to disk
	toSave := saved
	var err error
	if toSave.GeminiKey, err = crypto.Encrypt(saved.GeminiKey); err != nil {
		s.log.Warnf("failed to encrypt Gemini key: %v", err)
		toSave.GeminiKey = saved.GeminiKey
	}
	if toSave.OpenAIKey, err = crypto.Encrypt(saved.OpenAIKey); err != nil {
		s.log.Warnf("failed to encrypt OpenAI key: %v", err)
		toSave.OpenAIKey = saved.OpenAIKey
	}

	data, err := json.MarshalIndent(toSave, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(settingsFile, data, 0644)
}

func maskKey(key string) string {
	if len(key) <= 8 {
		if key == "" {
			return ""
		}
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// ========== Middleware ==========

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ========== Helpers ==========

func jsonResp(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func jsonErr(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
