package main

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ========== Settings Endpoint ==========

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.RLock()
		resp := map[string]interface{}{
			"provider":     s.providerName,
			"model":        s.modelName,
			"gemini_key":   maskKey(s.geminiKey),
			"openai_key":   maskKey(s.openaiKey),
			"ai_available": s.provider.Available(),
		}
		s.mu.RUnlock()
		jsonResp(w, resp)

	case http.MethodPost:
		var req struct {
			GeminiKey string `json:"gemini_key"`
			OpenAIKey string `json:"openai_key"`
			Provider  string `json:"provider"`
			Model     string `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonErr(w, "Invalid request", http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		// Only update keys if a real (non-masked) value was sent
		if req.GeminiKey != "" && !strings.Contains(req.GeminiKey, "...") {
			s.geminiKey = req.GeminiKey
		}
		if req.OpenAIKey != "" && !strings.Contains(req.OpenAIKey, "...") {
			s.openaiKey = req.OpenAIKey
		}
		if req.Provider != "" {
			s.providerName = req.Provider
		}
		s.modelName = req.Model

		saved := SavedSettings{
			GeminiKey: s.geminiKey,
			OpenAIKey: s.openaiKey,
			Provider:  s.providerName,
			Model:     s.modelName,
		}
		s.mu.Unlock()

		if err := s.rebuildProvider(r.Context()); err != nil {
			jsonErr(w, "Provider error: "+err.Error(), http.StatusBadRequest)
			return
		}

		if err := s.persistSettings(saved); err != nil {
			s.log.Warnf("failed to persist settings: %v", err)
		}

		s.log.Infof("settings updated: provider=%s model=%s", saved.Provider, saved.Model)
		jsonResp(w, map[string]string{"status": "saved"})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ========== Stats ==========

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	mats := s.materials.List()
	ready := 0
	for _, m := range mats {
		if m.Status == "ready" {
			ready++
		}
	}

	indexed, _ := s.index.Count()

	s.mu.RLock()
	providerName := s.providerName
	available := s.provider.Available()
	s.mu.RUnlock()

	jsonResp(w, map[string]interface{}{
		"materials":       len(mats),
		"materials_ready": ready,
		"workflows":       len(s.workflows.List()),
		"indexed":         indexed,
		"provider":        providerName,
		"ai_available":    available,
	})
}
