package main

import (
	"context"
	"encoding/json"
	"net/http"

	"cognote/internal/material"
	"cognote/internal/workflow"
)

type workflowIDRequest struct {
	ID string `json:"id"`
}

// ========== Workflow CRUD ==========

func (s *Server) handleWorkflows(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		jsonResp(w, s.workflows.List())

	case http.MethodPost:
		var req struct {
			Name        string   `json:"name"`
			Description string   `json:"description"`
			MaterialIDs []string `json:"material_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonErr(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if len(req.MaterialIDs) == 0 {
			jsonErr(w, "material_ids is required", http.StatusBadRequest)
			return
		}
		for _, id := range req.MaterialIDs {
			if _, err := s.materials.Get(id); err != nil {
				jsonErr(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		wf, err := s.workflows.Create(req.Name, req.Description, req.MaterialIDs)
		if err != nil {
			jsonErr(w, err.Error(), http.StatusInternalServerError)
			return
		}

		go s.synthesizeWorkflow(context.Background(), wf.ID)

		jsonResp(w, wf)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleDeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req workflowIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		jsonErr(w, "id is required", http.StatusBadRequest)
		return
	}

	if err := s.workflows.Delete(req.ID); err != nil {
		jsonErr(w, err.Error(), http.StatusNotFound)
		return
	}
	jsonResp(w, map[string]string{"status": "deleted"})
}

func (s *Server) handleWorkflowBundle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req workflowIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		jsonErr(w, "id is required", http.StatusBadRequest)
		return
	}

	wf, err := s.workflows.Get(req.ID)
	if err != nil {
		jsonErr(w, err.Error(), http.StatusNotFound)
		return
	}

	bundle, err := s.workflows.LoadBundle(req.ID)
	if err != nil {
		jsonErr(w, err.Error(), http.StatusNotFound)
		return
	}

	jsonResp(w, map[string]interface{}{
		"workflow": wf,
		"bundle":   bundle,
	})
}

// handleResynthesize rebuilds a workflow's bundle, picking up materials that
// finished processing after the workflow was created.
func (s *Server) handleResynthesize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req workflowIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		jsonErr(w, "id is required", http.StatusBadRequest)
		return
	}

	wf, err := s.workflows.Get(req.ID)
	if err != nil {
		jsonErr(w, err.Error(), http.StatusNotFound)
		return
	}

	wf.Status = "synthesizing"
	_ = s.workflows.Update(*wf)

	go s.synthesizeWorkflow(context.Background(), wf.ID)

	jsonResp(w, wf)
}

// ========== Synthesis ==========

// synthesizeWorkflow gathers each member material's stored content and runs
// the cross-material synthesizer in the background.
func (s *Server) synthesizeWorkflow(ctx context.Context, workflowID string) {
	wf, err := s.workflows.Get(workflowID)
	if err != nil {
		s.log.Errorf("synthesis: workflow %s vanished: %v", workflowID, err)
		return
	}

	inputs := s.collectMaterialInputs(wf)

	s.mu.RLock()
	synth := s.synth
	s.mu.RUnlock()

	bundle := synth.Generate(ctx, wf.Name, inputs)

	if err := s.workflows.SaveBundle(wf.ID, bundle); err != nil {
		s.log.Errorf("failed to save bundle for workflow %s: %v", wf.ID, err)
		wf.Status = "failed"
		_ = s.workflows.Update(*wf)
		return
	}

	wf.Status = "ready"
	_ = s.workflows.Update(*wf)
	s.log.Infof("workflow %s synthesized from %d materials (%d artifacts degraded)",
		wf.ID, len(inputs), len(bundle.Degraded))
}

// collectMaterialInputs loads content for every material in the workflow,
// preserving the workflow's material order. Materials whose content is not
// available yet contribute title and tags only.
func (s *Server) collectMaterialInputs(wf *material.Workflow) []workflow.MaterialInput {
	var inputs []workflow.MaterialInput
	for _, id := range wf.MaterialIDs {
		mat, err := s.materials.Get(id)
		if err != nil {
			s.log.Warnf("workflow %s references missing material %s", wf.ID, id)
			continue
		}
		in := workflow.MaterialInput{Title: mat.Title, Tags: mat.Tags}
		if content, err := s.materials.LoadContent(id); err == nil {
			in.Summary = content.Summary
			in.Content = content.PolishedNote
		}
		inputs = append(inputs, in)
	}
	return inputs
}
