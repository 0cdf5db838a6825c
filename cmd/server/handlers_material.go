package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cognote/internal/artifacts"
	"cognote/internal/asset"
	"cognote/internal/material"
	"cognote/internal/pipeline"
	"cognote/internal/search"
)

// Uploads are capped well above the encoding limit so oversized files still
// get the truncation path instead of a hard reject.
const maxUploadBytes = 100 << 20

type materialIDRequest struct {
	ID string `json:"id"`
}

// ========== Upload & Processing ==========

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		jsonErr(w, "Failed to parse upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonErr(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		jsonErr(w, "Failed to read upload: "+err.Error(), http.StatusInternalServerError)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	modality := asset.Classify(mimeType, header.Filename)
	if modality == asset.ModalityUnknown {
		jsonErr(w, fmt.Sprintf("unrecognized file type: %s", header.Filename), http.StatusBadRequest)
		return
	}

	title := r.FormValue("title")
	var tags []string
	for _, t := range strings.Split(r.FormValue("tags"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	mat, err := s.materials.Create(title, header.Filename, string(modality), int64(len(data)), tags)
	if err != nil {
		jsonErr(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if url, err := s.files.Save(data, mat.ID, header.Filename); err != nil {
		s.log.Warnf("failed to store original file for %s: %v", mat.ID, err)
	} else {
		mat.FileURL = url
		_ = s.materials.Update(*mat)
	}

	a := asset.UploadedAsset{
		Name:       header.Filename,
		MIMEType:   mimeType,
		SizeBytes:  int64(len(data)),
		BinaryData: data,
		UploadedAt: time.Now(),
	}

	go s.processMaterial(context.Background(), mat.ID, a, pipeline.Options{GenerateAll: true})

	jsonResp(w, mat)
}

// processMaterial runs the study pipeline in the background and records
// progress for the status endpoint.
func (s *Server) processMaterial(ctx context.Context, materialID string, a asset.UploadedAsset, opts pipeline.Options) {
	st := s.status(materialID)
	st.set("processing")

	s.mu.RLock()
	pipe := s.pipe
	s.mu.RUnlock()

	content, err := pipe.ProcessFile(ctx, a, opts)
	if err != nil {
		s.log.Errorf("processing failed for material %s: %v", materialID, err)
		st.fail(err.Error())
		if mat, gerr := s.materials.Get(materialID); gerr == nil {
			mat.Status = "failed"
			mat.Error = err.Error()
			_ = s.materials.Update(*mat)
		}
		return
	}

	if err := s.materials.SaveContent(materialID, content); err != nil {
		s.log.Errorf("failed to save content for material %s: %v", materialID, err)
		st.fail(err.Error())
		return
	}

	mat, err := s.materials.Get(materialID)
	if err == nil {
		mat.Status = "ready"
		mat.Error = ""
		mat.Headings = material.NoteHeadings(content.PolishedNote)
		mat.StudyTime = material.EstimateStudyTime(content.PolishedNote)
		_ = s.materials.Update(*mat)

		if ierr := s.index.IndexMaterial(search.Document{
			ID:      mat.ID,
			Title:   mat.Title,
			Tags:    mat.Tags,
			Note:    content.PolishedNote,
			Summary: content.Summary,
		}); ierr != nil {
			s.log.Warnf("failed to index material %s: %v", mat.ID, ierr)
		}
	}

	st.mu.Lock()
	st.Phase = "done"
	st.Degraded = content.Degraded
	st.mu.Unlock()

	s.log.Infof("material %s processed (%d artifacts degraded)", materialID, len(content.Degraded))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		jsonErr(w, "id is required", http.StatusBadRequest)
		return
	}
	jsonResp(w, s.status(id).snapshot())
}

// ========== Material CRUD ==========

func (s *Server) handleMaterials(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		jsonResp(w, s.materials.List())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleMaterialContent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req materialIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		jsonErr(w, "id is required", http.StatusBadRequest)
		return
	}

	mat, err := s.materials.Get(req.ID)
	if err != nil {
		jsonErr(w, err.Error(), http.StatusNotFound)
		return
	}

	content, err := s.materials.LoadContent(req.ID)
	if err != nil {
		jsonErr(w, err.Error(), http.StatusNotFound)
		return
	}

	jsonResp(w, map[string]interface{}{
		"material": mat,
		"content":  content,
	})
}

func (s *Server) handleUpdateMaterial(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ID    string   `json:"id"`
		Title string   `json:"title"`
		Tags  []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		jsonErr(w, "id is required", http.StatusBadRequest)
		return
	}

	mat, err := s.materials.Get(req.ID)
	if err != nil {
		jsonErr(w, err.Error(), http.StatusNotFound)
		return
	}

	if req.Title != "" {
		mat.Title = req.Title
	}
	if req.Tags != nil {
		mat.Tags = req.Tags
	}
	if err := s.materials.Update(*mat); err != nil {
		jsonErr(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Keep the search index in step with the new metadata
	if content, cerr := s.materials.LoadContent(mat.ID); cerr == nil {
		_ = s.index.IndexMaterial(search.Document{
			ID:      mat.ID,
			Title:   mat.Title,
			Tags:    mat.Tags,
			Note:    content.PolishedNote,
			Summary: content.Summary,
		})
	}

	jsonResp(w, mat)
}

func (s *Server) handleDeleteMaterial(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req materialIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		jsonErr(w, "id is required", http.StatusBadRequest)
		return
	}

	if err := s.materials.Delete(req.ID); err != nil {
		jsonErr(w, err.Error(), http.StatusNotFound)
		return
	}
	_ = s.files.Delete(req.ID)
	_ = s.index.Remove(req.ID)

	s.mu.Lock()
	delete(s.statuses, req.ID)
	s.mu.Unlock()

	jsonResp(w, map[string]string{"status": "deleted"})
}

// ========== Regeneration ==========

// handleRegenerate rebuilds a single artifact from the stored polished note,
// or from the original binary when from_file is set.
func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ID       string `json:"id"`
		Artifact string `json:"artifact"` // summary, quiz, mindmap, flashcards
		FromFile bool   `json:"from_file"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" || req.Artifact == "" {
		jsonErr(w, "id and artifact are required", http.StatusBadRequest)
		return
	}

	mat, err := s.materials.Get(req.ID)
	if err != nil {
		jsonErr(w, err.Error(), http.StatusNotFound)
		return
	}

	content, err := s.materials.LoadContent(req.ID)
	if err != nil {
		jsonErr(w, err.Error(), http.StatusNotFound)
		return
	}

	var payload asset.Payload
	if req.FromFile {
		data, err := s.files.Load(mat.FileURL)
		if err != nil {
			jsonErr(w, "original file is no longer available", http.StatusNotFound)
			return
		}
		payload = asset.EncodePayload(asset.UploadedAsset{
			Name:       mat.FileName,
			MIMEType:   mime.TypeByExtension(filepath.Ext(mat.FileName)),
			SizeBytes:  int64(len(data)),
			BinaryData: data,
		})
	} else if strings.TrimSpace(content.PolishedNote) == "" {
		jsonErr(w, "material has no note text to regenerate from", http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	gen := s.generator
	s.mu.RUnlock()

	ctx := r.Context()
	identifier := mat.FileName
	degraded := ""

	switch strings.ToLower(req.Artifact) {
	case "summary":
		var out artifacts.Outcome[string]
		if req.FromFile {
			out = gen.SummaryFromFile(ctx, payload)
		} else {
			out = gen.Summary(ctx, identifier, content.PolishedNote)
		}
		content.Summary = out.Value
		if out.IsDegraded() {
			degraded = out.Reason
		}
	case "quiz":
		var out artifacts.Outcome[artifacts.Quiz]
		if req.FromFile {
			out = gen.QuizFromFile(ctx, payload)
		} else {
			out = gen.Quiz(ctx, identifier, content.PolishedNote)
		}
		content.Quiz = out.Value
		if out.IsDegraded() {
			degraded = out.Reason
		}
	case "mindmap":
		var out artifacts.Outcome[string]
		if req.FromFile {
			out = gen.MindMapFromFile(ctx, payload)
		} else {
			out = gen.MindMap(ctx, identifier, content.PolishedNote)
		}
		content.MindMap = out.Value
		if out.IsDegraded() {
			degraded = out.Reason
		}
	case "flashcards":
		var out artifacts.Outcome[artifacts.FlashcardSet]
		if req.FromFile {
			out = gen.FlashcardsFromFile(ctx, payload)
		} else {
			out = gen.Flashcards(ctx, identifier, content.PolishedNote)
		}
		content.Flashcards = out.Value
		if out.IsDegraded() {
			degraded = out.Reason
		}
	default:
		jsonErr(w, "unknown artifact: "+req.Artifact, http.StatusBadRequest)
		return
	}

	if err := s.materials.SaveContent(req.ID, content); err != nil {
		jsonErr(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := map[string]interface{}{
		"content": content,
	}
	if degraded != "" {
		resp["degraded"] = degraded
	}
	jsonResp(w, resp)
}

// ========== Search ==========

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query().Get("q")
	topK := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			topK = n
		}
	}

	hits, err := s.index.Search(query, topK)
	if err != nil {
		jsonErr(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Resolve hits back to material records
	type searchResult struct {
		Material  interface{} `json:"material"`
		Score     float64     `json:"score"`
		Fragments string      `json:"fragments,omitempty"`
	}
	results := []searchResult{}
	for _, h := range hits {
		mat, err := s.materials.Get(h.MaterialID)
		if err != nil {
			continue
		}
		results = append(results, searchResult{Material: mat, Score: h.Score, Fragments: h.Fragments})
	}

	jsonResp(w, map[string]interface{}{
		"query":   query,
		"results": results,
	})
}
