package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"cognote/internal/material"
	"cognote/internal/search"
	"cognote/internal/storage"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if os.Getenv("LOG_LEVEL") == "debug" {
		log.SetLevel(logrus.DebugLevel)
	}

	providerName := os.Getenv("AI_PROVIDER")
	geminiKey := os.Getenv("GEMINI_API_KEY")
	openaiKey := os.Getenv("OPENAI_API_KEY")
	modelName := os.Getenv("AI_MODEL")

	materials, err := material.NewStore("data/materials")
	if err != nil {
		log.Fatalf("Failed to init material store: %v", err)
	}
	workflows, err := material.NewWorkflowStore("data/workflows")
	if err != nil {
		log.Fatalf("Failed to init workflow store: %v", err)
	}
	files, err := storage.NewFileStore("data/files", "/files")
	if err != nil {
		log.Fatalf("Failed to init file store: %v", err)
	}
	index, err := search.Open("data/materials.index", log)
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer index.Close()

	srv := &Server{
		providerName: providerName,
		modelName:    modelName,
		geminiKey:    geminiKey,
		openaiKey:    openaiKey,
		materials:    materials,
		workflows:    workflows,
		files:        files,
		index:        index,
		statuses:     make(map[string]*ProcessStatus),
		log:          log,
	}

	// Saved settings override environment
	if saved := srv.loadSavedSettings(); saved != nil {
		log.Infof("Loading saved settings from %s", settingsFile)
		if saved.GeminiKey != "" {
			srv.geminiKey = saved.GeminiKey
		}
		if saved.OpenAIKey != "" {
			srv.openaiKey = saved.OpenAIKey
		}
		if saved.Provider != "" {
			srv.providerName = saved.Provider
		}
		if saved.Model != "" {
			srv.modelName = saved.Model
		}
	}

	if err := srv.rebuildProvider(context.Background()); err != nil {
		log.Fatalf("Failed to build AI provider: %v", err)
	}
	if !srv.currentProvider().Available() {
		log.Warn("No AI API key configured. Materials will be processed with fallback study aids only.")
	}

	mux := http.NewServeMux()

	// Material endpoints
	mux.HandleFunc("/api/materials", srv.handleMaterials)
	mux.HandleFunc("/api/materials/upload", srv.handleUpload)
	mux.HandleFunc("/api/materials/content", srv.handleMaterialContent)
	mux.HandleFunc("/api/materials/update", srv.handleUpdateMaterial)
	mux.HandleFunc("/api/materials/delete", srv.handleDeleteMaterial)
	mux.HandleFunc("/api/materials/regenerate", srv.handleRegenerate)
	mux.HandleFunc("/api/materials/status", srv.handleStatus)

	// Live recording
	mux.HandleFunc("/api/record", srv.handleRecord)

	// Workflow endpoints
	mux.HandleFunc("/api/workflows", srv.handleWorkflows)
	mux.HandleFunc("/api/workflows/delete", srv.handleDeleteWorkflow)
	mux.HandleFunc("/api/workflows/bundle", srv.handleWorkflowBundle)
	mux.HandleFunc("/api/workflows/resynthesize", srv.handleResynthesize)

	// Search, settings, stats
	mux.HandleFunc("/api/search", srv.handleSearch)
	mux.HandleFunc("/api/settings", srv.handleSettings)
	mux.HandleFunc("/api/stats", srv.handleStats)

	// Stored original files
	mux.Handle("/files/", http.StripPrefix("/files/", http.FileServer(http.Dir(files.Dir()))))

	// Static frontend
	mux.Handle("/", http.FileServer(http.Dir("web")))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Infof("Cognote server starting on http://localhost:%s", port)
	if err := http.ListenAndServe(":"+port, corsMiddleware(mux)); err != nil {
		log.Fatal(err)
	}
}
