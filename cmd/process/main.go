package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"cognote/internal/ai"
	"cognote/internal/artifacts"
	"cognote/internal/asset"
	"cognote/internal/pipeline"
	"cognote/internal/processor"
)

// Batch processor: runs every file in a directory through the study
// pipeline and writes one <name>.study.json next to each input.
func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	inputDir := flag.String("dir", "materials", "directory of files to process")
	outDir := flag.String("out", "", "output directory (defaults to the input directory)")
	summaryOnly := flag.Bool("summary-only", false, "generate the summary only, fall back for the rest")
	flag.Parse()

	if *outDir == "" {
		*outDir = *inputDir
	}

	providerName := os.Getenv("AI_PROVIDER")
	apiKey := os.Getenv("GEMINI_API_KEY")
	if strings.EqualFold(providerName, "openai") {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	ctx := context.Background()
	provider, err := ai.NewProvider(ctx, providerName, apiKey, os.Getenv("AI_MODEL"), log)
	if err != nil {
		log.Fatalf("Failed to build AI provider: %v", err)
	}
	if !provider.Available() {
		log.Warn("No AI API key configured. Outputs will use fallback study aids.")
	}

	pipe := pipeline.New(processor.New(provider, log), artifacts.NewGenerator(provider, log), log)

	entries, err := os.ReadDir(*inputDir)
	if err != nil {
		log.Fatalf("Failed to read input directory: %v", err)
	}

	start := time.Now()
	processed := 0
	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), ".study.json") {
			continue
		}
		path := filepath.Join(*inputDir, entry.Name())

		mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(entry.Name())))
		if asset.Classify(mimeType, entry.Name()) == asset.ModalityUnknown {
			log.Warnf("Skipping %s: unrecognized file type", entry.Name())
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			log.Errorf("Failed to read %s: %v", entry.Name(), err)
			continue
		}

		fmt.Printf("Processing %s...\n", entry.Name())

		content, err := pipe.ProcessFile(ctx, asset.UploadedAsset{
			Name:       entry.Name(),
			MIMEType:   mimeType,
			SizeBytes:  int64(len(data)),
			BinaryData: data,
			UploadedAt: time.Now(),
		}, pipeline.Options{GenerateAll: !*summaryOnly})
		if err != nil {
			log.Errorf("Failed to process %s: %v", entry.Name(), err)
			continue
		}

		outPath := filepath.Join(*outDir, entry.Name()+".study.json")
		out, err := json.MarshalIndent(content, "", "  ")
		if err != nil {
			log.Errorf("Failed to encode output for %s: %v", entry.Name(), err)
			continue
		}
		if err := os.WriteFile(outPath, out, 0644); err != nil {
			log.Errorf("Failed to write %s: %v", outPath, err)
			continue
		}

		processed++
		if len(content.Degraded) > 0 {
			fmt.Printf("  %d artifact(s) used fallbacks: %s\n",
				len(content.Degraded), strings.Join(content.Degraded, "; "))
		}
	}

	fmt.Printf("Processed %d file(s) in %v.\n", processed, time.Since(start))
}
