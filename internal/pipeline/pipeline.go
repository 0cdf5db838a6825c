package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"cognote/internal/artifacts"
	"cognote/internal/asset"
	"cognote/internal/processor"
)

// DefaultStepDelay is the pause inserted between consecutive artifact
// generations. The per-upload path is the hot path against provider rate
// limits, so generation is deliberately sequential with a fixed gap; this
// is prevention, not retry-on-429.
const DefaultStepDelay = time.Second

// Options controls a single pipeline run.
type Options struct {
	LiveRecording bool
	// GenerateAll is kept for API parity; when false only the polished
	// note and summary are produced.
	GenerateAll bool
}

// Pipeline runs the single-material path: classify, extract, then the four
// artifact generators in fixed order. Extraction failure is the only fatal
// transition; each generator degrades independently to its fallback.
type Pipeline struct {
	processor *processor.Processor
	generator *artifacts.Generator
	stepDelay time.Duration
	log       *logrus.Logger
}

func New(proc *processor.Processor, gen *artifacts.Generator, log *logrus.Logger) *Pipeline {
	if log == nil {
		log = logrus.New()
	}
	return &Pipeline{
		processor: proc,
		generator: gen,
		stepDelay: DefaultStepDelay,
		log:       log,
	}
}

// WithStepDelay overrides the inter-generation delay. Tests pass 0.
func (p *Pipeline) WithStepDelay(d time.Duration) *Pipeline {
	p.stepDelay = d
	return p
}

// ProcessFile runs the full pipeline for one uploaded asset. The returned
// ProcessedContent is complete on success: a non-empty polished note and
// all four artifacts, each either generated or that artifact's fallback.
func (p *Pipeline) ProcessFile(ctx context.Context, a asset.UploadedAsset, opts Options) (*artifacts.ProcessedContent, error) {
	modality := a.Classify()
	if modality == asset.ModalityUnknown {
		return nil, fmt.Errorf("failed to process %q: unrecognized file type", a.Name)
	}

	p.log.Infof("processing %s as %s", a.Name, modality)
	res, err := p.processor.Process(ctx, a, modality, processor.Options{LiveRecording: opts.LiveRecording})
	if err != nil {
		return nil, fmt.Errorf("failed to process %s: %w", modality, err)
	}

	out := &artifacts.ProcessedContent{
		Transcription: res.Transcription,
		PolishedNote:  res.Content,
		FileMetadata: artifacts.FileMetadata{
			Name:        a.Name,
			Type:        string(modality),
			Size:        a.SizeBytes,
			ProcessedAt: time.Now().UTC(),
		},
	}

	record := func(name string, degraded bool, reason string) {
		if degraded {
			p.log.Warnf("%s for %s degraded to fallback: %s", name, a.Name, reason)
			out.Degraded = append(out.Degraded, fmt.Sprintf("%s: %s", name, reason))
		}
	}

	summary := p.generator.Summary(ctx, a.Name, res.Content)
	out.Summary = summary.Value
	record("summary", summary.IsDegraded(), summary.Reason)

	if !opts.GenerateAll {
		// Still guarantee a complete bundle; the remaining artifacts are
		// the deterministic fallbacks, produced without provider calls.
		out.Quiz = artifacts.FallbackQuiz(a.Name)
		out.MindMap = artifacts.FallbackMindMap(a.Name)
		out.Flashcards = artifacts.FallbackFlashcards(a.Name)
		return out, nil
	}

	p.pause(ctx)
	quiz := p.generator.Quiz(ctx, a.Name, res.Content)
	out.Quiz = quiz.Value
	record("quiz", quiz.IsDegraded(), quiz.Reason)

	p.pause(ctx)
	mindMap := p.generator.MindMap(ctx, a.Name, res.Content)
	out.MindMap = mindMap.Value
	record("mind map", mindMap.IsDegraded(), mindMap.Reason)

	p.pause(ctx)
	cards := p.generator.Flashcards(ctx, a.Name, res.Content)
	out.Flashcards = cards.Value
	record("flashcards", cards.IsDegraded(), cards.Reason)

	return out, nil
}

// pause waits the configured step delay, returning early on cancellation.
func (p *Pipeline) pause(ctx context.Context) {
	if p.stepDelay <= 0 {
		return
	}
	t := time.NewTimer(p.stepDelay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
