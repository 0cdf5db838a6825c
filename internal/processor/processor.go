package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"cognote/internal/ai"
	"cognote/internal/asset"
	"cognote/internal/extract"
)

const polishTemperature = 0.3
const extractTemperature = 0.2

// Options controls modality extraction.
type Options struct {
	// LiveRecording marks audio captured in the browser rather than an
	// uploaded file; the transcription prompt then asks the model to strip
	// filler words and repetition.
	LiveRecording bool
}

// Result is the canonical output of modality extraction: the polished note
// text plus, for audio/video, the raw transcription.
type Result struct {
	Content       string
	Transcription string
}

// Processor turns a classified asset into note text. A failure here is
// fatal to the whole pipeline, since every artifact generator depends on
// the extracted content, so unlike the generators it returns errors
// instead of degrading.
type Processor struct {
	provider ai.Provider
	log      *logrus.Logger
}

func New(provider ai.Provider, log *logrus.Logger) *Processor {
	if log == nil {
		log = logrus.New()
	}
	return &Processor{provider: provider, log: log}
}

// Process extracts content for the given modality and polishes it.
func (p *Processor) Process(ctx context.Context, a asset.UploadedAsset, modality asset.Modality, opts Options) (*Result, error) {
	switch modality {
	case asset.ModalityAudio:
		return p.processAudio(ctx, a, opts.LiveRecording)
	case asset.ModalityVideo:
		return p.processVideo(ctx, a)
	case asset.ModalityImage:
		return p.processImage(ctx, a)
	case asset.ModalityPDF:
		return p.processPDF(ctx, a)
	case asset.ModalityDocument:
		return p.processDocument(ctx, a)
	case asset.ModalityText:
		return p.processText(ctx, a)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", a.Name)
	}
}

func (p *Processor) processAudio(ctx context.Context, a asset.UploadedAsset, live bool) (*Result, error) {
	prompt := `Transcribe this audio recording accurately and completely. Preserve the
speaker's meaning and terminology. Return only the transcription text.`
	if live {
		prompt = `Transcribe this live lecture recording. Remove filler words (um, uh,
like), false starts, and repetition, but keep every substantive point and all
terminology intact. Return only the cleaned transcription text.`
	}

	transcription, err := p.inlineExtract(ctx, a, prompt)
	if err != nil {
		return nil, fmt.Errorf("audio transcription: %w", err)
	}
	content, err := p.polish(ctx, transcription)
	if err != nil {
		return nil, err
	}
	return &Result{Content: content, Transcription: transcription}, nil
}

func (p *Processor) processVideo(ctx context.Context, a asset.UploadedAsset) (*Result, error) {
	prompt := `Transcribe the speech in this video accurately and completely. Also
describe any educational content shown on screen (slides, diagrams, formulas,
code) at the point it appears. Return only the transcription and descriptions.`

	transcription, err := p.inlineExtract(ctx, a, prompt)
	if err != nil {
		return nil, fmt.Errorf("video transcription: %w", err)
	}
	content, err := p.polish(ctx, transcription)
	if err != nil {
		return nil, err
	}
	return &Result{Content: content, Transcription: transcription}, nil
}

func (p *Processor) processImage(ctx context.Context, a asset.UploadedAsset) (*Result, error) {
	prompt := `Extract all visible content from this image: text, diagrams, formulas,
labels, and handwriting. Describe diagrams and figures in enough detail to
study from. Return only the extracted content.`

	text, err := p.inlineExtract(ctx, a, prompt)
	if err != nil {
		return nil, fmt.Errorf("image extraction: %w", err)
	}
	content, err := p.polish(ctx, text)
	if err != nil {
		return nil, err
	}
	return &Result{Content: content}, nil
}

func (p *Processor) processPDF(ctx context.Context, a asset.UploadedAsset) (*Result, error) {
	// Prefer the local text layer; fall back to inline AI extraction for
	// scanned PDFs or files the library cannot open.
	text, err := extract.PDFText(a.BinaryData)
	if err != nil {
		p.log.Infof("local pdf extraction failed for %s (%v), trying AI extraction", a.Name, err)
		prompt := `Extract the full text of this PDF document. Preserve the document's
structure: headings, lists, and table content. Return only the extracted text.`
		text, err = p.inlineExtract(ctx, a, prompt)
		if err != nil {
			return nil, fmt.Errorf("pdf extraction: %w", err)
		}
	}
	content, err := p.polish(ctx, text)
	if err != nil {
		return nil, err
	}
	return &Result{Content: content}, nil
}

func (p *Processor) processDocument(ctx context.Context, a asset.UploadedAsset) (*Result, error) {
	var text string
	var err error

	if strings.EqualFold(filepath.Ext(a.Name), ".docx") {
		text, err = extract.DocxText(a.BinaryData)
		if err != nil {
			p.log.Infof("local docx extraction failed for %s (%v), trying AI extraction", a.Name, err)
		}
	}
	if text == "" {
		prompt := `Extract the full text of this document. Preserve its structure:
headings, lists, and table content. Return only the extracted text.`
		text, err = p.inlineExtract(ctx, a, prompt)
		if err != nil {
			return nil, fmt.Errorf("document extraction: %w", err)
		}
	}

	content, err := p.polish(ctx, text)
	if err != nil {
		return nil, err
	}
	return &Result{Content: content}, nil
}

func (p *Processor) processText(ctx context.Context, a asset.UploadedAsset) (*Result, error) {
	raw := strings.TrimSpace(string(a.BinaryData))
	if raw == "" {
		return nil, fmt.Errorf("text file %s is empty", a.Name)
	}
	content, err := p.polish(ctx, raw)
	if err != nil {
		return nil, err
	}
	return &Result{Content: content}, nil
}

// inlineExtract sends the asset's binary with an extraction prompt.
func (p *Processor) inlineExtract(ctx context.Context, a asset.UploadedAsset, prompt string) (string, error) {
	payload := asset.EncodePayload(a)
	if payload.Truncated {
		// Truncation of a binary format likely corrupts the payload; kept
		// for parity with the size-cap contract, surfaced loudly.
		p.log.Warnf("payload for %s exceeded %d bytes and was truncated", a.Name, asset.MaxPayloadBytes)
	}
	return p.provider.Generate(ctx, ai.Request{
		Prompt:      prompt,
		Inline:      &ai.Inline{Data: payload.RawBase64(), MIMEType: payload.MIMEType},
		Temperature: extractTemperature,
	})
}

// polish converts raw extracted text into a clean study note. When no
// provider is configured the raw text passes through unchanged, so
// text-modality uploads still complete with AI disabled.
func (p *Processor) polish(ctx context.Context, raw string) (string, error) {
	if !p.provider.Available() {
		return raw, nil
	}
	prompt := fmt.Sprintf(`Rewrite the following raw extracted text as a clean, well-structured
study note in markdown. Fix grammar and transcription artifacts, add headings
where the content has natural sections, and keep every substantive detail.
Return only the note.

%s`, raw)

	polished, err := p.provider.Generate(ctx, ai.Request{Prompt: prompt, Temperature: polishTemperature})
	if err != nil {
		return "", fmt.Errorf("polish: %w", err)
	}
	if strings.TrimSpace(polished) == "" {
		return raw, nil
	}
	return polished, nil
}
