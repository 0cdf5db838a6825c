package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// ErrUnavailable signals that no provider credential is configured.
// Generators treat it as a routing signal to their static fallback, never
// as a request failure.
var ErrUnavailable = errors.New("ai provider not configured")

// Inline carries a binary payload for multimodal generation. Data is bare
// base64 (no data-URI prefix).
type Inline struct {
	Data     string
	MIMEType string
}

// Request is the logical generation contract: a prompt, an optional inline
// binary, and a sampling temperature. The response is plain text; callers
// that expect JSON run it through the sanitize package.
type Request struct {
	Prompt      string
	Inline      *Inline
	Temperature float32
}

// Provider abstracts the generative backend. It is injected explicitly;
// there is no package-level client. Available reports whether Generate can
// be called at all; a false return means callers should use fallbacks
// without attempting a network call.
type Provider interface {
	Available() bool
	Generate(ctx context.Context, req Request) (string, error)
}

// NewProvider builds a backend by name. An empty API key yields the
// disabled provider regardless of name.
func NewProvider(ctx context.Context, providerName, apiKey, model string, log *logrus.Logger) (Provider, error) {
	if apiKey == "" {
		return Disabled{}, nil
	}
	switch strings.ToLower(providerName) {
	case "gemini", "":
		if model == "" {
			model = "gemini-1.5-flash"
		}
		client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
		if err != nil {
			return nil, fmt.Errorf("gemini client error: %w", err)
		}
		return &GeminiProvider{client: client, model: model, log: log}, nil
	case "openai":
		if model == "" {
			model = openai.GPT4o
		}
		return &OpenAIProvider{client: openai.NewClient(apiKey), model: model, log: log}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", providerName)
	}
}

// Disabled is the null provider used when no credential is configured.
// Every Generate call fails with ErrUnavailable and Available is false, so
// generators short-circuit to fallbacks with zero network calls.
type Disabled struct{}

func (Disabled) Available() bool { return false }

func (Disabled) Generate(ctx context.Context, req Request) (string, error) {
	return "", ErrUnavailable
}

// ==========================================
// Gemini Provider
// ==========================================

type GeminiProvider struct {
	client *genai.Client
	model  string
	log    *logrus.Logger
}

func (p *GeminiProvider) Available() bool { return true }

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (string, error) {
	model := p.client.GenerativeModel(p.model)
	model.SetTemperature(req.Temperature)

	parts := []genai.Part{genai.Text(req.Prompt)}
	if req.Inline != nil {
		raw, err := base64.StdEncoding.DecodeString(req.Inline.Data)
		if err != nil {
			return "", fmt.Errorf("inline payload decode error: %w", err)
		}
		parts = append(parts, genai.Blob{MIMEType: req.Inline.MIMEType, Data: raw})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini error: %w", err)
	}

	text := collectGeminiText(resp)
	if text == "" {
		return "", fmt.Errorf("gemini empty response")
	}
	return text, nil
}

func collectGeminiText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// Close releases the underlying gRPC connection.
func (p *GeminiProvider) Close() error { return p.client.Close() }

// ==========================================
// OpenAI Provider
// ==========================================

type OpenAIProvider struct {
	client *openai.Client
	model  string
	log    *logrus.Logger
}

func (p *OpenAIProvider) Available() bool { return true }

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (string, error) {
	var msg openai.ChatCompletionMessage
	if req.Inline != nil {
		// Chat completions accept inline binaries only for images, as
		// data-URI image parts. Audio/video/PDF inline payloads need the
		// Gemini backend.
		if !strings.HasPrefix(req.Inline.MIMEType, "image/") {
			return "", fmt.Errorf("openai backend cannot accept inline %s payloads", req.Inline.MIMEType)
		}
		msg = openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: req.Prompt},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL: fmt.Sprintf("data:%s;base64,%s", req.Inline.MIMEType, req.Inline.Data),
					},
				},
			},
		}
	} else {
		msg = openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt}
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    []openai.ChatCompletionMessage{msg},
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
