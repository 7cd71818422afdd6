package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/markdave123-py/fileinput/internal/core"
)

// GeminiLLM sends task payloads to a Gemini model as inline blobs.
type GeminiLLM struct {
	client    *genai.Client
	modelName string
	prompt    string
}

var _ core.InferencePipeline = (*GeminiLLM)(nil)

func NewGeminiLLM(ctx context.Context, apiKey, modelName, prompt string) (*GeminiLLM, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY not set")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiLLM{client: cl, modelName: modelName, prompt: prompt}, nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Infer runs the configured prompt over one payload.
func (g *GeminiLLM) Infer(ctx context.Context, contentType string, data []byte) (string, error) {
	m := g.client.GenerativeModel(g.modelName)

	// Blobs take a bare media type.
	mimeType, _, _ := strings.Cut(contentType, ";")
	parts := []genai.Part{genai.Blob{MIMEType: strings.TrimSpace(mimeType), Data: data}}
	if g.prompt != "" {
		parts = append(parts, genai.Text(g.prompt))
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return responseText(resp), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
