package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

const contentPromptTemplate = `You are a marketing expert specializing in creating engaging content for various brands. Your task is to generate compelling marketing content based on the provided prompt and tone.
Use the following guidelines:
  - Focus on creating a catchy headline and a concise caption that captures the essence of the brand.
  - Ensure the content is tailored to the specified tone, whether it's playful, serious, bold, professional, or any other specified tone.
  - Keep the headline to a maximum of 10 words and the caption to 2-3 sentences.

Now, based on the provided prompt and tone, generate the marketing content:
Create marketing content for: %s

Tone: %s

Generate:
1. A compelling marketing headline (max 10 words)
2. A marketing caption (2-3 sentences)
3. A media prompt in a %s style that complements the content.
4. An audio prompt for a %s voiceover %d sec long that matches the tone and content, it should detail what is to be said and the time where it should be said.

Format your response as JSON with "headline", "caption", "mediaPrompt" and "audioPrompt" fields.
!IMPORTANT: Do not include any additional text or explanations in your response. Only return the JSON object.`

// GeminiText generates the marketing-copy bundle with a Gemini text model.
type GeminiText struct {
	client *genai.Client
	model  string
}

func NewGeminiText(client *genai.Client, model string) *GeminiText {
	return &GeminiText{client: client, model: model}
}

func (g *GeminiText) GenerateContent(ctx context.Context, req ContentRequest) (*ContentResult, error) {
	prompt := fmt.Sprintf(contentPromptTemplate,
		req.Prompt, req.Tone, req.MediaStyle, req.VoiceStyle, req.Seconds)

	model := g.client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	var b strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				b.WriteString(string(txt))
			}
		}
	}
	return ParseContent(b.String())
}

// ParseContent extracts the JSON object from raw model output and decodes
// it. Models routinely wrap the object in prose or code fences, so
// everything outside the first '{' .. last '}' span is discarded.
func ParseContent(raw string) (*ContentResult, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrNoContent
	}
	span, ok := extractJSONObject(raw)
	if !ok {
		return nil, fmt.Errorf("parse content JSON: no object found in model output")
	}
	var out ContentResult
	if err := json.Unmarshal([]byte(span), &out); err != nil {
		return nil, fmt.Errorf("parse content JSON: %w", err)
	}
	return &out, nil
}

func extractJSONObject(s string) (string, bool) {
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first == -1 || last == -1 || last <= first {
		return "", false
	}
	return s[first : last+1], true
}
