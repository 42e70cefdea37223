// Package ai holds the generation adapters. Each adapter wraps one
// external generative API and turns a prompt into storable bytes plus a
// content type; the text adapter returns structured marketing copy
// instead. Clients are constructed explicitly and passed in — no
// package-level provider state.
package ai

import (
	"context"
	"errors"
)

// Artifact is a generated payload ready for blob upload.
type Artifact struct {
	Data        []byte
	ContentType string
	Ext         string
}

// Generator produces a durable artifact from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Artifact, error)
}

// Generator names used as registry keys and task routing values.
const (
	GeneratorImage  = "image"
	GeneratorVideo  = "video"
	GeneratorVoice  = "voice"
	GeneratorJingle = "jingle"
)

// ContentRequest is the input for marketing-copy generation.
type ContentRequest struct {
	Prompt     string
	Tone       string
	MediaStyle string
	VoiceStyle string
	Seconds    int
}

// ContentResult is the structured output the text model is asked for.
type ContentResult struct {
	Headline    string `json:"headline"`
	Caption     string `json:"caption"`
	MediaPrompt string `json:"mediaPrompt"`
	AudioPrompt string `json:"audioPrompt"`
}

// ContentGenerator produces the headline/caption/prompt bundle that seeds
// the per-kind generators.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, req ContentRequest) (*ContentResult, error)
}

var (
	// ErrNoContent means the provider returned an empty response.
	ErrNoContent = errors.New("no content generated")
)
