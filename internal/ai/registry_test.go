package ai

import (
	"context"
	"testing"
)

type stubGenerator struct{}

func (stubGenerator) Generate(ctx context.Context, prompt string) (*Artifact, error) {
	return &Artifact{Data: []byte("x"), ContentType: "image/jpeg", Ext: "jpg"}, nil
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	r.Register(GeneratorImage, stubGenerator{})

	if _, err := r.Get("image"); err != nil {
		t.Fatalf("Get(image): %v", err)
	}
	if _, err := r.Get("  Image "); err != nil {
		t.Fatalf("Get should normalize case and whitespace: %v", err)
	}
	if _, err := r.Get("video"); err == nil {
		t.Fatal("Get(video) returned an unregistered generator")
	}
}
