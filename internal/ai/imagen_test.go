package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestImagenGenerate(t *testing.T) {
	imgBytes := []byte{0xFF, 0xD8, 0xFF, 0xE0}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "models/test-imagen:predict") {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req imagenPredictReq
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Instances) != 1 || req.Instances[0].Prompt != "a smart bottle" {
			t.Errorf("instances = %+v", req.Instances)
		}
		if req.Parameters.SampleCount != 1 || req.Parameters.AspectRatio != "1:1" {
			t.Errorf("parameters = %+v", req.Parameters)
		}
		fmt.Fprintf(w, `{"predictions":[{"bytesBase64Encoded":%q,"mimeType":"image/jpeg"}]}`,
			base64.StdEncoding.EncodeToString(imgBytes))
	}))
	defer srv.Close()

	c := NewImagenClient(srv.URL, "key", "test-imagen")
	art, err := c.Generate(context.Background(), "a smart bottle")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if art.ContentType != "image/jpeg" || art.Ext != "jpg" {
		t.Errorf("artifact meta = %q/%q", art.ContentType, art.Ext)
	}
	if string(art.Data) != string(imgBytes) {
		t.Errorf("decoded bytes mismatch")
	}
}

func TestImagenGenerateEmptyPredictions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"predictions":[]}`)
	}))
	defer srv.Close()

	c := NewImagenClient(srv.URL, "key", "test-imagen")
	_, err := c.Generate(context.Background(), "a smart bottle")
	if err == nil || !strings.Contains(err.Error(), "no image") {
		t.Fatalf("err = %v, want no-image error", err)
	}
}

func TestImagenGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"message":"quota exceeded"}}`)
	}))
	defer srv.Close()

	c := NewImagenClient(srv.URL, "key", "test-imagen")
	_, err := c.Generate(context.Background(), "a smart bottle")
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("err = %v, want API error message", err)
	}
}
