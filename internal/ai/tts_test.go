package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func ttsResponse(mimeType string, data []byte) string {
	payload := map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{
				"parts": []any{map[string]any{
					"inlineData": map[string]string{
						"mimeType": mimeType,
						"data":     base64.StdEncoding.EncodeToString(data),
					},
				}},
			},
		}},
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

func TestTTSGenerateWrapsRawPCM(t *testing.T) {
	pcm := []byte{0, 1, 0, 2, 0, 3}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "models/test-tts:generateContent") {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req ttsGenerateReq
		json.NewDecoder(r.Body).Decode(&req)
		if got := req.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName; got != "Zephyr" {
			t.Errorf("voiceName = %q", got)
		}
		fmt.Fprint(w, ttsResponse("audio/L16;codec=pcm;rate=24000", pcm))
	}))
	defer srv.Close()

	c := NewTTSClient(srv.URL, "key", "test-tts", "Zephyr")
	art, err := c.Generate(context.Background(), "say hello")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if art.ContentType != "audio/wav" || art.Ext != "wav" {
		t.Fatalf("artifact meta = %q/%q, want wav", art.ContentType, art.Ext)
	}
	if len(art.Data) != 44+len(pcm) {
		t.Fatalf("data length = %d, want %d", len(art.Data), 44+len(pcm))
	}
	if !bytes.Equal(art.Data[:4], []byte("RIFF")) || !bytes.Equal(art.Data[44:], pcm) {
		t.Fatalf("payload not WAV-wrapped PCM")
	}
}

func TestExtensionForMIME(t *testing.T) {
	if got := extensionForMIME("image/png; charset=binary"); got != "png" {
		t.Errorf("extensionForMIME(image/png) = %q, want png", got)
	}
	if got := extensionForMIME("application/x-not-a-real-type"); got != "" {
		t.Errorf("extensionForMIME(unknown) = %q, want empty", got)
	}
}

func TestTTSGenerateNoAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{}]}}]}`)
	}))
	defer srv.Close()

	c := NewTTSClient(srv.URL, "key", "test-tts", "Zephyr")
	_, err := c.Generate(context.Background(), "say hello")
	if err == nil || !strings.Contains(err.Error(), "no audio data") {
		t.Fatalf("err = %v, want no-audio error", err)
	}
}
