package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"
)

// TTSClient synthesizes a voiceover with a Gemini speech model. The
// response carries inline base64 audio; when the MIME type doesn't map to
// a known file extension the raw PCM is wrapped in a WAV container before
// upload.
type TTSClient struct {
	BaseURL string
	APIKey  string
	Model   string
	Voice   string
	Client  *http.Client
}

func NewTTSClient(baseURL, apiKey, model, voice string) *TTSClient {
	return &TTSClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		Voice:   voice,
		Client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type ttsGenerateReq struct {
	Contents         []ttsContent        `json:"contents"`
	GenerationConfig ttsGenerationConfig `json:"generationConfig"`
}

type ttsContent struct {
	Role  string    `json:"role"`
	Parts []ttsPart `json:"parts"`
}

type ttsPart struct {
	Text string `json:"text"`
}

type ttsGenerationConfig struct {
	Temperature        float64         `json:"temperature"`
	ResponseModalities []string        `json:"responseModalities"`
	SpeechConfig       ttsSpeechConfig `json:"speechConfig"`
}

type ttsSpeechConfig struct {
	VoiceConfig struct {
		PrebuiltVoiceConfig struct {
			VoiceName string `json:"voiceName"`
		} `json:"prebuiltVoiceConfig"`
	} `json:"voiceConfig"`
}

type ttsGenerateResp struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				InlineData *struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *TTSClient) Generate(ctx context.Context, prompt string) (*Artifact, error) {
	reqBody := ttsGenerateReq{
		Contents: []ttsContent{{Role: "user", Parts: []ttsPart{{Text: prompt}}}},
		GenerationConfig: ttsGenerationConfig{
			Temperature:        1,
			ResponseModalities: []string{"AUDIO"},
		},
	}
	reqBody.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName = c.Voice

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.BaseURL, c.Model, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tts: status %d", resp.StatusCode)
	}

	var decoded ttsGenerateResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("tts: %s", decoded.Error.Message)
	}

	inline := firstInlineData(decoded)
	if inline == nil || inline.Data == "" {
		return nil, fmt.Errorf("tts: generation returned no audio data")
	}

	data, err := base64.StdEncoding.DecodeString(inline.Data)
	if err != nil {
		return nil, fmt.Errorf("tts: decode audio bytes: %w", err)
	}

	if ext := extensionForMIME(inline.MimeType); ext != "" {
		return &Artifact{Data: data, ContentType: inline.MimeType, Ext: ext}, nil
	}

	// Raw PCM (e.g. audio/L16;rate=24000): wrap in a minimal WAV container.
	data = ConvertToWAV(data, ParseAudioMIME(inline.MimeType))
	return &Artifact{Data: data, ContentType: "audio/wav", Ext: "wav"}, nil
}

func firstInlineData(r ttsGenerateResp) *struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
} {
	for _, cand := range r.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil {
				return part.InlineData
			}
		}
	}
	return nil
}

func extensionForMIME(mimeType string) string {
	base := strings.TrimSpace(strings.Split(mimeType, ";")[0])
	exts, err := mime.ExtensionsByType(base)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return strings.TrimPrefix(exts[0], ".")
}
