package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ImagenClient calls the Generative Language predict endpoint for image
// generation. One square JPEG per request.
type ImagenClient struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

func NewImagenClient(baseURL, apiKey, model string) *ImagenClient {
	return &ImagenClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		Client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type imagenPredictReq struct {
	Instances  []imagenInstance `json:"instances"`
	Parameters imagenParams     `json:"parameters"`
}

type imagenInstance struct {
	Prompt string `json:"prompt"`
}

type imagenParams struct {
	SampleCount    int    `json:"sampleCount"`
	AspectRatio    string `json:"aspectRatio"`
	OutputMimeType string `json:"outputMimeType"`
}

type imagenPredictResp struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *ImagenClient) Generate(ctx context.Context, prompt string) (*Artifact, error) {
	body, err := json.Marshal(imagenPredictReq{
		Instances: []imagenInstance{{Prompt: prompt}},
		Parameters: imagenParams{
			SampleCount:    1,
			AspectRatio:    "1:1",
			OutputMimeType: "image/jpeg",
		},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:predict?key=%s", c.BaseURL, c.Model, c.APIKey)
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
		return nil, fmt.Errorf("imagen: status %d", resp.StatusCode)
	}

	var decoded imagenPredictResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("imagen: %s", decoded.Error.Message)
	}
	if len(decoded.Predictions) == 0 || decoded.Predictions[0].BytesBase64Encoded == "" {
		return nil, fmt.Errorf("imagen: generation returned no image")
	}

	data, err := base64.StdEncoding.DecodeString(decoded.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return nil, fmt.Errorf("imagen: decode image bytes: %w", err)
	}
	return &Artifact{Data: data, ContentType: "image/jpeg", Ext: "jpg"}, nil
}
