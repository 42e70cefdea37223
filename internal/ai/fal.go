package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FalClient drives fal.ai's queue API: submit a job, poll its status until
// a result is available, fetch the result payload.
type FalClient struct {
	BaseURL      string
	APIKey       string
	Client       *http.Client
	PollInterval time.Duration
}

func NewFalClient(baseURL, apiKey string) *FalClient {
	return &FalClient{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		Client:       &http.Client{Timeout: 60 * time.Second},
		PollInterval: 2 * time.Second,
	}
}

type falQueueStatus struct {
	RequestID   string `json:"request_id"`
	Status      string `json:"status"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
}

// Subscribe submits input to model's queue and blocks until the job
// completes, returning the raw result document.
func (c *FalClient) Subscribe(ctx context.Context, model string, input any) (json.RawMessage, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}

	var queued falQueueStatus
	submitURL := fmt.Sprintf("%s/%s", c.BaseURL, model)
	if err := c.doJSON(ctx, http.MethodPost, submitURL, bytes.NewReader(body), &queued); err != nil {
		return nil, fmt.Errorf("fal submit %s: %w", model, err)
	}
	if queued.StatusURL == "" || queued.ResponseURL == "" {
		return nil, fmt.Errorf("fal submit %s: queue response missing urls", model)
	}

	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()
	for {
		var st falQueueStatus
		if err := c.doJSON(ctx, http.MethodGet, queued.StatusURL, nil, &st); err != nil {
			return nil, fmt.Errorf("fal poll %s: %w", model, err)
		}
		switch st.Status {
		case "COMPLETED":
			var result json.RawMessage
			if err := c.doJSON(ctx, http.MethodGet, queued.ResponseURL, nil, &result); err != nil {
				return nil, fmt.Errorf("fal result %s: %w", model, err)
			}
			return result, nil
		case "IN_QUEUE", "IN_PROGRESS":
		default:
			return nil, fmt.Errorf("fal %s: request %s ended with status %s", model, queued.RequestID, st.Status)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Download fetches produced bytes from the URL the result document points
// at. A non-OK response is a generation failure.
func (c *FalClient) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *FalClient) doJSON(ctx context.Context, method, url string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Key "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// VideoGenerator produces a short clip via a fal video model.
type VideoGenerator struct {
	Fal   *FalClient
	Model string
}

func (g *VideoGenerator) Generate(ctx context.Context, prompt string) (*Artifact, error) {
	raw, err := g.Fal.Subscribe(ctx, g.Model, map[string]any{"prompt": prompt})
	if err != nil {
		return nil, err
	}
	var out struct {
		Video struct {
			URL string `json:"url"`
		} `json:"video"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("fal video result: %w", err)
	}
	if out.Video.URL == "" {
		return nil, fmt.Errorf("fal video: result has no downloadable url")
	}
	data, err := g.Fal.Download(ctx, out.Video.URL)
	if err != nil {
		return nil, err
	}
	return &Artifact{Data: data, ContentType: "video/mp4", Ext: "mp4"}, nil
}

// JingleGenerator produces a short music/sound-effect clip via a fal audio
// model with a fixed duration.
type JingleGenerator struct {
	Fal     *FalClient
	Model   string
	Seconds int
}

func (g *JingleGenerator) Generate(ctx context.Context, prompt string) (*Artifact, error) {
	raw, err := g.Fal.Subscribe(ctx, g.Model, map[string]any{
		"prompt":        prompt,
		"seconds_total": g.Seconds,
	})
	if err != nil {
		return nil, err
	}
	var out struct {
		AudioFile struct {
			URL string `json:"url"`
		} `json:"audio_file"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("fal audio result: %w", err)
	}
	if out.AudioFile.URL == "" {
		return nil, fmt.Errorf("fal audio: result has no downloadable url")
	}
	data, err := g.Fal.Download(ctx, out.AudioFile.URL)
	if err != nil {
		return nil, err
	}
	return &Artifact{Data: data, ContentType: "audio/mpeg", Ext: "mp3"}, nil
}
