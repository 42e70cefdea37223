package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// newFalServer stands in for the fal queue: submit returns status/response
// URLs, status reports IN_PROGRESS once before COMPLETED, and the result
// document points at a downloadable file on the same server.
func newFalServer(t *testing.T, result func(base string) any, fileStatus int, fileBody []byte) *httptest.Server {
	t.Helper()

	var polls atomic.Int32
	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("POST /fal-ai/test-model", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Key test-key" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode(falQueueStatus{
			RequestID:   "req-1",
			Status:      "IN_QUEUE",
			StatusURL:   srv.URL + "/status/req-1",
			ResponseURL: srv.URL + "/result/req-1",
		})
	})
	mux.HandleFunc("GET /status/req-1", func(w http.ResponseWriter, r *http.Request) {
		status := "COMPLETED"
		if polls.Add(1) == 1 {
			status = "IN_PROGRESS"
		}
		json.NewEncoder(w).Encode(falQueueStatus{RequestID: "req-1", Status: status})
	})
	mux.HandleFunc("GET /result/req-1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(result(srv.URL))
	})
	mux.HandleFunc("GET /files/out", func(w http.ResponseWriter, r *http.Request) {
		if fileStatus != http.StatusOK {
			w.WriteHeader(fileStatus)
			return
		}
		w.Write(fileBody)
	})

	srv = httptest.NewServer(mux)
	return srv
}

func newTestFalClient(baseURL string) *FalClient {
	c := NewFalClient(baseURL, "test-key")
	c.PollInterval = time.Millisecond
	return c
}

func TestVideoGenerator(t *testing.T) {
	srv := newFalServer(t, func(base string) any {
		return map[string]any{"video": map[string]string{"url": base + "/files/out"}}
	}, http.StatusOK, []byte("mp4-bytes"))
	defer srv.Close()

	g := &VideoGenerator{Fal: newTestFalClient(srv.URL), Model: "fal-ai/test-model"}
	art, err := g.Generate(context.Background(), "a smart bottle spinning")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(art.Data) != "mp4-bytes" {
		t.Errorf("data = %q", art.Data)
	}
	if art.ContentType != "video/mp4" || art.Ext != "mp4" {
		t.Errorf("artifact meta = %q/%q", art.ContentType, art.Ext)
	}
}

func TestVideoGeneratorDownloadFailure(t *testing.T) {
	srv := newFalServer(t, func(base string) any {
		return map[string]any{"video": map[string]string{"url": base + "/files/out"}}
	}, http.StatusNotFound, nil)
	defer srv.Close()

	g := &VideoGenerator{Fal: newTestFalClient(srv.URL), Model: "fal-ai/test-model"}
	_, err := g.Generate(context.Background(), "a smart bottle spinning")
	if err == nil || !strings.Contains(err.Error(), "status 404") {
		t.Fatalf("err = %v, want download status error", err)
	}
}

func TestJingleGeneratorSendsDuration(t *testing.T) {
	var gotSeconds float64 = -1

	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("POST /fal-ai/test-model", func(w http.ResponseWriter, r *http.Request) {
		var input map[string]any
		json.NewDecoder(r.Body).Decode(&input)
		gotSeconds, _ = input["seconds_total"].(float64)
		json.NewEncoder(w).Encode(falQueueStatus{
			RequestID:   "req-2",
			Status:      "IN_QUEUE",
			StatusURL:   srv.URL + "/status/req-2",
			ResponseURL: srv.URL + "/result/req-2",
		})
	})
	mux.HandleFunc("GET /status/req-2", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(falQueueStatus{RequestID: "req-2", Status: "COMPLETED"})
	})
	mux.HandleFunc("GET /result/req-2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"audio_file":{"url":%q}}`, srv.URL+"/files/out")
	})
	mux.HandleFunc("GET /files/out", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mp3-bytes"))
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	g := &JingleGenerator{Fal: newTestFalClient(srv.URL), Model: "fal-ai/test-model", Seconds: 5}
	art, err := g.Generate(context.Background(), "upbeat synth sting")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if gotSeconds != 5 {
		t.Errorf("seconds_total = %v, want 5", gotSeconds)
	}
	if string(art.Data) != "mp3-bytes" || art.Ext != "mp3" {
		t.Errorf("artifact = %q/%q", art.Data, art.Ext)
	}
}

func TestSubscribeTerminalFailure(t *testing.T) {
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("POST /fal-ai/test-model", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(falQueueStatus{
			RequestID:   "req-3",
			Status:      "IN_QUEUE",
			StatusURL:   srv.URL + "/status/req-3",
			ResponseURL: srv.URL + "/result/req-3",
		})
	})
	mux.HandleFunc("GET /status/req-3", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(falQueueStatus{RequestID: "req-3", Status: "FAILED"})
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	c := newTestFalClient(srv.URL)
	_, err := c.Subscribe(context.Background(), "fal-ai/test-model", map[string]any{"prompt": "x"})
	if err == nil || !strings.Contains(err.Error(), "status FAILED") {
		t.Fatalf("err = %v, want terminal status error", err)
	}
}
