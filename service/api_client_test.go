package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/difyz9/kokoro-tts-client/model"
)

func newTestClient(t *testing.T, srv *httptest.Server) *APIClient {
	t.Helper()
	client, err := NewAPIClient(model.ServerConfig{BaseURL: srv.URL}, 0)
	if err != nil {
		t.Fatalf("NewAPIClient: %v", err)
	}
	return client
}

func TestNewAPIClientRejectsRelativeURL(t *testing.T) {
	if _, err := NewAPIClient(model.ServerConfig{BaseURL: "localhost:8000"}, 0); err == nil {
		t.Fatal("expected error for URL without scheme")
	}
}

func TestProcessTextSendsForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != ProcessTextPath {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if got := r.PostForm.Get("text"); got != "Hello" {
			t.Errorf("text = %q, want Hello", got)
		}
		if got := r.PostForm.Get("voice"); got != "af_sarah" {
			t.Errorf("voice = %q, want af_sarah", got)
		}
		if got := r.PostForm.Get("speed"); got != "1.5" {
			t.Errorf("speed = %q, want 1.5", got)
		}
		if got := r.PostForm.Get("lang"); got != "en-us" {
			t.Errorf("lang = %q, want en-us", got)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"status":"success","message":"ok","audio_url":"/download/a.wav"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	result, err := client.ProcessText(context.Background(), model.TextConversionRequest{
		Text: "Hello", Voice: "af_sarah", Speed: 1.5, Lang: "en-us",
	})
	if err != nil {
		t.Fatalf("ProcessText: %v", err)
	}
	if result.AudioURL != "/download/a.wav" {
		t.Errorf("AudioURL = %q", result.AudioURL)
	}
}

func TestProcessTextErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"json message", http.StatusInternalServerError, `{"status":"error","message":"synthesis failed"}`, 500, "synthesis failed"},
		{"json detail", http.StatusUnprocessableEntity, `{"detail":"field required"}`, 422, "field required"},
		{"plain text", http.StatusBadGateway, "upstream down\n", 502, "upstream down"},
		{"empty body", http.StatusServiceUnavailable, "", 503, "HTTP error! status: 503"},
		{"error status with 200", http.StatusOK, `{"status":"error","message":"bad voice"}`, 200, "bad voice"},
		{"missing audio url", http.StatusOK, `{"status":"success"}`, 200, "Server response did not include an audio URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv).ProcessText(context.Background(), model.TextConversionRequest{Text: "x"})
			var rerr *RequestError
			if !errors.As(err, &rerr) {
				t.Fatalf("err = %v, want *RequestError", err)
			}
			if rerr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", rerr.StatusCode, tt.wantStatus)
			}
			if rerr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", rerr.Message, tt.wantMsg)
			}
		})
	}
}

func TestProcessTextInvalidJSONIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>")
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).ProcessText(context.Background(), model.TextConversionRequest{Text: "x"})
	var nerr *NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("err = %v, want *NetworkError", err)
	}
}

func TestProcessTextConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client := newTestClient(t, srv)
	srv.Close()

	_, err := client.ProcessText(context.Background(), model.TextConversionRequest{Text: "x"})
	var nerr *NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("err = %v, want *NetworkError", err)
	}
	if errors.Unwrap(nerr) == nil {
		t.Error("NetworkError should wrap the cause")
	}
}

func TestProcessFileMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != ProcessFilePath {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "book.txt" || string(data) != "chapter one" {
			t.Errorf("file = %q %q", hdr.Filename, data)
		}
		if got := r.FormValue("speed"); got != "0.8" {
			t.Errorf("speed = %q, want 0.8", got)
		}
		if got := r.FormValue("split_chapters"); got != "true" {
			t.Errorf("split_chapters = %q, want true", got)
		}
		if got := r.FormValue("voice"); got != "" {
			t.Errorf("voice = %q, want empty field to be omitted", got)
		}
		io.WriteString(w, `{"status":"success","download_url":"/download/book.zip"}`)
	}))
	defer srv.Close()

	result, err := newTestClient(t, srv).ProcessFile(context.Background(), model.FileConversionRequest{
		FileName: "book.txt", Data: []byte("chapter one"), Speed: 0.8, SplitChapters: true,
	})
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if !result.IsArchive() {
		t.Errorf("IsArchive() = false for %q", result.DownloadURL)
	}
}

func TestProcessFileErrorStatusInBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"status":"error","message":"unsupported format"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).ProcessFile(context.Background(), model.FileConversionRequest{FileName: "a.bin", Data: []byte{1}})
	var rerr *RequestError
	if !errors.As(err, &rerr) {
		t.Fatalf("err = %v, want *RequestError", err)
	}
	if rerr.Message != "unsupported format" {
		t.Errorf("Message = %q", rerr.Message)
	}
}

func TestSynthesizeDirectPostsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != DirectSynthesisPath {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if accept := r.Header.Get("Accept"); accept != "audio/wav" {
			t.Errorf("Accept = %q, want audio/wav", accept)
		}
		var req model.DirectSynthesisRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		want := model.DirectSynthesisRequest{Text: "Hello", Voice: "af_sarah", Speed: 1.2, Lang: "en-us", Format: "wav"}
		if req != want {
			t.Errorf("request = %+v, want %+v", req, want)
		}
		w.Header().Set("Content-Type", "audio/wav")
		w.Write(wavBytes(8))
	}))
	defer srv.Close()

	data, err := newTestClient(t, srv).SynthesizeDirect(context.Background(), model.DirectSynthesisRequest{
		Text: "Hello", Voice: "af_sarah", Speed: 1.2, Lang: "en-us", Format: "wav",
	})
	if err != nil {
		t.Fatalf("SynthesizeDirect: %v", err)
	}
	if DetectAudioFormat(data) != FormatWAV {
		t.Errorf("response is not wav: %q", data[:4])
	}
}

func TestSynthesizeDirectErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"invalid format", http.StatusBadRequest, `{"detail":"Invalid format. Use 'wav' or 'mp3'"}`, "Invalid format. Use 'wav' or 'mp3'"},
		{"empty error body", http.StatusInternalServerError, "", "HTTP error! status: 500"},
		{"empty audio", http.StatusOK, "", "Server returned empty audio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv).SynthesizeDirect(context.Background(), model.DirectSynthesisRequest{Text: "x", Format: "mp3"})
			var rerr *RequestError
			if !errors.As(err, &rerr) {
				t.Fatalf("err = %v, want *RequestError", err)
			}
			if rerr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", rerr.Message, tt.wantMsg)
			}
		})
	}
}

func TestFetchAudioResolvesRelativeURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/download/a.wav" {
			http.NotFound(w, r)
			return
		}
		w.Write(wavBytes(4))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	data, err := client.FetchAudio(context.Background(), "/download/a.wav")
	if err != nil {
		t.Fatalf("FetchAudio: %v", err)
	}
	if DetectAudioFormat(data) != FormatWAV {
		t.Errorf("fetched data is not wav")
	}

	_, err = client.FetchAudio(context.Background(), "/download/missing.wav")
	var rerr *RequestError
	if !errors.As(err, &rerr) || rerr.StatusCode != http.StatusNotFound {
		t.Fatalf("err = %v, want 404 RequestError", err)
	}
	if rerr.Message != "Failed to fetch audio file" {
		t.Errorf("Message = %q", rerr.Message)
	}
}

func TestResolveURL(t *testing.T) {
	client, err := NewAPIClient(model.ServerConfig{BaseURL: "http://tts.local:8000/"}, 0)
	if err != nil {
		t.Fatalf("NewAPIClient: %v", err)
	}
	tests := []struct{ in, want string }{
		{"/download/out.zip", "http://tts.local:8000/download/out.zip"},
		{"download/out.zip", "http://tts.local:8000/download/out.zip"},
		{"https://cdn.example.com/a.mp3", "https://cdn.example.com/a.mp3"},
	}
	for _, tt := range tests {
		got, err := client.ResolveURL(tt.in)
		if err != nil {
			t.Fatalf("ResolveURL(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ResolveURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != HealthPath {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"status":"unhealthy","error":"model not loaded"}`)
	}))
	defer srv.Close()

	health, err := newTestClient(t, srv).Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Healthy() {
		t.Error("Healthy() = true, want false")
	}
	if !strings.Contains(health.Error, "model not loaded") {
		t.Errorf("Error = %q", health.Error)
	}
}

func TestRateLimiterHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"healthy"}`)
	}))
	defer srv.Close()

	client, err := NewAPIClient(model.ServerConfig{BaseURL: srv.URL}, 1)
	if err != nil {
		t.Fatalf("NewAPIClient: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.Health(ctx)
	var nerr *NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("err = %v, want *NetworkError", err)
	}
}
