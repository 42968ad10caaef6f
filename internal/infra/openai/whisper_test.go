package openai_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"voice-relay/internal/domain"
	"voice-relay/internal/infra/openai"
)

func newWhisper(t *testing.T, handler http.HandlerFunc) *openai.WhisperClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return openai.NewWhisperClientWithURL("test-key", "", "", 5*time.Second, server.URL)
}

var voice = domain.MediaPayload{Data: []byte("OggS-audio"), Size: 10, MIMEType: "audio/ogg"}

func TestWhisperClient_Transcribe(t *testing.T) {
	client := newWhisper(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("authorization: got %q", r.Header.Get("Authorization"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parsing form: %v", err)
		}
		if r.FormValue("model") != "whisper-1" {
			t.Errorf("model: got %q", r.FormValue("model"))
		}
		if _, ok := r.MultipartForm.Value["language"]; ok {
			t.Error("language must be omitted when not configured")
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("reading file part: %v", err)
		}
		defer file.Close()
		data, _ := io.ReadAll(file)

		if header.Filename != "voice.oga" {
			t.Errorf("filename: got %s", header.Filename)
		}
		if header.Header.Get("Content-Type") != "audio/ogg" {
			t.Errorf("part type: got %s", header.Header.Get("Content-Type"))
		}
		if string(data) != "OggS-audio" {
			t.Errorf("audio: got %q", data)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"hello"}`))
	})

	text, err := client.Transcribe(context.Background(), voice)
	if err != nil {
		t.Fatalf("Transcribe error: %v", err)
	}
	if text != "hello" {
		t.Errorf("text: got %q, want hello", text)
	}
}

func TestWhisperClient_VideoNoteFilename(t *testing.T) {
	client := newWhisper(t, func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("reading file part: %v", err)
		}
		if header.Filename != "video.mp4" {
			t.Errorf("filename: got %s, want video.mp4", header.Filename)
		}
		w.Write([]byte(`{"text":"ok"}`))
	})

	if _, err := client.Transcribe(context.Background(), domain.MediaPayload{Data: []byte("x"), Size: 1, MIMEType: "video/mp4"}); err != nil {
		t.Fatalf("Transcribe error: %v", err)
	}
}

func TestWhisperClient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   domain.Kind
		wantPrefix string
	}{
		{
			name:       "api error",
			status:     http.StatusInternalServerError,
			body:       `{"error":{"message":"server exploded"}}`,
			wantKind:   domain.KindTranscriptionAPI,
			wantPrefix: "🔄 Transcription API Error:\n",
		},
		{
			name:       "unparseable body",
			status:     http.StatusBadGateway,
			body:       `<html>bad gateway</html>`,
			wantKind:   domain.KindParse,
			wantPrefix: "🔄 API Response Parse Error:\nStatus: 502\nResponse: <html>",
		},
		{
			name:       "missing text",
			status:     http.StatusOK,
			body:       `{"duration":1.2}`,
			wantKind:   domain.KindEmptyResult,
			wantPrefix: "📝 No Transcription in Response:\n",
		},
		{
			name:       "api error with array body",
			status:     http.StatusInternalServerError,
			body:       `["overloaded"]`,
			wantKind:   domain.KindTranscriptionAPI,
			wantPrefix: "🔄 Transcription API Error:\n[\n  \"overloaded\"\n]",
		},
		{
			name:       "api error with string body",
			status:     http.StatusServiceUnavailable,
			body:       `"busy"`,
			wantKind:   domain.KindTranscriptionAPI,
			wantPrefix: "🔄 Transcription API Error:\n\"busy\"",
		},
		{
			name:       "non-string text",
			status:     http.StatusOK,
			body:       `{"text":123}`,
			wantKind:   domain.KindEmptyResult,
			wantPrefix: "📝 No Transcription in Response:\n",
		},
		{
			name:       "empty text",
			status:     http.StatusOK,
			body:       `{"text":""}`,
			wantKind:   domain.KindEmptyResult,
			wantPrefix: "📝 No Transcription in Response:\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newWhisper(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.Transcribe(context.Background(), voice)
			if err == nil {
				t.Fatal("expected error")
			}
			if domain.KindOf(err) != tt.wantKind {
				t.Errorf("kind: got %s, want %s", domain.KindOf(err), tt.wantKind)
			}
			if !strings.HasPrefix(err.Error(), tt.wantPrefix) {
				t.Errorf("detail %q does not start with %q", err.Error(), tt.wantPrefix)
			}
		})
	}
}

func TestWhisperClient_SingleAttempt(t *testing.T) {
	calls := 0
	client := newWhisper(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"busy"}`))
	})

	client.Transcribe(context.Background(), voice)

	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}

func TestWhisperClient_Language(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		if r.FormValue("language") != "es" {
			t.Errorf("language: got %q, want es", r.FormValue("language"))
		}
		if r.FormValue("model") != "gpt-4o-transcribe" {
			t.Errorf("model: got %q", r.FormValue("model"))
		}
		w.Write([]byte(`{"text":"hola"}`))
	}))
	defer server.Close()

	client := openai.NewWhisperClientWithURL("k", "gpt-4o-transcribe", "es", time.Second, server.URL)

	text, err := client.Transcribe(context.Background(), voice)
	if err != nil || text != "hola" {
		t.Fatalf("got %q, %v", text, err)
	}
}
