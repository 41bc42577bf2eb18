package speechkit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSynthesize(t *testing.T) {
	audio := []byte("ogg opus audio")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/speech/v1/tts:synthesize" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("content type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Error(err)
		}
		if r.PostForm.Get("text") != "привет" || r.PostForm.Get("voice") != "alena" {
			t.Errorf("form = %v", r.PostForm)
		}
		if r.PostForm.Get("speed") != "1.5" {
			t.Errorf("speed = %q", r.PostForm.Get("speed"))
		}
		if r.PostForm.Get("folderId") != "folder-1" {
			t.Errorf("folderId = %q", r.PostForm.Get("folderId"))
		}
		if r.PostForm.Has("ssml") {
			t.Error("ssml must be absent for text input")
		}
		w.Write(audio)
	}))
	defer server.Close()

	client := NewClient(testSession(t), WithTTSEndpoint(server.URL))
	got, err := client.TTS.Synthesize(context.Background(), &SynthesisRequest{
		Text:  "привет",
		Voice: "alena",
		Speed: 1.5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, audio) {
		t.Fatalf("audio = %q", got)
	}
}

func TestSynthesizeSSML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if got := r.PostForm.Get("ssml"); got != "<speak>hi</speak>" {
			t.Errorf("ssml = %q", got)
		}
		if r.PostForm.Has("text") {
			t.Error("text must be absent for ssml input")
		}
		w.Write([]byte("a"))
	}))
	defer server.Close()

	client := NewClient(testSession(t), WithTTSEndpoint(server.URL))
	if _, err := client.TTS.Synthesize(context.Background(), &SynthesisRequest{SSML: "<speak>hi</speak>"}); err != nil {
		t.Fatal(err)
	}
}

func TestSynthesizeValidation(t *testing.T) {
	httpClient, transport := noNetworkClient(t)
	client := NewClient(testSession(t), WithHTTPClient(httpClient))
	ctx := context.Background()

	var ve *ValidationError

	_, err := client.TTS.Synthesize(ctx, &SynthesisRequest{})
	if !errors.As(err, &ve) {
		t.Fatalf("neither input: %v", err)
	}

	_, err = client.TTS.Synthesize(ctx, &SynthesisRequest{Text: "a", SSML: "b"})
	if !errors.As(err, &ve) {
		t.Fatalf("both inputs: %v", err)
	}

	// The limit counts characters. 5000 multibyte runes must pass
	// validation; 5001 must not.
	over := strings.Repeat("ё", maxSynthesisChars+1)
	_, err = client.TTS.Synthesize(ctx, &SynthesisRequest{Text: over})
	if !errors.As(err, &ve) {
		t.Fatalf("oversize input: %v", err)
	}

	if transport.calls != 0 {
		t.Fatalf("validation must precede any network call, saw %d", transport.calls)
	}

	atLimit := strings.Repeat("ё", maxSynthesisChars)
	_, err = client.TTS.Synthesize(ctx, &SynthesisRequest{Text: atLimit})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("5000 runes should pass validation and reach the network, got %v", err)
	}
	if transport.calls != 1 {
		t.Fatalf("calls = %d", transport.calls)
	}
}

func TestSynthesizeRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"error_code": "BAD_REQUEST", "error_message": "unknown voice"})
	}))
	defer server.Close()

	client := NewClient(testSession(t), WithTTSEndpoint(server.URL))
	_, err := client.TTS.Synthesize(context.Background(), &SynthesisRequest{Text: "x", Voice: "nope"})

	re, ok := AsRequestError(err)
	if !ok {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if re.Code != "BAD_REQUEST" || re.Message != "unknown voice" {
		t.Fatalf("got %+v", re)
	}
}

func TestSynthesizeToFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pcm data"))
	}))
	defer server.Close()

	client := NewClient(testSession(t), WithTTSEndpoint(server.URL))
	path := filepath.Join(t.TempDir(), "out.pcm")

	if err := client.TTS.SynthesizeToFile(context.Background(), &SynthesisRequest{Text: "x"}, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "pcm data" {
		t.Fatalf("file = %q", data)
	}
}
