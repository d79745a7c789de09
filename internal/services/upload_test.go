package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"unicode/utf8"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"lecture-01.mp3", "lecture-01.mp3"},
		{"my notes.txt", "my_notes.txt"},
		{"a/b\\c.md", "a_b_c.md"},
		{"résumé.txt", "r__sum__.txt"},
		{"weird!@#$.wav", "weird____.wav"},
	}

	for _, tc := range cases {
		got := SanitizeFilename(tc.in)
		if got != tc.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
		if len(got) != len(tc.in) {
			t.Errorf("SanitizeFilename(%q) changed byte length: %d -> %d", tc.in, len(tc.in), len(got))
		}
	}
}

func TestAllowedExtension(t *testing.T) {
	allowed := []string{"a.mp3", "b.WAV", "c.m4a", "d.mp4", "e.mov", "f.avi", "g.txt", "h.md"}
	for _, name := range allowed {
		if !AllowedExtension(name) {
			t.Errorf("expected %q to be allowed", name)
		}
	}

	rejected := []string{"doc.pdf", "slide.pptx", "image.png", "noext", "archive.zip"}
	for _, name := range rejected {
		if AllowedExtension(name) {
			t.Errorf("expected %q to be rejected", name)
		}
	}
}

func TestRouteUpload_RejectsUnsupportedType(t *testing.T) {
	svc := NewUploadService(nil, "", "", nil)

	_, err := svc.RouteUpload(context.Background(), []byte("hello"), "", "paper.pdf")
	if !errors.Is(err, ErrInvalidFileType) {
		t.Fatalf("expected ErrInvalidFileType, got %v", err)
	}
}

func TestRouteUpload_InlineSizeThresholds(t *testing.T) {
	svc := NewUploadService(nil, "", "", nil)

	small := make([]byte, 1024)
	if _, err := svc.RouteUpload(context.Background(), small, "", "clip.mp3"); err != nil {
		t.Fatalf("expected small inline upload to pass, got %v", err)
	}

	overInline := make([]byte, InlineUploadLimit+1)
	if _, err := svc.RouteUpload(context.Background(), overInline, "", "clip.mp3"); !errors.Is(err, ErrInlineTooLarge) {
		t.Fatalf("expected ErrInlineTooLarge above 8MB, got %v", err)
	}

	overMax := make([]byte, MaxUploadSize+1)
	if _, err := svc.RouteUpload(context.Background(), overMax, "", "clip.mp3"); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge above 100MB, got %v", err)
	}
}

func TestRouteUpload_RequiresFileOrURL(t *testing.T) {
	svc := NewUploadService(nil, "", "", nil)

	_, err := svc.RouteUpload(context.Background(), nil, "", "clip.mp3")
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestRouteUpload_FetchesRemoteFile(t *testing.T) {
	payload := bytes.Repeat([]byte("a"), 2048)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	svc := NewUploadService(nil, "", "", nil)

	data, err := svc.RouteUpload(context.Background(), nil, server.URL+"/uploads/clip.mp3", "clip.mp3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatalf("fetched payload does not match served payload")
	}
}

func TestRouteUpload_RemoteErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewUploadService(nil, "", "", nil)

	_, err := svc.RouteUpload(context.Background(), nil, server.URL+"/missing.mp3", "missing.mp3")
	if !errors.Is(err, ErrNetworkFetch) {
		t.Fatalf("expected ErrNetworkFetch, got %v", err)
	}
}

func TestClampTranscript_CountsRunes(t *testing.T) {
	if got := ClampTranscript("héllo wörld", 3); got != "hél" {
		t.Fatalf("expected 3-rune prefix, got %q", got)
	}
	if !utf8.ValidString(ClampTranscript("héllo wörld", 2)) {
		t.Fatalf("clamp split a multi-byte rune")
	}

	// A multi-byte text whose byte length exceeds the limit but whose rune
	// count does not must pass through untouched.
	cyrillic := "привет мир"
	if got := ClampTranscript(cyrillic, 10); got != cyrillic {
		t.Fatalf("expected text within the rune budget to pass through, got %q", got)
	}

	if got := ClampTranscript("short", 100); got != "short" {
		t.Fatalf("expected text under limit to pass through, got %q", got)
	}
}
